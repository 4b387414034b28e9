package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/larkes/communities-api/domain"
)

// PasswordServiceImpl implements domain.PasswordService with bcrypt
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a new password service. A cost of 0 selects bcrypt.DefaultCost.
func NewPasswordService(cost int) domain.PasswordService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{
		cost: cost,
	}
}

// Hash implements domain.PasswordService. Every call draws a fresh salt.
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService. Malformed digests verify as false.
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
