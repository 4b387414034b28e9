package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
)

// StudentProvisioner implements domain.UserProvisioner: the first verified login for a phone creates a student
type StudentProvisioner struct {
	userRepo    domain.UserRepository
	auditLogger domain.AuditLogger
}

// NewStudentProvisioner creates a new provisioner
func NewStudentProvisioner(userRepo domain.UserRepository, auditLogger domain.AuditLogger) *StudentProvisioner {
	return &StudentProvisioner{userRepo: userRepo, auditLogger: auditLogger}
}

// ProvisionStudent implements domain.UserProvisioner
func (p *StudentProvisioner) ProvisionStudent(ctx context.Context, phone string) (*domain.User, error) {
	user, err := p.userRepo.FindByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by phone: %w", err)
	}

	user, err = p.userRepo.Create(ctx, domain.CreateUserCommand{
		Role:  domain.RoleStudent,
		Phone: phone,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent verification for the same phone created it first
		user, err = p.userRepo.FindByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user by phone: %w", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	p.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.StudentProvisionEvent, user.ID).
		WithPhone(domain.MaskPhone(phone)).
		WithRole(domain.RoleStudent))
	return user, nil
}

var _ domain.UserProvisioner = (*StudentProvisioner)(nil)
