package mocks

import (
	"strings"
	"time"

	"github.com/larkes/communities-api/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens look like "token|<subject>|<role>|<company>".
type MockTokenService struct {
	IssueFunc  func(req domain.TokenRequest) (string, error)
	VerifyFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Issue returns a readable token for req
func (m *MockTokenService) Issue(req domain.TokenRequest) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(req)
	}
	return strings.Join([]string{"token", req.Subject, string(req.Role), req.CompanyID}, "|"), nil
}

// Verify parses tokens produced by the default Issue
func (m *MockTokenService) Verify(token string) (*domain.TokenClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	now := time.Now().Unix()
	return &domain.TokenClaims{
		Subject:   parts[1],
		Role:      domain.Role(parts[2]),
		CompanyID: parts[3],
		IssuedAt:  now,
		ExpiresAt: now + 900,
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
