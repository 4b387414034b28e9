package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RequestOTPFunc    func(ctx context.Context, phone string) error
	VerifyOTPFunc     func(ctx context.Context, phone, code string) (*domain.AuthResult, error)
	CompanySignupFunc func(ctx context.Context, email, password, name string) (*domain.AuthResult, error)
	CompanyLoginFunc  func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	AdminSignupFunc   func(ctx context.Context, email, password, signupToken string) (*domain.AuthResult, error)
	AdminLoginFunc    func(ctx context.Context, email, password string) (*domain.AuthResult, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func mockResult(role domain.Role) *domain.AuthResult {
	return &domain.AuthResult{
		User:        &domain.User{ID: "user-1", Role: role},
		AccessToken: "mock_access_token_" + string(role),
		ExpiresIn:   3600,
	}
}

// RequestOTP issues a code
func (m *MockAuthService) RequestOTP(ctx context.Context, phone string) error {
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, phone)
	}
	return nil
}

// VerifyOTP logs a student in
func (m *MockAuthService) VerifyOTP(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code)
	}
	return mockResult(domain.RoleStudent), nil
}

// CompanySignup registers a company account
func (m *MockAuthService) CompanySignup(ctx context.Context, email, password, name string) (*domain.AuthResult, error) {
	if m.CompanySignupFunc != nil {
		return m.CompanySignupFunc(ctx, email, password, name)
	}
	return mockResult(domain.RoleCompany), nil
}

// CompanyLogin logs a company account in
func (m *MockAuthService) CompanyLogin(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.CompanyLoginFunc != nil {
		return m.CompanyLoginFunc(ctx, email, password)
	}
	return mockResult(domain.RoleCompany), nil
}

// AdminSignup registers an admin account
func (m *MockAuthService) AdminSignup(ctx context.Context, email, password, signupToken string) (*domain.AuthResult, error) {
	if m.AdminSignupFunc != nil {
		return m.AdminSignupFunc(ctx, email, password, signupToken)
	}
	return mockResult(domain.RoleAdmin), nil
}

// AdminLogin logs an admin account in
func (m *MockAuthService) AdminLogin(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.AdminLoginFunc != nil {
		return m.AdminLoginFunc(ctx, email, password)
	}
	return mockResult(domain.RoleAdmin), nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
