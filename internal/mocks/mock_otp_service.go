package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, phone string) error
	VerifyFunc func(ctx context.Context, phone, code string) (bool, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue issues a new code for the given phone number
func (m *MockOTPService) Issue(ctx context.Context, phone string) error {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, phone)
	}
	return nil
}

// Verify verifies an OTP code for the given phone number
func (m *MockOTPService) Verify(ctx context.Context, phone, code string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code)
	}
	// Default behavior: accept "123456" as valid OTP
	return code == "123456", nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
