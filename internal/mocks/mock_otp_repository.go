package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockOTPRepository implements domain.OTPRepository interface for testing
type MockOTPRepository struct {
	IssueFunc                func(ctx context.Context, cmd domain.IssueOTPCommand) (*domain.OTPRecord, error)
	FindLatestUnconsumedFunc func(ctx context.Context, phone string) (*domain.OTPRecord, error)
	MarkConsumedFunc         func(ctx context.Context, id string) (bool, error)
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

// Issue persists a new code
func (m *MockOTPRepository) Issue(ctx context.Context, cmd domain.IssueOTPCommand) (*domain.OTPRecord, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, cmd)
	}
	return &domain.OTPRecord{
		ID:        "otp-1",
		Phone:     cmd.Phone,
		Code:      cmd.Code,
		IssuedAt:  cmd.IssuedAt,
		ExpiresAt: cmd.ExpiresAt,
	}, nil
}

// FindLatestUnconsumed returns the newest unconsumed code
func (m *MockOTPRepository) FindLatestUnconsumed(ctx context.Context, phone string) (*domain.OTPRecord, error) {
	if m.FindLatestUnconsumedFunc != nil {
		return m.FindLatestUnconsumedFunc(ctx, phone)
	}
	// Default behavior: not found
	return nil, domain.ErrOTPNotFound
}

// MarkConsumed consumes a code
func (m *MockOTPRepository) MarkConsumed(ctx context.Context, id string) (bool, error) {
	if m.MarkConsumedFunc != nil {
		return m.MarkConsumedFunc(ctx, id)
	}
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)
