package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/larkes/communities-api/domain"
)

// MockOTPThrottle is an in-memory domain.OTPThrottle. Windows never expire on their own.
type MockOTPThrottle struct {
	AcquireResendSlotFunc func(ctx context.Context, phone string, window time.Duration) (bool, error)
	RecordFailureFunc     func(ctx context.Context, otpID string, ttl time.Duration) (int64, error)
	FailuresFunc          func(ctx context.Context, otpID string) (int64, error)

	mu       sync.Mutex
	held     map[string]bool
	failures map[string]int64
}

// NewMockOTPThrottle creates a new MockOTPThrottle with default behaviors
func NewMockOTPThrottle() *MockOTPThrottle {
	return &MockOTPThrottle{
		held:     make(map[string]bool),
		failures: make(map[string]int64),
	}
}

// AcquireResendSlot grants the first call per phone
func (m *MockOTPThrottle) AcquireResendSlot(ctx context.Context, phone string, window time.Duration) (bool, error) {
	if m.AcquireResendSlotFunc != nil {
		return m.AcquireResendSlotFunc(ctx, phone, window)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[phone] {
		return false, nil
	}
	m.held[phone] = true
	return true, nil
}

// RecordFailure increments the failure counter for a code
func (m *MockOTPThrottle) RecordFailure(ctx context.Context, otpID string, ttl time.Duration) (int64, error) {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, otpID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[otpID]++
	return m.failures[otpID], nil
}

// Failures returns the failure counter for a code
func (m *MockOTPThrottle) Failures(ctx context.Context, otpID string) (int64, error) {
	if m.FailuresFunc != nil {
		return m.FailuresFunc(ctx, otpID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[otpID], nil
}

// Compile-time interface compliance verification
var _ domain.OTPThrottle = (*MockOTPThrottle)(nil)
