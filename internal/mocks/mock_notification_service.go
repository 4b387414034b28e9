package mocks

import (
	"sync"

	"github.com/larkes/communities-api/domain"
)

// SentSMS is a message captured by MockNotificationService
type SentSMS struct {
	To      string
	Message string
}

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendSMSFunc func(to, message string) error

	mu   sync.Mutex
	Sent []SentSMS
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSMS records the message and then defers to SendSMSFunc
func (m *MockNotificationService) SendSMS(to, message string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentSMS{To: to, Message: message})
	m.mu.Unlock()

	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, message)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
