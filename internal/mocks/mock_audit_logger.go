package mocks

import (
	"context"
	"sync"

	"github.com/larkes/communities-api/domain"
)

// MockAuditLogger records audit events for assertions
type MockAuditLogger struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
}

// NewMockAuditLogger creates a new MockAuditLogger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

// LogEvent records event
func (m *MockAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns the recorded events in order
func (m *MockAuditLogger) Events() []*domain.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditEvent(nil), m.events...)
}

// Last returns the most recent event of type t, or nil
func (m *MockAuditLogger) Last(t domain.AuditEventType) *domain.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].EventType == t {
			return m.events[i]
		}
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuditLogger = (*MockAuditLogger)(nil)
