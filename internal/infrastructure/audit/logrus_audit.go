package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/domain"
)

// EventCounter receives one call per audit event
type EventCounter interface {
	RecordAuthEvent(event string, success bool)
}

// LogrusAuditLogger writes audit events as structured log entries
type LogrusAuditLogger struct {
	logger  *logrus.Logger
	counter EventCounter
}

// NewLogrusAuditLogger creates an audit logger. counter may be nil.
func NewLogrusAuditLogger(logger *logrus.Logger, counter EventCounter) *LogrusAuditLogger {
	return &LogrusAuditLogger{logger: logger, counter: counter}
}

// LogEvent implements domain.AuditLogger
func (l *LogrusAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	if event == nil {
		return
	}
	if l.counter != nil {
		l.counter.RecordAuthEvent(string(event.EventType), event.Success)
	}

	fields := logrus.Fields{
		"audit":      true,
		"event_type": event.EventType,
		"success":    event.Success,
		"timestamp":  event.Timestamp,
	}
	if event.UserID != "" {
		fields["user_id"] = event.UserID
	}
	if event.Email != "" {
		fields["email"] = event.Email
	}
	if event.Phone != "" {
		fields["phone"] = event.Phone
	}
	if event.Role != "" {
		fields["role"] = event.Role
	}
	if event.ErrorMsg != "" {
		fields["error"] = event.ErrorMsg
	}
	for k, v := range event.Metadata {
		fields["meta_"+k] = v
	}

	entry := l.logger.WithContext(ctx).WithFields(fields)
	if event.Success {
		entry.Info("audit event")
	} else {
		entry.Warn("audit event")
	}
}

var _ domain.AuditLogger = (*LogrusAuditLogger)(nil)
