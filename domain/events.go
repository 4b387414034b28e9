package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Phone OTP events
	OTPRequestEvent       AuditEventType = "OTP_REQUESTED"
	OTPVerifyEvent        AuditEventType = "OTP_VERIFIED"
	OTPVerifyFailureEvent AuditEventType = "OTP_VERIFICATION_FAILED"
	StudentProvisionEvent AuditEventType = "STUDENT_PROVISIONED"

	// Password account events
	CompanySignupEvent AuditEventType = "COMPANY_SIGNUP"
	AdminSignupEvent   AuditEventType = "ADMIN_SIGNUP"
	UserLoginEvent     AuditEventType = "USER_LOGIN"

	// Authorization events
	AccessDeniedEvent AuditEventType = "ACCESS_DENIED"
)

// AuditEvent represents a security-relevant event
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    string                 `json:"user_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Role      Role                   `json:"role,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records audit events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID string) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError marks the event as failed
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithPhone sets the phone field
func (e *AuditEvent) WithPhone(phone string) *AuditEvent {
	e.Phone = phone
	return e
}

// WithRole sets the role field
func (e *AuditEvent) WithRole(role Role) *AuditEvent {
	e.Role = role
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}

// NopAuditLogger discards events
type NopAuditLogger struct{}

func (NopAuditLogger) LogEvent(context.Context, *AuditEvent) {}
