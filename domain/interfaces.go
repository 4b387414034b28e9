package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, cmd CreateUserCommand) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// OTPRepository defines one-time code data access operations
type OTPRepository interface {
	Issue(ctx context.Context, cmd IssueOTPCommand) (*OTPRecord, error)
	// FindLatestUnconsumed returns the most recently issued unconsumed code for phone
	FindLatestUnconsumed(ctx context.Context, phone string) (*OTPRecord, error)
	// MarkConsumed flips consumed to true only if it is still false.
	// It returns false when another caller consumed the code first.
	MarkConsumed(ctx context.Context, id string) (bool, error)
}

// CompanyRepository defines company data access operations
type CompanyRepository interface {
	Create(ctx context.Context, cmd CreateCompanyCommand) (*Company, error)
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByOwner(ctx context.Context, userID string) (*Company, error)
	Update(ctx context.Context, id string, cmd UpdateCompanyCommand) (*Company, error)
}

// Transactor runs fn against user and company stores bound to a single transaction.
// An error from fn rolls back every write made through them.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(users UserRepository, companies CompanyRepository) error) error
}

// AuthService defines authentication business logic
type AuthService interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*AuthResult, error)
	CompanySignup(ctx context.Context, email, password, name string) (*AuthResult, error)
	CompanyLogin(ctx context.Context, email, password string) (*AuthResult, error)
	AdminSignup(ctx context.Context, email, password, signupToken string) (*AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)
}

// OTPService defines OTP operations
type OTPService interface {
	Issue(ctx context.Context, phone string) error
	// Verify reports whether code matches the latest unconsumed code for phone and consumes it.
	// Only store faults are returned as errors.
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// UserProvisioner resolves the account behind a verified phone number
type UserProvisioner interface {
	ProvisionStudent(ctx context.Context, phone string) (*User, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	Issue(req TokenRequest) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() ([][]string, error)
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}

// OTPThrottle limits how often codes are sent and guessed
type OTPThrottle interface {
	AcquireResendSlot(ctx context.Context, phone string, window time.Duration) (bool, error)
	RecordFailure(ctx context.Context, otpID string, ttl time.Duration) (int64, error)
	Failures(ctx context.Context, otpID string) (int64, error)
}
