package domain

import "time"

// Role identifies which flows and routes a user may use
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// PolicySubject is the casbin subject for the role
func (r Role) PolicySubject() string {
	return "role_" + string(r)
}

// MaskPhone keeps the last four digits of a phone number for logs
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}

// User represents an identity in the system.
// Students created through OTP carry a phone and no password hash;
// company and admin accounts carry an email and a password hash.
type User struct {
	ID           string
	Role         Role
	Phone        string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// HasPassword reports whether the user can log in with email and password
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// CreateUserCommand carries the fields needed to persist a new user
type CreateUserCommand struct {
	Role         Role
	Phone        string
	Email        string
	PasswordHash string
}

// OTPRecord is a one-time code bound to a phone number
type OTPRecord struct {
	ID        string
	Phone     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// Expired reports whether the code can no longer be used at instant now
func (o *OTPRecord) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// IssueOTPCommand carries the fields needed to persist a new code
type IssueOTPCommand struct {
	Phone     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Company is the organisation a company-role user acts for
type Company struct {
	ID          string
	Name        string
	Description string
	OwnerUserID string
	CreatedAt   time.Time
}

// CreateCompanyCommand carries the fields needed to persist a new company
type CreateCompanyCommand struct {
	Name        string
	Description string
	OwnerUserID string
}

// UpdateCompanyCommand holds optional company changes; nil fields are left untouched
type UpdateCompanyCommand struct {
	Name        *string
	Description *string
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User        *User
	AccessToken string
	CompanyID   string
	ExpiresIn   int64
}

// TokenRequest describes the session token to issue. A zero TTL means the configured access TTL.
type TokenRequest struct {
	Subject   string
	Role      Role
	CompanyID string
	TTL       time.Duration
}

// TokenClaims represents verified session token claims
type TokenClaims struct {
	Subject   string `json:"sub"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
