package domain

import "errors"

// ErrorKind classifies errors that cross the auth boundary
type ErrorKind int

const (
	// KindInternal covers store faults and anything unclassified
	KindInternal ErrorKind = iota
	KindUnauthenticated
	KindForbidden
	KindInvalidCredential
	KindAlreadyExists
	KindConfiguration
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindAlreadyExists:
		return "already_exists"
	case KindConfiguration:
		return "configuration_fault"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Sentinels below are compared by identity.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Authentication errors
var (
	ErrUnauthenticated    = newError(KindUnauthenticated, "not authenticated")
	ErrInvalidCredentials = newError(KindInvalidCredential, "invalid credentials")
	ErrInvalidOTP         = newError(KindInvalidCredential, "invalid or expired code")
	ErrUserAlreadyExists  = newError(KindAlreadyExists, "email already registered")
)

// Lookup errors; stores return these when nothing matches
var (
	ErrUserNotFound    = newError(KindNotFound, "user not found")
	ErrCompanyNotFound = newError(KindNotFound, "company not found")
	ErrOTPNotFound     = newError(KindNotFound, "otp not found")
)

// Token errors
var (
	ErrTokenInvalid = newError(KindUnauthenticated, "invalid token")
)

// Authorization errors
var (
	ErrForbidden     = newError(KindForbidden, "forbidden")
	ErrCompanyNotSet = newError(KindForbidden, "company is not set for this user")

	// ErrLastAdminPolicy refuses a change that would leave admins without any policy
	ErrLastAdminPolicy = newError(KindConflict, "cannot remove the last admin policy")
)

// Configuration errors
var (
	ErrMissingSigningSecret = newError(KindConfiguration, "jwt signing secret is not configured")
	ErrUnsupportedAlgorithm = newError(KindConfiguration, "unsupported jwt signing algorithm")
	ErrAdminSignupDisabled  = newError(KindConfiguration, "admin signup token is not configured")
)
