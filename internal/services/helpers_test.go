package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/mocks"
)

const testAdminSecret = "bootstrap-secret"

// testLogger returns a logger that discards output
func testLogger(t *testing.T) *logrus.Logger {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// authTestDeps bundles the mocks behind an AuthService under test
type authTestDeps struct {
	userRepo    *mocks.MockUserRepository
	companyRepo *mocks.MockCompanyRepository
	tx          *mocks.MockTransactor
	otpSvc      *mocks.MockOTPService
	provisioner *mocks.MockUserProvisioner
	passwordSvc *mocks.MockPasswordService
	tokenSvc    *mocks.MockTokenService
	audit       *mocks.MockAuditLogger
}

func newAuthTestDeps() *authTestDeps {
	userRepo := mocks.NewMockUserRepository()
	companyRepo := mocks.NewMockCompanyRepository()
	return &authTestDeps{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		tx:          mocks.NewMockTransactor(userRepo, companyRepo),
		otpSvc:      mocks.NewMockOTPService(),
		provisioner: mocks.NewMockUserProvisioner(),
		passwordSvc: mocks.NewMockPasswordService(),
		tokenSvc:    mocks.NewMockTokenService(),
		audit:       mocks.NewMockAuditLogger(),
	}
}

// createAuthServiceForTest creates an AuthService over deps with the admin bootstrap secret set
func createAuthServiceForTest(t *testing.T, deps *authTestDeps, adminSecret string) *AuthServiceImpl {
	t.Helper()

	return NewAuthService(
		deps.userRepo,
		deps.companyRepo,
		deps.tx,
		deps.otpSvc,
		deps.provisioner,
		deps.passwordSvc,
		deps.tokenSvc,
		deps.audit,
		testLogger(t),
		AuthConfig{AccessTTL: time.Hour, AdminSignupToken: adminSecret},
	)
}

// createPasswordUser creates a user entity with the mock password hash for password
func createPasswordUser(t *testing.T, id string, role domain.Role, email, password string) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           id,
		Role:         role,
		Email:        email,
		PasswordHash: "hashed_" + password,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
	}
}

// usersByEmail makes FindByEmail serve the given users
func usersByEmail(users ...*domain.User) func(ctx context.Context, email string) (*domain.User, error) {
	return func(ctx context.Context, email string) (*domain.User, error) {
		for _, u := range users {
			if u.Email == email {
				return u, nil
			}
		}
		return nil, domain.ErrUserNotFound
	}
}

// fixedClock returns a settable clock for OTP tests
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
