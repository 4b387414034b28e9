package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/larkes/communities-api/domain"
	infraauth "github.com/larkes/communities-api/internal/infrastructure/auth"
	"github.com/larkes/communities-api/internal/infrastructure/repositories"
	"github.com/larkes/communities-api/internal/mocks"
)

// authFlow is the auth use case wired to a real store, bcrypt and JWT
type authFlow struct {
	svc       *AuthServiceImpl
	users     *repositories.UserRepositoryImpl
	companies *repositories.CompanyRepositoryImpl
	tokens    *infraauth.JWTServiceImpl
	notifier  *mocks.MockNotificationService
}

func newAuthFlow(t *testing.T, adminSecret string) *authFlow {
	t.Helper()
	return newAuthFlowWithTx(t, adminSecret, func(tx domain.Transactor) domain.Transactor { return tx })
}

// newAuthFlowWithTx lets a test wrap the transactor signups run in
func newAuthFlowWithTx(t *testing.T, adminSecret string, wrapTx func(domain.Transactor) domain.Transactor) *authFlow {
	t.Helper()

	db := setupTestStore(t)
	logger := testLogger(t)
	users := repositories.NewUserRepository(db)
	companies := repositories.NewCompanyRepository(db)
	notifier := mocks.NewMockNotificationService()
	audit := domain.NopAuditLogger{}

	tokens, err := infraauth.NewJWTService("test-secret", "HS256", "communities-api", time.Hour)
	require.NoError(t, err)

	otpSvc := NewOTPService(repositories.NewOTPRepository(db), nil, notifier, logger, OTPConfig{Length: 6, TTL: 5 * time.Minute})
	svc := NewAuthService(
		users,
		companies,
		wrapTx(repositories.NewGormTransactor(db)),
		otpSvc,
		NewStudentProvisioner(users, audit),
		infraauth.NewPasswordService(bcrypt.MinCost),
		tokens,
		audit,
		logger,
		AuthConfig{AccessTTL: time.Hour, AdminSignupToken: adminSecret},
	)
	return &authFlow{svc: svc, users: users, companies: companies, tokens: tokens, notifier: notifier}
}

func (f *authFlow) lastCode(t *testing.T) string {
	t.Helper()
	return (&otpFixture{notifier: f.notifier}).lastCode(t)
}

func TestAuthFlow_StudentOTPLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFlow(t, testAdminSecret)

	require.NoError(t, f.svc.RequestOTP(ctx, testPhone))
	result, err := f.svc.VerifyOTP(ctx, testPhone, f.lastCode(t))
	require.NoError(t, err)

	claims, err := f.tokens.Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, claims.Role)

	user, err := f.users.FindByID(ctx, claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, testPhone, user.Phone)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.False(t, user.HasPassword())

	// The code is single-use
	_, err = f.svc.VerifyOTP(ctx, testPhone, f.lastCode(t))
	assert.Equal(t, domain.ErrInvalidOTP, err)

	// A second login reuses the same account
	require.NoError(t, f.svc.RequestOTP(ctx, testPhone))
	again, err := f.svc.VerifyOTP(ctx, testPhone, f.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.User.ID)
}

func TestAuthFlow_CompanySignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFlow(t, testAdminSecret)

	signup, err := f.svc.CompanySignup(ctx, "a@x.com", "Passw0rd!", "Acme")
	require.NoError(t, err)
	signupClaims, err := f.tokens.Verify(signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCompany, signupClaims.Role)
	assert.NotEmpty(t, signupClaims.CompanyID)

	company, err := f.companies.FindByOwner(ctx, signupClaims.Subject)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, company.ID, signupClaims.CompanyID)

	login, err := f.svc.CompanyLogin(ctx, "a@x.com", "Passw0rd!")
	require.NoError(t, err)
	loginClaims, err := f.tokens.Verify(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCompany, loginClaims.Role)
	assert.Equal(t, company.ID, loginClaims.CompanyID)

	_, err = f.svc.CompanySignup(ctx, "a@x.com", "Other1234", "Acme 2")
	assert.Equal(t, domain.ErrUserAlreadyExists, err)
	assert.Equal(t, domain.KindAlreadyExists, domain.KindOf(err))
}

// flakyCompanies fails Create while failures remain
type flakyCompanies struct {
	domain.CompanyRepository
	failures *int
}

func (f flakyCompanies) Create(ctx context.Context, cmd domain.CreateCompanyCommand) (*domain.Company, error) {
	if *f.failures > 0 {
		*f.failures--
		return nil, errors.New("companies: disk full")
	}
	return f.CompanyRepository.Create(ctx, cmd)
}

func TestAuthFlow_CompanySignupLeavesNoOrphanUser(t *testing.T) {
	ctx := context.Background()
	failures := 1
	f := newAuthFlowWithTx(t, testAdminSecret, func(inner domain.Transactor) domain.Transactor {
		return &mocks.MockTransactor{
			WithinTxFunc: func(ctx context.Context, fn func(domain.UserRepository, domain.CompanyRepository) error) error {
				return inner.WithinTx(ctx, func(users domain.UserRepository, companies domain.CompanyRepository) error {
					return fn(users, flakyCompanies{CompanyRepository: companies, failures: &failures})
				})
			},
		}
	})

	_, err := f.svc.CompanySignup(ctx, "a@x.com", "Passw0rd!", "Acme")
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	_, err = f.users.FindByEmail(ctx, "a@x.com")
	assert.Equal(t, domain.ErrUserNotFound, err, "the user insert is rolled back with the company")

	retry, err := f.svc.CompanySignup(ctx, "a@x.com", "Passw0rd!", "Acme")
	require.NoError(t, err, "the email stays free for a retry")
	assert.NotEmpty(t, retry.CompanyID)

	company, err := f.companies.FindByOwner(ctx, retry.User.ID)
	require.NoError(t, err)
	assert.Equal(t, retry.CompanyID, company.ID)
}

func TestAuthFlow_CompanyLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	f := newAuthFlow(t, testAdminSecret)
	_, err := f.svc.CompanySignup(ctx, "a@x.com", "Passw0rd!", "Acme")
	require.NoError(t, err)

	_, wrongPass := f.svc.CompanyLogin(ctx, "a@x.com", "WrongPass")
	_, unknown := f.svc.CompanyLogin(ctx, "unknown@x.com", "x")

	assert.Equal(t, domain.KindInvalidCredential, domain.KindOf(wrongPass))
	assert.Equal(t, domain.KindInvalidCredential, domain.KindOf(unknown))
	assert.Equal(t, wrongPass.Error(), unknown.Error(), "callers cannot tell which check failed")
}

func TestAuthFlow_AdminSignupGate(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong token", func(t *testing.T) {
		f := newAuthFlow(t, testAdminSecret)
		_, err := f.svc.AdminSignup(ctx, "root@x.com", "Adm1nPass!", "wrong")
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
		_, err = f.users.FindByEmail(ctx, "root@x.com")
		assert.Equal(t, domain.ErrUserNotFound, err)
	})

	t.Run("secret unset", func(t *testing.T) {
		f := newAuthFlow(t, "")
		_, err := f.svc.AdminSignup(ctx, "root@x.com", "Adm1nPass!", "")
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("signup then login", func(t *testing.T) {
		f := newAuthFlow(t, testAdminSecret)
		_, err := f.svc.AdminSignup(ctx, "root@x.com", "Adm1nPass!", testAdminSecret)
		require.NoError(t, err)

		result, err := f.svc.AdminLogin(ctx, "root@x.com", "Adm1nPass!")
		require.NoError(t, err)
		claims, err := f.tokens.Verify(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, claims.Role)

		_, err = f.svc.CompanyLogin(ctx, "root@x.com", "Adm1nPass!")
		assert.Equal(t, domain.ErrInvalidCredentials, err)
	})
}
