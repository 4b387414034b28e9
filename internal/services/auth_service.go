package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
)

// AuthConfig holds the process-wide settings the auth flows read
type AuthConfig struct {
	AccessTTL        time.Duration
	AdminSignupToken string
}

// dummyPassword is hashed once so logins for unknown accounts still pay for a comparison
const dummyPassword = "communities-api/no-such-account"

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
	tx          domain.Transactor
	otpSvc      domain.OTPService
	provisioner domain.UserProvisioner
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	auditLogger domain.AuditLogger
	logger      *logrus.Logger
	config      AuthConfig

	dummyOnce sync.Once
	dummy     string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	companyRepo domain.CompanyRepository,
	tx domain.Transactor,
	otpSvc domain.OTPService,
	provisioner domain.UserProvisioner,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	auditLogger domain.AuditLogger,
	logger *logrus.Logger,
	config AuthConfig,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		tx:          tx,
		otpSvc:      otpSvc,
		provisioner: provisioner,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		auditLogger: auditLogger,
		logger:      logger,
		config:      config,
	}
}

// RequestOTP implements domain.AuthService. It never reveals whether the phone belongs to an account.
func (s *AuthServiceImpl) RequestOTP(ctx context.Context, phone string) error {
	if err := s.otpSvc.Issue(ctx, phone); err != nil {
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.OTPRequestEvent, "").
			WithPhone(domain.MaskPhone(phone)).
			WithError(err))
		return fmt.Errorf("failed to issue OTP: %w", err)
	}
	s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.OTPRequestEvent, "").WithPhone(domain.MaskPhone(phone)))
	return nil
}

// VerifyOTP implements domain.AuthService. A first successful verification provisions a student.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	ok, err := s.otpSvc.Verify(ctx, phone, code)
	if err != nil {
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if !ok {
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifyFailureEvent, "").
			WithPhone(domain.MaskPhone(phone)).
			WithError(domain.ErrInvalidOTP))
		return nil, domain.ErrInvalidOTP
	}

	user, err := s.provisioner.ProvisionStudent(ctx, phone)
	if err != nil {
		return nil, err
	}

	result, err := s.issueResult(user, "")
	if err != nil {
		return nil, err
	}
	s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifyEvent, user.ID).
		WithPhone(domain.MaskPhone(phone)).
		WithRole(user.Role))
	return result, nil
}

// CompanySignup implements domain.AuthService. The user and its company are written in one transaction.
func (s *AuthServiceImpl) CompanySignup(ctx context.Context, email, password, name string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	fail := func(err error) (*domain.AuthResult, error) {
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.CompanySignupEvent, "").WithEmail(email).WithError(err))
		return nil, err
	}

	hashedPassword, err := s.hashForNewAccount(ctx, email, password)
	if err != nil {
		return fail(err)
	}

	var (
		user    *domain.User
		company *domain.Company
	)
	err = s.tx.WithinTx(ctx, func(users domain.UserRepository, companies domain.CompanyRepository) error {
		created, err := insertAccount(ctx, users, domain.RoleCompany, email, hashedPassword)
		if err != nil {
			return err
		}
		owned, err := companies.Create(ctx, domain.CreateCompanyCommand{
			Name:        strings.TrimSpace(name),
			OwnerUserID: created.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		user, company = created, owned
		return nil
	})
	if err != nil {
		return fail(err)
	}

	result, err := s.issueResult(user, company.ID)
	if err != nil {
		return nil, err
	}
	s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.CompanySignupEvent, user.ID).
		WithEmail(email).
		WithRole(domain.RoleCompany).
		WithMetadata("company_id", company.ID))
	return result, nil
}

// CompanyLogin implements domain.AuthService
func (s *AuthServiceImpl) CompanyLogin(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.authenticate(ctx, domain.RoleCompany, email, password)
	if err != nil {
		return nil, err
	}

	companyID := ""
	company, err := s.companyRepo.FindByOwner(ctx, user.ID)
	switch {
	case err == nil:
		companyID = company.ID
	case !errors.Is(err, domain.ErrCompanyNotFound):
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	return s.loginResult(ctx, user, companyID)
}

// AdminSignup implements domain.AuthService. With no bootstrap secret configured it always refuses.
func (s *AuthServiceImpl) AdminSignup(ctx context.Context, email, password, signupToken string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	if s.config.AdminSignupToken == "" {
		s.logger.WithError(domain.ErrAdminSignupDisabled).Error("admin signup attempted")
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.AdminSignupEvent, "").
			WithEmail(email).
			WithError(domain.ErrAdminSignupDisabled))
		return nil, domain.ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(signupToken), []byte(s.config.AdminSignupToken)) != 1 {
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.AdminSignupEvent, "").
			WithEmail(email).
			WithError(domain.ErrForbidden))
		return nil, domain.ErrForbidden
	}

	hashedPassword, err := s.hashForNewAccount(ctx, email, password)
	if err != nil {
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.AdminSignupEvent, "").WithEmail(email).WithError(err))
		return nil, err
	}
	user, err := insertAccount(ctx, s.userRepo, domain.RoleAdmin, email, hashedPassword)
	if err != nil {
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.AdminSignupEvent, "").WithEmail(email).WithError(err))
		return nil, err
	}

	result, err := s.issueResult(user, "")
	if err != nil {
		return nil, err
	}
	s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.AdminSignupEvent, user.ID).
		WithEmail(email).
		WithRole(domain.RoleAdmin))
	return result, nil
}

// AdminLogin implements domain.AuthService
func (s *AuthServiceImpl) AdminLogin(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.authenticate(ctx, domain.RoleAdmin, email, password)
	if err != nil {
		return nil, err
	}
	return s.loginResult(ctx, user, "")
}

// hashForNewAccount rejects a taken email before paying for the hash
func (s *AuthServiceImpl) hashForNewAccount(ctx context.Context, email, password string) (string, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return "", domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up user by email: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hashedPassword, nil
}

// insertAccount maps an insert that lost a race with another signup to ErrUserAlreadyExists
func insertAccount(ctx context.Context, users domain.UserRepository, role domain.Role, email, hashedPassword string) (*domain.User, error) {
	user, err := users.Create(ctx, domain.CreateUserCommand{
		Role:         role,
		Email:        email,
		PasswordHash: hashedPassword,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, domain.ErrUserAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// authenticate collapses every credential failure into ErrInvalidCredentials.
// A hash comparison runs on every path so response time does not reveal which accounts exist.
func (s *AuthServiceImpl) authenticate(ctx context.Context, role domain.Role, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	hash := s.dummyHash()
	if user != nil && user.HasPassword() {
		hash = user.PasswordHash
	}
	passwordOK := s.passwordSvc.Verify(hash, password)

	reason := ""
	switch {
	case user == nil:
		reason = "unknown email"
	case user.Role != role:
		reason = "role mismatch"
	case !user.HasPassword():
		reason = "no password set"
	case !passwordOK:
		reason = "wrong password"
	}
	if reason != "" {
		userID := ""
		if user != nil {
			userID = user.ID
		}
		s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, userID).
			WithEmail(email).
			WithRole(role).
			WithMetadata("reason", reason).
			WithError(domain.ErrInvalidCredentials))
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// dummyHash is computed on first use so construction never calls the hasher
func (s *AuthServiceImpl) dummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwordSvc.Hash(dummyPassword)
		if err != nil {
			s.logger.WithError(err).Warn("failed to prepare dummy password hash")
			return
		}
		s.dummy = hash
	})
	return s.dummy
}

func (s *AuthServiceImpl) loginResult(ctx context.Context, user *domain.User, companyID string) (*domain.AuthResult, error) {
	result, err := s.issueResult(user, companyID)
	if err != nil {
		return nil, err
	}
	s.auditLogger.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).
		WithEmail(user.Email).
		WithRole(user.Role))
	return result, nil
}

func (s *AuthServiceImpl) issueResult(user *domain.User, companyID string) (*domain.AuthResult, error) {
	token, err := s.tokenSvc.Issue(domain.TokenRequest{
		Subject:   user.ID,
		Role:      user.Role,
		CompanyID: companyID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &domain.AuthResult{
		User:        user,
		AccessToken: token,
		CompanyID:   companyID,
		ExpiresIn:   int64(s.config.AccessTTL / time.Second),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
