package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/http/respond"
)

// Context keys set by AuthMW
const (
	ContextUser    = "auth_user"
	ContextClaims  = "auth_claims"
	ContextCompany = "auth_company"
	// ContextUserID and ContextRole are plain strings for request logging and casbin
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// AuthMW authenticates bearer tokens against the user store and resolves the acting company
type AuthMW struct {
	tokenSvc    domain.TokenService
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
	auditLogger domain.AuditLogger
	logger      *logrus.Logger
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(
	tokenSvc domain.TokenService,
	userRepo domain.UserRepository,
	companyRepo domain.CompanyRepository,
	auditLogger domain.AuditLogger,
	logger *logrus.Logger,
) *AuthMW {
	return &AuthMW{
		tokenSvc:    tokenSvc,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Authenticate requires a valid bearer token whose subject still exists
func (mw *AuthMW) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, domain.ErrUnauthenticated)
			return
		}

		claims, err := mw.tokenSvc.Verify(token)
		if err != nil {
			respond.Error(c, domain.ErrTokenInvalid)
			return
		}

		user, err := mw.userRepo.FindByID(c.Request.Context(), claims.Subject)
		if errors.Is(err, domain.ErrUserNotFound) {
			respond.Error(c, domain.ErrUnauthenticated)
			return
		}
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, string(user.Role))
		c.Next()
	}
}

// RequireRoles lets the request through only if the stored user role is one of roles.
// It must run after Authenticate.
func (mw *AuthMW) RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respond.Error(c, domain.ErrUnauthenticated)
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}

		mw.auditLogger.LogEvent(c.Request.Context(), domain.NewAuditEvent(domain.AccessDeniedEvent, user.ID).
			WithRole(user.Role).
			WithMetadata("path", c.FullPath()).
			WithError(domain.ErrForbidden))
		respond.Error(c, domain.ErrForbidden)
	}
}

// CurrentCompany resolves the company the user acts for.
// A durable owner link wins; otherwise the company_id claim of the token is used.
func (mw *AuthMW) CurrentCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respond.Error(c, domain.ErrUnauthenticated)
			return
		}
		ctx := c.Request.Context()

		company, err := mw.companyRepo.FindByOwner(ctx, user.ID)
		if err != nil && !errors.Is(err, domain.ErrCompanyNotFound) {
			respond.Error(c, err)
			return
		}

		if company == nil {
			if claims, ok := CurrentClaims(c); ok && claims.CompanyID != "" {
				company, err = mw.companyRepo.FindByID(ctx, claims.CompanyID)
				if err != nil && !errors.Is(err, domain.ErrCompanyNotFound) {
					respond.Error(c, err)
					return
				}
			}
		}

		if company == nil {
			mw.logger.WithField("user_id", user.ID).Debug("no company resolvable for user")
			respond.Error(c, domain.ErrCompanyNotSet)
			return
		}

		c.Set(ContextCompany, company)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// CurrentClaims returns the verified token claims stored by Authenticate
func CurrentClaims(c *gin.Context) (*domain.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.TokenClaims)
	return claims, ok && claims != nil
}

// CurrentCompanyOf returns the company stored by CurrentCompany
func CurrentCompanyOf(c *gin.Context) (*domain.Company, bool) {
	v, ok := c.Get(ContextCompany)
	if !ok {
		return nil, false
	}
	company, ok := v.(*domain.Company)
	return company, ok && company != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
