package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/http/respond"
)

// CasbinMW checks the stored user role against casbin policies for the request path and method
type CasbinMW struct {
	policies    domain.PolicyService
	auditLogger domain.AuditLogger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService, auditLogger domain.AuditLogger) *CasbinMW {
	return &CasbinMW{policies: policies, auditLogger: auditLogger}
}

// Enforce returns the casbin authorization middleware. It must run after AuthMW.Authenticate.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respond.Error(c, domain.ErrUnauthenticated)
			return
		}

		path := c.Request.URL.Path
		method := c.Request.Method
		allowed, err := mw.policies.CheckPermission(user.Role.PolicySubject(), path, method)
		if err != nil {
			respond.Error(c, fmt.Errorf("authorization check failed: %w", err))
			return
		}

		if !allowed {
			mw.auditLogger.LogEvent(c.Request.Context(), domain.NewAuditEvent(domain.AccessDeniedEvent, user.ID).
				WithRole(user.Role).
				WithMetadata("path", path).
				WithMetadata("method", method).
				WithError(domain.ErrForbidden))
			respond.Error(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}
