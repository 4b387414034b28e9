package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/larkes/communities-api/internal/http/handlers"
	"github.com/larkes/communities-api/internal/http/middleware"
	"github.com/larkes/communities-api/internal/mocks"
	"github.com/larkes/communities-api/internal/observability"
	"github.com/larkes/communities-api/internal/services"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := mocks.NewMockUserRepository()
	companies := mocks.NewMockCompanyRepository()
	audit := mocks.NewMockAuditLogger()
	policies := services.NewPolicyService(mocks.NewMockCasbinEnforcer())

	return BuildRouter(Router{
		Auth:     handlers.NewAuthHandlers(mocks.NewMockAuthService()),
		Accounts: handlers.NewAccountHandlers(users, companies),
		Policies: handlers.NewPolicyHandlers(policies),
		AuthMW:   middleware.NewAuthMW(mocks.NewMockTokenService(), users, companies, audit, logger),
		CasbinMW: middleware.NewCasbinMW(policies, audit),
		Metrics:  observability.NewMetrics(prometheus.NewRegistry()),
		Logger:   logger,
	})
}

func TestBuildRouter_Routes(t *testing.T) {
	r := newTestRouter()

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"POST /auth/otp/request",
		"POST /auth/otp/verify",
		"POST /auth/company/signup",
		"POST /auth/company/login",
		"POST /auth/admin/signup",
		"POST /auth/admin/login",
		"GET /users/me",
		"GET /companies/me",
		"PATCH /companies/me",
		"GET /admin/users",
		"GET /admin/policies",
		"POST /admin/policies",
		"DELETE /admin/policies",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestBuildRouter_ProtectedGroupsRequireToken(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/users/me", "/companies/me", "/admin/users", "/admin/policies"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
