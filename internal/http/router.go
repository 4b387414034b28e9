package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/http/handlers"
	"github.com/larkes/communities-api/internal/http/middleware"
	"github.com/larkes/communities-api/internal/observability"
)

// Router bundles what BuildRouter mounts
type Router struct {
	Auth     *handlers.AuthHandlers
	Accounts *handlers.AccountHandlers
	Policies *handlers.PolicyHandlers
	AuthMW   *middleware.AuthMW
	CasbinMW *middleware.CasbinMW
	Metrics  *observability.Metrics
	Health   map[string]handlers.Pinger
	Logger   *logrus.Logger
}

func BuildRouter(rt Router) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(rt.Logger))
	if rt.Metrics != nil {
		r.Use(rt.Metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(rt.Metrics.Handler()))
	}

	r.GET("/health", handlers.Health(rt.Health))

	auth := r.Group("/auth")
	auth.POST("/otp/request", rt.Auth.RequestOTP)
	auth.POST("/otp/verify", rt.Auth.VerifyOTP)
	auth.POST("/company/signup", rt.Auth.CompanySignup)
	auth.POST("/company/login", rt.Auth.CompanyLogin)
	auth.POST("/admin/signup", rt.Auth.AdminSignup)
	auth.POST("/admin/login", rt.Auth.AdminLogin)

	users := r.Group("/users", rt.AuthMW.Authenticate())
	users.GET("/me", rt.Accounts.Me)

	companies := r.Group("/companies",
		rt.AuthMW.Authenticate(),
		rt.AuthMW.RequireRoles(domain.RoleCompany),
		rt.AuthMW.CurrentCompany(),
	)
	companies.GET("/me", rt.Accounts.MyCompany)
	companies.PATCH("/me", rt.Accounts.UpdateMyCompany)

	adm := r.Group("/admin",
		rt.AuthMW.Authenticate(),
		rt.AuthMW.RequireRoles(domain.RoleAdmin),
		rt.CasbinMW.Enforce(),
	)
	adm.GET("/users", rt.Accounts.ListUsers)
	adm.GET("/policies", rt.Policies.List)
	adm.POST("/policies", rt.Policies.Add)
	adm.DELETE("/policies", rt.Policies.Remove)

	return r
}
