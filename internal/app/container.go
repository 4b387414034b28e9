package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
	"github.com/larkes/communities-api/internal/config"
	httpx "github.com/larkes/communities-api/internal/http"
	"github.com/larkes/communities-api/internal/http/handlers"
	"github.com/larkes/communities-api/internal/http/middleware"
	"github.com/larkes/communities-api/internal/infrastructure/audit"
	"github.com/larkes/communities-api/internal/infrastructure/auth"
	"github.com/larkes/communities-api/internal/infrastructure/database"
	"github.com/larkes/communities-api/internal/infrastructure/notifications"
	"github.com/larkes/communities-api/internal/infrastructure/repositories"
	"github.com/larkes/communities-api/internal/observability"
	"github.com/larkes/communities-api/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	// Infrastructure
	DB      *gorm.DB
	Redis   *database.RedisClient
	Casbin  *auth.CasbinService
	Metrics *observability.Metrics

	// Repositories
	UserRepo    domain.UserRepository
	OTPRepo     domain.OTPRepository
	CompanyRepo domain.CompanyRepository
	Throttle    domain.OTPThrottle

	// Services
	AuditLogger     domain.AuditLogger
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	PolicySvc       domain.PolicyService
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger, registry *prometheus.Registry) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initRepositories()
	if err := c.initServices(registry); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DBDriver, c.Config.DSN, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = db

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	c.Redis = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if c.Redis == nil {
		c.Logger.Info("redis not configured, OTP resend window and attempt limit disabled")
		return nil
	}
	if err := c.Redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", c.Config.RedisAddr, err)
	}
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.DB)
	c.CompanyRepo = repositories.NewCompanyRepository(c.DB)
	if c.Redis != nil {
		c.Throttle = repositories.NewOTPThrottleRepository(c.Redis.Client)
	}
}

func (c *Container) initServices(registry *prometheus.Registry) error {
	if registry != nil {
		c.Metrics = observability.NewMetrics(registry)
		c.AuditLogger = audit.NewLogrusAuditLogger(c.Logger, c.Metrics)
	} else {
		c.AuditLogger = audit.NewLogrusAuditLogger(c.Logger, nil)
	}

	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	seeded, err := cas.SeedDefaults()
	if err != nil {
		return fmt.Errorf("failed to seed casbin policies: %w", err)
	}
	if seeded {
		c.Logger.Info("casbin: seeded default policies")
	}
	c.Casbin = cas
	c.PolicySvc = services.NewPolicyService(cas.E)

	c.PasswordSvc = auth.NewPasswordService(c.Config.BcryptCost)
	tokenSvc, err := auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTAlgorithm, c.Config.JWTIssuer, c.Config.AccessTTL)
	if err != nil {
		return err
	}
	c.TokenSvc = tokenSvc
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Logger,
	)

	if c.Config.OTP_FixedCode != "" {
		c.Logger.Warn("fixed OTP code enabled; every phone receives the same code")
	}
	c.OTPSvc = services.NewOTPService(c.OTPRepo, c.Throttle, c.NotificationSvc, c.Logger, services.OTPConfig{
		Length:       c.Config.OTP_Length,
		TTL:          c.Config.OTP_TTL,
		MaxAttempts:  c.Config.OTP_MaxAttempts,
		ResendWindow: c.Config.OTP_ResendWindow,
		FixedCode:    c.Config.OTP_FixedCode,
	})

	if !c.Config.AdminSignupEnabled() {
		c.Logger.Info("admin signup disabled: no bootstrap token configured")
	}
	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.CompanyRepo,
		repositories.NewGormTransactor(c.DB),
		c.OTPSvc,
		services.NewStudentProvisioner(c.UserRepo, c.AuditLogger),
		c.PasswordSvc,
		c.TokenSvc,
		c.AuditLogger,
		c.Logger,
		services.AuthConfig{
			AccessTTL:        c.Config.AccessTTL,
			AdminSignupToken: c.Config.AdminSignupToken,
		},
	)
	return nil
}

// Router builds the HTTP handler tree from the container
func (c *Container) Router() *httpx.Router {
	health := map[string]handlers.Pinger{"database": database.DBPinger{DB: c.DB}}
	if c.Redis != nil {
		health["redis"] = c.Redis
	}

	return &httpx.Router{
		Auth:     handlers.NewAuthHandlers(c.AuthSvc),
		Accounts: handlers.NewAccountHandlers(c.UserRepo, c.CompanyRepo),
		Policies: handlers.NewPolicyHandlers(c.PolicySvc),
		AuthMW:   middleware.NewAuthMW(c.TokenSvc, c.UserRepo, c.CompanyRepo, c.AuditLogger, c.Logger),
		CasbinMW: middleware.NewCasbinMW(c.PolicySvc, c.AuditLogger),
		Metrics:  c.Metrics,
		Health:   health,
		Logger:   c.Logger,
	}
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.WithError(err).Warn("failed to close redis client")
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
