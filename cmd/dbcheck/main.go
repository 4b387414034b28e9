package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/internal/app"
	"github.com/larkes/communities-api/internal/config"
	"github.com/larkes/communities-api/internal/infrastructure/auth"
	"github.com/larkes/communities-api/internal/infrastructure/database"
)

// dbcheck verifies the configured database and Redis are reachable, applies migrations
// and seeds the default Casbin policies without starting the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	logger := app.NewLogger(cfg)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).WithField("driver", cfg.DBDriver).Fatal("dbcheck failed")
	}
}

// run owns every resource it opens so they are released before main exits
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log := logger.WithField("driver", cfg.DBDriver)

	db, err := database.Open(cfg.DBDriver, cfg.DSN, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err := (database.DBPinger{DB: db}).Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("database reachable")

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")

	cas, err := auth.NewCasbinService(db, cfg.CasbinModelPath)
	if err != nil {
		return fmt.Errorf("failed to load casbin model: %w", err)
	}
	seeded, err := cas.SeedDefaults()
	if err != nil {
		return fmt.Errorf("failed to seed casbin policies: %w", err)
	}
	policies, err := cas.E.GetPolicy()
	if err != nil {
		return fmt.Errorf("failed to list casbin policies: %w", err)
	}
	log.WithFields(logrus.Fields{"seeded": seeded, "policies": len(policies)}).Info("casbin ready")

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb == nil {
		logger.Info("redis not configured")
		return nil
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.WithField("addr", cfg.RedisAddr).Info("redis reachable")
	return nil
}
