package database

import (
	"context"
	"fmt"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/larkes/communities-api/internal/infrastructure/repositories"
)

// Open creates a new database connection for the configured driver
func Open(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	}

	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), config)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), config)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// AutoMigrate creates or updates the users, otps and companies tables and the Casbin policy table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&repositories.DBUser{}, &repositories.DBOTP{}, &repositories.DBCompany{}); err != nil {
		return fmt.Errorf("failed to migrate auth tables: %w", err)
	}

	// The adapter creates casbin_rule on construction
	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}

	return nil
}

// newGormLogger routes GORM warnings and errors through logrus
func newGormLogger(log *logrus.Logger) logger.Interface {
	if log == nil {
		return logger.Default.LogMode(logger.Warn)
	}
	return logger.New(log, logger.Config{
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// DBPinger adapts a gorm handle to the health check
type DBPinger struct{ DB *gorm.DB }

func (p DBPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
