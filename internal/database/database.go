package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"rar-studio/internal/config"
	"rar-studio/internal/model"
)

// InitDatabase opens the configured store, runs migrations and seeds the settings rows
func InitDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.WithField("dialect", db.Dialector.Name()).Info("Database initialized successfully")
	return db, nil
}

// Dialector picks the gorm driver for the configured database
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.GetDSN()), nil
	case config.DriverMySQL:
		return mysql.Open(cfg.GetDSN()), nil
	case config.DriverSQLite, "":
		return sqlite.Open(cfg.GetDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects with the logrus backed gorm logger. Timestamps are always UTC.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema and makes sure every singleton settings row exists
func Migrate(db *gorm.DB) error {
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := seedSettings(db); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	return nil
}

func runMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.AutoMigrate(
		&model.Lead{},
		&model.Message{},
		&model.UsageEvent{},
		&model.TenantLimits{},
		&model.Integrations{},
		&model.BusinessProfile{},
		&model.OutboundMessage{},
		&model.Funnel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func seedSettings(db *gorm.DB) error {
	seeds := []interface{}{
		&model.TenantLimits{
			ID:              model.SingletonID,
			Plan:            model.DefaultPlan,
			LeadCap:         model.DefaultLeadCap,
			MonthlyPriceUSD: model.DefaultMonthlyPriceUSD,
		},
		&model.Integrations{
			ID:               model.SingletonID,
			AutosendChannels: model.DefaultAutosendChannels,
		},
		&model.BusinessProfile{
			ID:            model.SingletonID,
			Tone:          "confident",
			ContactMethod: "dm",
		},
	}

	for _, seed := range seeds {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return err
		}
	}
	return nil
}
