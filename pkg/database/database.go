package database

import (
	"context"
	"fmt"

	"github.com/sefazor/brandkit-backend/internal/config"
	"github.com/sefazor/brandkit-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the connection pool. It is built once in main and closed
// explicitly on shutdown.
type Database struct {
	DB  *gorm.DB
	log *zap.Logger
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	switch cfg.Driver {
	case "mysql", "mariadb":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func NewDatabase(cfg *config.Config, log *zap.Logger) (*Database, error) {
	dial, err := dialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return &Database{DB: db, log: log}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	d.log.Info("closing database pool")
	return sqlDB.Close()
}

func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Addon{},
		&models.PackagePurchase{},
		&models.AddonPurchase{},
		&models.FormSubmission{},
	)
}
