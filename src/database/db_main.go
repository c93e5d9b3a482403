package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"earningsbot/src/database/migrations"
	"earningsbot/src/model"
)

// MainDB is the primary read/write database connection used by the application.
var MainDB *gorm.DB

// IsPostgresURL reports whether url selects the postgres driver.
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// Dialector picks the gorm driver for url. Non-postgres values are sqlite
// paths; their parent directory is created.
func Dialector(url string) (gorm.Dialector, error) {
	if IsPostgresURL(url) {
		return postgres.Open(url), nil
	}
	if url == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if url != ":memory:" && !strings.HasPrefix(url, "file:") {
		if err := os.MkdirAll(filepath.Dir(url), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	return sqlite.Open(url), nil
}

// Open connects to url and tunes the pool.
func Open(url string, gormLogLevel int) (*gorm.DB, error) {
	dialector, err := Dialector(url)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector,
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(gormLogLevel)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	if IsPostgresURL(url) {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
	} else {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return db, nil
}

// Migrate creates the write-side schema and runs the data migrations.
func Migrate(db *gorm.DB) error {
	// Add here all models that belong to the write-side schema.
	if err := db.AutoMigrate(
		&model.OrderExecutionLog{},
		&model.Exception{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}
	return nil
}

// InitMainDB initializes the main (read/write) database connection and runs migrations.
// This should be called once at application startup, and only when ENABLE_DB is set.
func InitMainDB() error {
	config := GetConfig()
	db, err := Open(config.DatabaseURLMain, config.GormLogLevel)
	if err != nil {
		return err
	}

	// Assign to the global variable only after a successful connection.
	MainDB = db

	logrus.WithField("driver", db.Dialector.Name()).Info("[database] MainDB connection established")

	if err := Migrate(MainDB); err != nil {
		return err
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}
