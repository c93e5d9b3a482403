package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"earningsbot/src/model"
)

// ReadOnlyDB serves the HTTP read endpoints. The database user for a
// dedicated connection should have SELECT-only permissions.
var ReadOnlyDB *gorm.DB

// InitReadOnlyDB opens DATABASE_URL_READONLY, or reuses MainDB when it is
// unset. It does not run any migrations.
func InitReadOnlyDB() error {
	config := GetConfig()
	if config.DatabaseURLReadOnly == "" {
		ReadOnlyDB = MainDB
		return nil
	}

	db, err := Open(config.DatabaseURLReadOnly, config.GormLogLevel)
	if err != nil {
		return fmt.Errorf("ReadOnlyDB: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from ReadOnlyDB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping ReadOnlyDB: %w", err)
	}

	// the mirror table must already exist
	var count int64
	if err := db.Model(&model.OrderExecutionLog{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to access order_execution_logs: %w", err)
	}

	logrus.WithFields(logrus.Fields{"count": count, "driver": db.Dialector.Name()}).Info("[ReadOnlyDB] order_execution_logs reachable")

	ReadOnlyDB = db
	return nil
}
