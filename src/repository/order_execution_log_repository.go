package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"earningsbot/src/database"
	"earningsbot/src/model"
)

// OrderExecutionLogRepository mirrors trade log records into the database.
type OrderExecutionLogRepository struct {
	db *gorm.DB
}

// NewOrderExecutionLogRepository uses the main read/write database.
func NewOrderExecutionLogRepository() *OrderExecutionLogRepository {
	logger.WithField("component", "OrderExecutionLogRepository").
		Info("Creating new OrderExecutionLogRepository with MainDB")

	return &OrderExecutionLogRepository{
		db: database.MainDB,
	}
}

// NewReadOnlyOrderExecutionLogRepository reads through ReadOnlyDB for the
// admin API.
func NewReadOnlyOrderExecutionLogRepository() *OrderExecutionLogRepository {
	return &OrderExecutionLogRepository{db: database.ReadOnlyDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *OrderExecutionLogRepository) WithDB(db *gorm.DB) *OrderExecutionLogRepository {
	return &OrderExecutionLogRepository{db: db}
}

// MirrorOrder inserts one row per order id. Replaying the same order is a no-op.
func (r *OrderExecutionLogRepository) MirrorOrder(ctx context.Context, res model.OrderResult) error {
	row := model.NewOrderExecutionLog(res)

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderExecutionLogRepository",
		"op":       "MirrorOrder",
		"order_id": row.OrderID,
		"ticker":   row.Ticker,
		"side":     row.Side,
	}).Debug("Mirroring order execution")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderExecutionLogRepository",
			"op":       "MirrorOrder",
			"order_id": row.OrderID,
		}).WithError(err).Error("Failed to mirror order execution")

		return err
	}
	return nil
}

// ListRecent returns the latest executions, newest first.
func (r *OrderExecutionLogRepository) ListRecent(ctx context.Context, limit int) ([]model.OrderExecutionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []model.OrderExecutionLog
	err := r.db.WithContext(ctx).
		Order("executed_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
