package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"earningsbot/src/database"
	"earningsbot/src/model"
)

// ExceptionRepository handles persistence of system exceptions.
type ExceptionRepository struct {
	db *gorm.DB
}

// NewExceptionRepository returns nil when the main database is not initialized,
// which turns exception capture into log-only mode.
func NewExceptionRepository() *ExceptionRepository {
	if database.MainDB == nil {
		return nil
	}
	return &ExceptionRepository{
		db: database.MainDB,
	}
}

func (r *ExceptionRepository) WithDB(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// Create persists a new exception in the database.
func (r *ExceptionRepository) Create(
	ctx context.Context,
	exc *model.Exception,
) error {

	logger.WithFields(map[string]interface{}{
		"service": exc.Service,
		"module":  exc.Module,
		"method":  exc.Method,
		"ticker":  exc.Ticker,
		"level":   exc.Level,
	}).Debug("Persisting system exception")

	return r.db.WithContext(ctx).Create(exc).Error
}

// ListByModule returns the latest exceptions of a module, newest first.
func (r *ExceptionRepository) ListByModule(ctx context.Context, module string, limit int) ([]model.Exception, error) {
	var rows []model.Exception
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if module != "" {
		q = q.Where("module = ?", module)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
