package controller

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"earningsbot/src/repository"
)

func TestCapturePersistsException(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{})
	require.NoError(t, err)
	repo := (&repository.ExceptionRepository{}).WithDB(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "exceptions"`)).
		WithArgs("orchestrator", "scan_amc", "AfterHoursMove", "ACME", "no data", sqlmock.AnyArg(), "warn", `{"ticker":"ACME"}`, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	Capture(context.Background(), repo, "orchestrator", "scan_amc", "AfterHoursMove", "warn",
		errors.New("no data"), map[string]interface{}{"ticker": "ACME"})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptureIgnoresNilError(t *testing.T) {
	Capture(context.Background(), nil, "orchestrator", "update", "ATR", "warn", nil, nil)
	Capture(context.Background(), nil, "orchestrator", "update", "ATR", "warn", errors.New("boom"), nil)
}
