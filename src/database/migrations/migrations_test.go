package migrations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRunOnce(t *testing.T) {
	db := openMemory(t)

	calls := 0
	fn := func(*gorm.DB) error { calls++; return nil }

	require.NoError(t, RunOnce(db, "0001_test", fn))
	require.NoError(t, RunOnce(db, "0001_test", fn))
	require.Equal(t, 1, calls)
}

func TestRunOnceDoesNotRecordFailures(t *testing.T) {
	db := openMemory(t)

	err := RunOnce(db, "0002_fail", func(*gorm.DB) error { return errors.New("boom") })
	require.ErrorContains(t, err, "boom")

	var count int64
	require.NoError(t, db.Model(&DataMigration{}).Where("id = ?", "0002_fail").Count(&count).Error)
	require.Zero(t, count)
}

func TestRunOnceValidation(t *testing.T) {
	require.NoError(t, RunOnce(nil, "x", nil))

	db := openMemory(t)
	require.Error(t, RunOnce(db, "", func(*gorm.DB) error { return nil }))
	require.Error(t, RunOnce(db, "x", nil))
}

func TestRunAllStopsAtFirstFailure(t *testing.T) {
	db := openMemory(t)

	var ran []string
	mark := func(id string) func(*gorm.DB) error {
		return func(*gorm.DB) error { ran = append(ran, id); return nil }
	}
	list := []Migration{
		{ID: "0001_a", Fn: mark("a")},
		{ID: "0002_b", Fn: func(*gorm.DB) error { return errors.New("boom") }},
		{ID: "0003_c", Fn: mark("c")},
	}

	require.ErrorContains(t, RunAll(db, list), "0002_b")
	require.Equal(t, []string{"a"}, ran)

	list[1].Fn = mark("b")
	require.NoError(t, RunAll(db, list))
	require.Equal(t, []string{"a", "b", "c"}, ran)
}
