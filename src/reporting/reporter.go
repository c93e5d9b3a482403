package reporting

import (
	"context"
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

// Reporter syncs calendar, scan and position rows to an external record keeper.
// Every method is best-effort: per-row failures are logged and skipped.
type Reporter interface {
	ClearCalendar(ctx context.Context) (int, error)
	WriteCalendar(ctx context.Context, date string, entries []model.CalendarEntry) (created, archived int, err error)
	WriteScan(ctx context.Context, scanType, date string, signals []model.EntrySignal, movePcts, epsBeatPcts map[string]float64) error
	SyncPositions(ctx context.Context, positions []model.Position) error
}

// Noop is the unconfigured reporter.
type Noop struct{}

func (Noop) ClearCalendar(context.Context) (int, error) { return 0, nil }

func (Noop) WriteCalendar(context.Context, string, []model.CalendarEntry) (int, int, error) {
	return 0, 0, nil
}

func (Noop) WriteScan(context.Context, string, string, []model.EntrySignal, map[string]float64, map[string]float64) error {
	return nil
}

func (Noop) SyncPositions(context.Context, []model.Position) error { return nil }

// FromConfig returns a Notion reporter when a token and database config exist, Noop otherwise.
func FromConfig(logger *logrus.Entry, cfg Config) Reporter {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.NotionToken == "" {
		return Noop{}
	}

	dbs, err := LoadDatabases(cfg.NotionConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		logger.WithField("path", cfg.NotionConfigFile).Warn("Notion config not found, run setup-notion first")
		return Noop{}
	}
	if err != nil {
		logger.WithError(err).Error("Failed to read Notion config")
		return Noop{}
	}
	return NewNotionReporter(logger, cfg, dbs)
}
