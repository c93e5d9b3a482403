package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

// ErrPositionExists is returned by AddStrict when the ticker is already held.
var ErrPositionExists = errors.New("position already exists")

// ErrStopNotRaised is returned by UpdateStop when the new stop is below the stored one.
var ErrStopNotRaised = errors.New("stop would move down")

// PositionFileRepository keeps open positions in a single JSON array file.
// Every mutation is a full load-modify-save. It is not safe for concurrent
// use by more than one process.
type PositionFileRepository struct {
	path string
}

// NewPositionFileRepository creates a store backed by path. The file is created on first save.
func NewPositionFileRepository(path string) *PositionFileRepository {
	logger.WithFields(map[string]interface{}{
		"component": "PositionFileRepository",
		"path":      path,
	}).Debug("Creating position store")

	return &PositionFileRepository{path: path}
}

func (r *PositionFileRepository) Path() string { return r.path }

// Load returns every open position. A missing file is an empty store.
func (r *PositionFileRepository) Load() ([]model.Position, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Position{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read positions %s: %w", r.path, err)
	}

	positions := []model.Position{}
	if len(data) == 0 {
		return positions, nil
	}
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("decode positions %s: %w", r.path, err)
	}
	return positions, nil
}

// Save replaces the whole store. The file is written to a temp file and renamed
// so a crash never leaves a truncated store behind.
func (r *PositionFileRepository) Save(positions []model.Position) error {
	if positions == nil {
		positions = []model.Position{}
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create positions dir: %w", err)
	}

	data, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".positions-*.json")
	if err != nil {
		return fmt.Errorf("create temp positions file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write positions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close positions: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace positions %s: %w", r.path, err)
	}

	logger.WithFields(map[string]interface{}{
		"repo":  "PositionFileRepository",
		"op":    "Save",
		"count": len(positions),
	}).Debug("Positions saved")

	return nil
}

// Add appends p unless its ticker is already held, in which case it logs a
// warning and leaves the store untouched.
func (r *PositionFileRepository) Add(p model.Position) error {
	err := r.AddStrict(p)
	if errors.Is(err, ErrPositionExists) {
		logger.WithFields(map[string]interface{}{
			"repo":   "PositionFileRepository",
			"op":     "Add",
			"ticker": p.Ticker,
		}).Warn("Position already exists, skipping")
		return nil
	}
	return err
}

// AddStrict appends p or returns ErrPositionExists.
func (r *PositionFileRepository) AddStrict(p model.Position) error {
	positions, err := r.Load()
	if err != nil {
		return err
	}
	if _, ok := model.FindPosition(positions, p.Ticker); ok {
		return fmt.Errorf("%s: %w", p.Ticker, ErrPositionExists)
	}
	return r.Save(append(positions, p))
}

// Get returns the position for ticker, or nil when it is not held.
func (r *PositionFileRepository) Get(ticker string) (*model.Position, error) {
	positions, err := r.Load()
	if err != nil {
		return nil, err
	}
	if p, ok := model.FindPosition(positions, ticker); ok {
		return &p, nil
	}
	return nil, nil
}

// Remove deletes ticker from the store. Removing an absent ticker is a no-op.
func (r *PositionFileRepository) Remove(ticker string) error {
	positions, err := r.Load()
	if err != nil {
		return err
	}

	kept := positions[:0]
	for _, p := range positions {
		if p.Ticker != ticker {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(positions) {
		return nil
	}
	return r.Save(kept)
}

// UpdateStop raises the stop of ticker. Absent tickers are ignored; a lower
// stop leaves the file untouched and returns ErrStopNotRaised.
func (r *PositionFileRepository) UpdateStop(ticker string, newStop float64) error {
	positions, err := r.Load()
	if err != nil {
		return err
	}

	for i := range positions {
		if positions[i].Ticker != ticker {
			continue
		}
		if newStop < positions[i].CurrentStop {
			logger.WithFields(map[string]interface{}{
				"repo":         "PositionFileRepository",
				"op":           "UpdateStop",
				"ticker":       ticker,
				"current_stop": positions[i].CurrentStop,
				"new_stop":     newStop,
			}).Warn("Refusing to lower stop")
			return ErrStopNotRaised
		}
		positions[i].CurrentStop = newStop
		return r.Save(positions)
	}
	return nil
}
