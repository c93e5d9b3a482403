package decision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()
	want := DefaultConfig()
	require.Equal(t, want, cfg)
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("MAX_POSITIONS", "3")
	t.Setenv("ATR_STOP_MULTIPLIER", "2")

	cfg := GetConfig()
	require.Equal(t, 3, cfg.MaxPositions)
	require.Equal(t, 2.0, cfg.ATRStopMultiplier)
	require.Equal(t, 10, cfg.HoldDays)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hold_days: 7\nmin_ah_move_pct: 0.04\n"), 0o644))

	cfg, err := LoadOverlay(DefaultConfig(), path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.HoldDays)
	require.Equal(t, 0.04, cfg.MinAHMovePct)
	require.Equal(t, 5, cfg.MaxPositions)
}

func TestLoadOverlayRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_positions: 0\n"), 0o644))

	cfg, err := LoadOverlay(DefaultConfig(), path)
	require.Error(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	_, err = LoadOverlay(DefaultConfig(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
