package decision

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the strategy thresholds. It is passed by value and never mutated
// after construction.
type Config struct {
	MinEPSBeatPct     float64 `envconfig:"MIN_EPS_BEAT_PCT" default:"0.05" yaml:"min_eps_beat_pct"`
	MinAHMovePct      float64 `envconfig:"MIN_AH_MOVE_PCT" default:"0.03" yaml:"min_ah_move_pct"`
	MaxPriorRunupPct  float64 `envconfig:"MAX_PRIOR_RUNUP_PCT" default:"0.10" yaml:"max_prior_runup_pct"`
	SectorETFMin      float64 `envconfig:"SECTOR_ETF_MIN" default:"-0.015" yaml:"sector_etf_min"`
	ATRStopMultiplier float64 `envconfig:"ATR_STOP_MULTIPLIER" default:"1.5" yaml:"atr_stop_multiplier"`
	HoldDays          int     `envconfig:"HOLD_DAYS" default:"10" yaml:"hold_days"`
	MaxPositions      int     `envconfig:"MAX_POSITIONS" default:"5" yaml:"max_positions"`
	LookbackDays      int     `envconfig:"LOOKBACK_DAYS" default:"10" yaml:"lookback_days"`

	StrategyFile string `envconfig:"STRATEGY_FILE" yaml:"-"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinEPSBeatPct:     0.05,
		MinAHMovePct:      0.03,
		MaxPriorRunupPct:  0.10,
		SectorETFMin:      -0.015,
		ATRStopMultiplier: 1.5,
		HoldDays:          10,
		MaxPositions:      5,
		LookbackDays:      10,
	}
}

// GetConfig reads thresholds from the environment and applies STRATEGY_FILE on top when set.
func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	if config.StrategyFile != "" {
		overlaid, err := LoadOverlay(config, config.StrategyFile)
		if err != nil {
			panic(fmt.Errorf("error loading strategy file: %w", err))
		}
		config = overlaid
	}
	return config
}

// LoadOverlay returns base with every key present in the YAML file at path applied.
func LoadOverlay(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read %s: %w", path, err)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// Validate rejects thresholds the engine cannot act on.
func (c Config) Validate() error {
	if c.ATRStopMultiplier <= 0 {
		return fmt.Errorf("atr_stop_multiplier must be positive, got %v", c.ATRStopMultiplier)
	}
	if c.HoldDays <= 0 {
		return fmt.Errorf("hold_days must be positive, got %d", c.HoldDays)
	}
	if c.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive, got %d", c.MaxPositions)
	}
	if c.LookbackDays < 2 {
		return fmt.Errorf("lookback_days must be at least 2, got %d", c.LookbackDays)
	}
	return nil
}
