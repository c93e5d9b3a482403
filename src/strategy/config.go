package strategy

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	ModePaper = "paper"
	ModeLive  = "live"
)

type Config struct {
	Mode            string  `envconfig:"TRADING_MODE" default:"paper"`
	PositionSizeUSD float64 `envconfig:"POSITION_SIZE_USD" default:"1000"`
}

func (c Config) Validate() error {
	if c.Mode != ModePaper && c.Mode != ModeLive {
		return fmt.Errorf("TRADING_MODE must be %q or %q, got %q", ModePaper, ModeLive, c.Mode)
	}
	if c.PositionSizeUSD <= 0 {
		return fmt.Errorf("POSITION_SIZE_USD must be positive, got %v", c.PositionSizeUSD)
	}
	return nil
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
