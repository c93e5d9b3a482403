package repository

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	PositionsFile string `envconfig:"POSITIONS_FILE" default:"data/positions.json"`
	TradesLogFile string `envconfig:"TRADES_LOG_FILE" default:"data/trades_log.jsonl"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
