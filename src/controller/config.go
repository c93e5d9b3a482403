package controller

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AllowedExchanges  []string `envconfig:"ALLOWED_EXCHANGES" default:"NMS,NYQ,NGM,NCM,ASE"`
	AllowedQuoteTypes []string `envconfig:"ALLOWED_QUOTE_TYPES" default:"EQUITY"`
	Workers           int      `envconfig:"ELIGIBILITY_WORKERS" default:"8"`
	ATRPeriod         int      `envconfig:"ATR_PERIOD" default:"14"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
