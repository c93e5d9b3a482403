package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	FMPAPIKey    string        `envconfig:"FMP_API_KEY"`
	FMPBaseURL   string        `envconfig:"FMP_BASE_URL" default:"https://financialmodelingprep.com/stable"`
	ChartBaseURL string        `envconfig:"CHART_BASE_URL" default:"https://query1.finance.yahoo.com"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
