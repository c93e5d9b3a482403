package executor

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName string `envconfig:"APP_NAME" default:"earningsbot"`
	// ServeHTTP runs the admin API alongside the scheduler.
	ServeHTTP bool `envconfig:"SERVE_HTTP" default:"true"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
