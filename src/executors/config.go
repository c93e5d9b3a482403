package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the daily job times as HH:MM in America/New_York.
type Config struct {
	LoopPeriod time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
	ScanBMOAt  string        `envconfig:"SCAN_BMO_AT" default:"09:15"`
	ScanAMCAt  string        `envconfig:"SCAN_AMC_AT" default:"16:15"`
	UpdateAt   string        `envconfig:"UPDATE_AT" default:"16:30"`
	CalendarAt string        `envconfig:"CALENDAR_AT" default:"19:00"`
	// JobGrace skips a job that is more than this late. Zero means no limit.
	JobGrace time.Duration `envconfig:"JOB_GRACE" default:"0"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
