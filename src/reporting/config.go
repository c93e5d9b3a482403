package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const NotionVersion = "2022-06-28"

type Config struct {
	NotionToken      string        `envconfig:"NOTION_TOKEN"`
	NotionConfigFile string        `envconfig:"NOTION_CONFIG_FILE" default:"data/notion_config.json"`
	NotionBaseURL    string        `envconfig:"NOTION_BASE_URL" default:"https://api.notion.com/v1"`
	NotionTimeout    time.Duration `envconfig:"NOTION_TIMEOUT" default:"15s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Databases is the content of the Notion config file written by SetupDatabases.
type Databases struct {
	ScansDBID     string `json:"scans_db_id,omitempty"`
	PositionsDBID string `json:"positions_db_id"`
	CalendarDBID  string `json:"calendar_db_id"`
}

func LoadDatabases(path string) (Databases, error) {
	var dbs Databases
	data, err := os.ReadFile(path)
	if err != nil {
		return dbs, err
	}
	if err := json.Unmarshal(data, &dbs); err != nil {
		return dbs, fmt.Errorf("decode %s: %w", path, err)
	}
	return dbs, nil
}

func SaveDatabases(path string, dbs Databases) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(dbs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
