package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds persistent CLI defaults loaded from a config file.
type Config struct {
	ModelDataDir string        `yaml:"model_data_dir"` // shared static data pool
	Workers      int           `yaml:"workers"`        // parallel conversion processes
	ToolTimeout  time.Duration `yaml:"tool_timeout"`   // per-conversion timeout, 0 = none
	LedgerPath   string        `yaml:"ledger_path"`    // run-history database location
	PollWatch    bool          `yaml:"poll_watch"`     // use polling instead of fsnotify
}

// LoadConfig reads a YAML config file into Config.
// If the file does not exist, it returns zero-value Config and nil error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &c, nil
}
