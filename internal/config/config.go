// Package config loads tool settings from .gantt/config.yaml and the
// environment. Everything has a sensible default so the file is optional.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configDir = ".gantt"
const configFile = "config.yaml"

// Config holds tool-wide settings.
type Config struct {
	// Calendar defaults applied when a project file omits its calendar.
	WorkStartHour int   `yaml:"work_start_hour"`
	WorkEndHour   int   `yaml:"work_end_hour"`
	Weekends      []int `yaml:"weekends"`

	// Speedup compresses simulated time during gantt run: one scheduled
	// hour passes in 1h/Speedup of wall time.
	Speedup float64 `yaml:"speedup"`

	// DatabaseURL is the postgres DSN for schedule archiving. Empty
	// disables archiving. The GANTT_DATABASE_URL environment variable
	// takes precedence.
	DatabaseURL string `yaml:"database_url"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		WorkStartHour: 9,
		WorkEndHour:   17,
		Weekends:      []int{6, 7},
		Speedup:       3600,
	}
}

// Load reads .gantt/config.yaml from the working directory, falling back
// to defaults when the file does not exist.
func Load() (*Config, error) {
	return LoadFile(filepath.Join(configDir, configFile))
}

// LoadFile reads settings from an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv("GANTT_DATABASE_URL"); dsn != "" {
		c.DatabaseURL = dsn
	}
}

func (c *Config) validate() error {
	if c.WorkStartHour < 0 || c.WorkStartHour > 23 || c.WorkEndHour < 0 || c.WorkEndHour > 23 {
		return fmt.Errorf("work hours must be in [0,23], got %d-%d", c.WorkStartHour, c.WorkEndHour)
	}
	if c.WorkStartHour >= c.WorkEndHour {
		return fmt.Errorf("work start hour %d must be before end hour %d", c.WorkStartHour, c.WorkEndHour)
	}
	for _, w := range c.Weekends {
		if w < 1 || w > 7 {
			return fmt.Errorf("weekday %d out of range (ISO 1-7)", w)
		}
	}
	if c.Speedup <= 0 {
		return fmt.Errorf("speedup must be positive, got %v", c.Speedup)
	}
	return nil
}
