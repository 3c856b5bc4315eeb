// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	DefaultTimeFormat = "2006-01-02 15:04:05"
)

type Config struct {
	Repository string `json:"repository"`  // default repository root, empty means search from cwd
	LogLevel   string `json:"log_level"`   // debug, info, warn, error
	Color      string `json:"color"`       // auto, always, never
	TimeZone   string `json:"time_zone"`   // local, utc or an IANA zone name
	TimeFormat string `json:"time_format"` // Go reference layout
	CacheSize  int    `json:"cache_size"`  // decoded revlogs kept in memory
}

func Default() *Config {
	return &Config{
		LogLevel:   "warn",
		Color:      ColorAuto,
		TimeZone:   "local",
		TimeFormat: DefaultTimeFormat,
		CacheSize:  16,
	}
}

// DefaultPath returns the config file named by HGDUMP_CONFIG, if any.
func DefaultPath() string {
	return os.Getenv("HGDUMP_CONFIG")
}

// Load reads a JSON config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q", c.Color)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.TimeFormat == "" {
		return fmt.Errorf("time_format must not be empty")
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}

	return nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	switch c.TimeZone {
	case "", "local":
		return time.Local, nil
	case "utc", "UTC":
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
