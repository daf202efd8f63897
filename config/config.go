// Package config loads the ampserver configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	monoprice "github.com/abates/monoprice-hub"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the installation configuration. Sources maps the amplifier input
// index to the name shown to users.
type Config struct {
	Port         string            `yaml:"port"`
	Baud         int               `yaml:"baud"`
	ReadTimeout  time.Duration     `yaml:"read_timeout"`
	Listen       string            `yaml:"listen"`
	PollSchedule string            `yaml:"poll_schedule"`
	Database     string            `yaml:"database"`
	MaxVolume    int               `yaml:"max_volume"`
	Verbose      bool              `yaml:"verbose"`
	Sources      map[string]string `yaml:"sources"`
}

// Default returns the configuration of a stock six input amplifier on the
// first USB serial adapter.
func Default() *Config {
	return &Config{
		Port:         "/dev/ttyUSB0",
		Baud:         9600,
		ReadTimeout:  2 * time.Second,
		Listen:       "127.0.0.1:8000",
		PollSchedule: "@every 10s",
		Database:     "./data/ampserver.db",
		MaxVolume:    monoprice.MaxVolume,
		Sources: map[string]string{
			"1": "Source 1",
			"2": "Source 2",
			"3": "Source 3",
			"4": "Source 4",
			"5": "Source 5",
			"6": "Source 6",
		},
	}
}

// Load reads path on top of the defaults and applies AMP_* environment
// overrides. A missing file is not an error, a malformed override is.
func Load(path string) (*Config, error) {
	cfg := Default()
	sources := cfg.Sources
	cfg.Sources = nil

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if cfg.Sources == nil {
		cfg.Sources = sources
	}

	var err error
	cfg.Port = envString("AMP_PORT", cfg.Port)
	cfg.Listen = envString("AMP_LISTEN", cfg.Listen)
	cfg.PollSchedule = envString("AMP_POLL_SCHEDULE", cfg.PollSchedule)
	cfg.Database = envString("AMP_DATABASE", cfg.Database)
	if cfg.Baud, err = envInt("AMP_BAUD", cfg.Baud); err != nil {
		return nil, err
	}
	if cfg.MaxVolume, err = envInt("AMP_MAX_VOLUME", cfg.MaxVolume); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = envBool("AMP_VERBOSE", cfg.Verbose); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Port) == "":
		return fmt.Errorf("%w: port is required", ErrInvalid)
	case c.Baud <= 0:
		return fmt.Errorf("%w: baud must be positive", ErrInvalid)
	case c.MaxVolume <= 0 || c.MaxVolume > monoprice.MaxVolume:
		return fmt.Errorf("%w: max_volume must be between 1 and %d", ErrInvalid, monoprice.MaxVolume)
	case c.PollSchedule == "":
		return fmt.Errorf("%w: poll_schedule is required", ErrInvalid)
	}
	return nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, val)
	}
	return parsed, nil
}

func envBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, val)
	}
	return parsed, nil
}
