// Package config loads process settings from the environment and column
// override files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
)

// Config holds settings resolved once at startup.
type Config struct {
	MaxRows        int    `env:"SHEETJSON_MAX_ROWS" envDefault:"10000"`
	MaxPreviewRows int    `env:"SHEETJSON_MAX_PREVIEW_ROWS" envDefault:"1000"`
	ChannelSize    int    `env:"SHEETJSON_CHANNEL_SIZE" envDefault:"32"`
	LogLevel       string `env:"SHEETJSON_LOG_LEVEL" envDefault:"warn"`
	LogFormat      string `env:"SHEETJSON_LOG_FORMAT" envDefault:"text"`
	DatabaseURL    string `env:"SHEETJSON_DATABASE_URL"`
	RedisURL       string `env:"SHEETJSON_REDIS_URL"`
	SinkTable      string `env:"SHEETJSON_SINK_TABLE" envDefault:"sheet_rows"`
}

// Load reads an optional .env file from the working directory, then the
// environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit env file. A missing file is ignored;
// variables already set in the environment take precedence.
func LoadFrom(envfile string) (Config, error) {
	if envfile != "" {
		if err := godotenv.Load(envfile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envfile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.MaxRows <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETJSON_MAX_ROWS must be positive: %d", c.MaxRows))
	}
	if c.MaxPreviewRows <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETJSON_MAX_PREVIEW_ROWS must be positive: %d", c.MaxPreviewRows))
	}
	if c.ChannelSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETJSON_CHANNEL_SIZE must be positive: %d", c.ChannelSize))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("SHEETJSON_LOG_FORMAT must be text or json: %q", c.LogFormat))
	}
	return result.ErrorOrNil()
}

// Limits returns the row and channel limits for OptionSet.
func (c Config) Limits() sheetjson.Limits {
	return sheetjson.Limits{
		MaxRows:        c.MaxRows,
		MaxPreviewRows: c.MaxPreviewRows,
		ChannelSize:    c.ChannelSize,
	}
}
