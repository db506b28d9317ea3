// Package config loads hfprop settings from the environment.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/signalsfoundry/hfprop/internal/loader"
	"github.com/signalsfoundry/hfprop/internal/logging"
	"github.com/signalsfoundry/hfprop/internal/observability"
)

// Config holds the settings shared by the CLI and the server. Command-line
// flags override these values.
type Config struct {
	// Reference data
	DataDir     string `env:"HFPROP_DATA_DIR,default=./Data"`
	IonFormat   string `env:"HFPROP_ION_FORMAT,default=bin"`
	CacheMonths int    `env:"HFPROP_CACHE_MONTHS,default=12"`

	// Sweep concurrency; zero means one worker per CPU.
	Workers int `env:"HFPROP_WORKERS,default=0"`

	// Server
	GRPCAddr    string `env:"HFPROP_GRPC_ADDR,default=:50051"`
	MetricsAddr string `env:"HFPROP_METRICS_ADDR,default=:9090"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
	LogFile   string `env:"LOG_FILE"`

	Tracing observability.TracingConfig
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through l, so tests can supply a map.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	c.IonFormat = strings.ToLower(c.IonFormat)
	if c.IonFormat != loader.FormatBin && c.IonFormat != loader.FormatTxt {
		return fmt.Errorf("HFPROP_ION_FORMAT must be %q or %q, got %q", loader.FormatBin, loader.FormatTxt, c.IonFormat)
	}
	if c.CacheMonths < 1 {
		return fmt.Errorf("HFPROP_CACHE_MONTHS must be positive, got %d", c.CacheMonths)
	}
	if c.Workers < 0 {
		return fmt.Errorf("HFPROP_WORKERS must not be negative, got %d", c.Workers)
	}
	c.Tracing.Exporter = strings.ToLower(c.Tracing.Exporter)
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("HFPROP_TRACING_SAMPLE_RATIO must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:     c.LogLevel,
		Format:    c.LogFormat,
		File:      c.LogFile,
		AddSource: true,
	}
}
