/*
Package config loads runtime configuration for the practice engine.

PURPOSE:
  One place for every tunable the binary reads: HTTP port, database
  path, log level, sweep interval, reminder hour. Values come from an
  optional config file plus PRACTICE_* environment variables, with the
  environment winning.

PRECEDENCE (highest first):
  1. Environment variables (PRACTICE_SERVER_PORT, ...)
  2. config.yaml in the working directory
  3. Built-in defaults

USAGE:
  cfg, err := config.Load()
  logger, err := config.SetupLogger(cfg.Server.LogLevel)
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SweepConfig controls the background settlement loop.
type SweepConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads configuration from config.yaml (if present) and PRACTICE_*
// environment variables. Environment variables take precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8787)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.path", "./practice.db")
	v.SetDefault("sweep.interval", time.Hour)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PRACTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Sweep.Interval < time.Minute {
		return fmt.Errorf("sweep interval %s is too short, minimum is 1m", c.Sweep.Interval)
	}
	return nil
}
