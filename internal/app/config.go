package app

import (
	"fmt"

	"github.com/vk/graphproc/internal/config"
)

// Config holds all the necessary configuration for an App instance.
type Config struct {
	Procedures config.Procedures `mapstructure:"procedures" yaml:"procedures"`

	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	// HealthcheckPort serves /health and /metrics when positive.
	HealthcheckPort int `mapstructure:"healthcheck_port" yaml:"healthcheck_port"`
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if err := cfg.Procedures.Validate(); err != nil {
		return nil, fmt.Errorf("invalid procedure settings: %w", err)
	}
	return &cfg, nil
}
