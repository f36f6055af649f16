package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds server settings loaded from environment variables.
type Config struct {
	Addr       string `env:"PYRAMID_ADDR" envDefault:":8080"`
	MaxRedeals int    `env:"PYRAMID_MAX_REDEALS" envDefault:"2"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxRedeals < 0 {
		return Config{}, fmt.Errorf("PYRAMID_MAX_REDEALS must not be negative, got %d", cfg.MaxRedeals)
	}
	return cfg, nil
}
