// Package config loads runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the ingest binary reads from the environment.
// Flags override the overridable fields at startup.
type Config struct {
	RiotAPIKey      string `env:"RIOT_API_KEY,required,notEmpty"`
	DatabaseURL     string `env:"DATABASE_URL"`
	ArchiveDir      string `env:"ARCHIVE_DIR" envDefault:"./archive"`
	Region          string `env:"RIOT_REGION" envDefault:"europe"`
	TimelineRetries int    `env:"TIMELINE_RETRIES" envDefault:"2"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
