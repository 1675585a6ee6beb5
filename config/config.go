package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const defaultDebounce = 50 * time.Millisecond

// Config contains configuration for the workstation
type Config struct {
	SentryDSN   string        // Sentry DSN (optional, metrics disabled when empty)
	Environment string        // Sentry environment tag
	ParamsPath  string        // YAML parameter file (optional)
	Debounce    time.Duration // Delay before a scheduled rewrite is handed to the engine
	SilenceCall string        // Call appended to muted instruments (optional)
}

// FromEnv builds a Config from environment variables
func FromEnv() *Config {
	cfg := &Config{
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Environment: os.Getenv("WORKSTATION_ENV"),
		ParamsPath:  os.Getenv("WORKSTATION_PARAMS"),
		SilenceCall: os.Getenv("WORKSTATION_SILENCE_CALL"),
		Debounce:    defaultDebounce,
	}

	if raw := os.Getenv("WORKSTATION_DEBOUNCE_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			log.Printf("⚠️  Ignoring invalid WORKSTATION_DEBOUNCE_MS=%q", raw)
		} else {
			cfg.Debounce = time.Duration(ms) * time.Millisecond
		}
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg
}

// DebounceOrDefault returns the configured debounce, falling back to the default
func (c *Config) DebounceOrDefault() time.Duration {
	if c == nil || c.Debounce <= 0 {
		return defaultDebounce
	}
	return c.Debounce
}
