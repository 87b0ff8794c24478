// internal/config/validate.go
package config

import (
	"fmt"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validEnvironments = map[string]bool{
	EnvProduction: true, EnvDevelopment: true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if !validEnvironments[c.Server.Environment] {
		errs = append(errs, fmt.Sprintf("server.environment: must be production or development; got %q", c.Server.Environment))
	}

	// Cache validation
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Sprintf("cache.ttl: must be positive, got %s", c.Cache.TTL))
	}
	if c.Cache.Concurrency < 0 || c.Cache.Concurrency > 20 {
		errs = append(errs, fmt.Sprintf("cache.concurrency: must be between 1 and 20, got %d", c.Cache.Concurrency))
	}

	// Cleanup validation
	if c.Cleanup.DailyAt != "" {
		if _, _, err := ParseClock(c.Cleanup.DailyAt); err != nil {
			errs = append(errs, fmt.Sprintf("cleanup.daily_at: %v", err))
		}
	}
	if c.Cleanup.Interval != 0 && c.Cleanup.Interval < time.Minute {
		errs = append(errs, fmt.Sprintf("cleanup.interval: must be at least 1m, got %s", c.Cleanup.Interval))
	}

	// TMDB validation
	if c.TMDB != nil && c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required when tmdb is configured")
	}

	return errs
}

// ParseClock parses an "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
