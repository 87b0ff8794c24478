// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	OMDb     OMDbConfig     `toml:"omdb"`
	TMDB     *TMDBConfig    `toml:"tmdb"`
	Cache    CacheConfig    `toml:"cache"`
	Cleanup  CleanupConfig  `toml:"cleanup"`
}

type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	LogLevel    string `toml:"log_level"`
	Environment string `toml:"environment"` // "production" or "development"
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// OMDbConfig configures the primary metadata provider.
// An empty APIKey is allowed at load time; provider calls then fail with a configuration error.
type OMDbConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// TMDBConfig enables optional enrichment (TMDB id, extra images).
type TMDBConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type CacheConfig struct {
	TTL         time.Duration `toml:"ttl"`
	Concurrency int           `toml:"concurrency"`
}

type CleanupConfig struct {
	Enabled  bool          `toml:"enabled"`
	DailyAt  string        `toml:"daily_at"` // "HH:MM", local time
	Interval time.Duration `toml:"interval"` // ignored in production
}

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are returned as *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation parses the configuration and applies defaults only.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = EnvProduction
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/marquee.db"
	}
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = "https://www.omdbapi.com"
	}
	if c.TMDB != nil && c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.Concurrency == 0 {
		c.Cache.Concurrency = 5
	}
	if c.Cleanup.DailyAt == "" {
		c.Cleanup.DailyAt = "03:00"
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} with environment variable values.
// ${VAR:-default} uses default when VAR is unset or empty.
// Comment text after an unquoted # is left alone.
// Returns the names of variables that could not be resolved; those are left unchanged.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	replace := func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name := parts[1]
		value, ok := os.LookupEnv(name)

		if strings.Contains(match, ":-") {
			if value != "" {
				return value
			}
			return parts[2]
		}
		if ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match // Leave unchanged if not found
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		cut := commentStart(line)
		lines[i] = envVarPattern.ReplaceAllStringFunc(line[:cut], replace) + line[cut:]
	}
	return strings.Join(lines, "\n"), missing
}

// commentStart returns the index of the first # outside a TOML string, or len(line).
func commentStart(line string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && c == '#':
			return i
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == '"' && c == '\\':
			i++ // skip the escaped character
		case c == quote:
			quote = 0
		}
	}
	return len(line)
}
