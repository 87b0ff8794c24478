package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[omdb]
api_key = "abc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8585, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, EnvProduction, cfg.Server.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "./data/marquee.db", cfg.Database.Path)
	assert.Equal(t, "https://www.omdbapi.com", cfg.OMDb.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Cache.Concurrency)
	assert.Equal(t, "03:00", cfg.Cleanup.DailyAt)
	assert.Nil(t, cfg.TMDB)
}

func TestLoad_Durations(t *testing.T) {
	path := writeConfig(t, `
[server]
environment = "development"

[cache]
ttl = "6h"

[cleanup]
enabled = true
daily_at = "04:30"
interval = "15m"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Cleanup.Interval)
	assert.Equal(t, "04:30", cfg.Cleanup.DailyAt)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvVar(t *testing.T) {
	t.Setenv("MARQUEE_TEST_OMDB_KEY", "secret")
	path := writeConfig(t, `
[omdb]
api_key = "${MARQUEE_TEST_OMDB_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.OMDb.APIKey)
}

func TestLoad_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
[omdb]
api_key = "${MARQUEE_TEST_NONEXISTENT_VAR_12345}"
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"MARQUEE_TEST_NONEXISTENT_VAR_12345"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "MARQUEE_TEST_NONEXISTENT_VAR_12345")
}

func TestLoad_EnvVarDefault(t *testing.T) {
	t.Setenv("MARQUEE_TEST_EMPTY_HOST", "")
	path := writeConfig(t, `
[server]
host = "${MARQUEE_TEST_EMPTY_HOST:-localhost}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 99999
log_level = "verbose"
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Errors, 2)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "server.log_level")
}

func TestLoadWithoutValidation(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 99999
`)

	cfg, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, 99999, cfg.Server.Port)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, `[server`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_CommentedVariablesIgnored(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "abc")
	path := writeConfig(t, `
# Values like ${VAR} are substituted from the environment.
[omdb]
api_key = "${OMDB_API_KEY}"

# [tmdb]
# api_key = "${TMDB_API_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.OMDb.APIKey)
	assert.Nil(t, cfg.TMDB)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("MARQUEE_TEST_SET", "hello")

	tests := []struct {
		name        string
		in          string
		want        string
		wantMissing []string
	}{
		{"simple", "v = ${MARQUEE_TEST_SET}", "v = hello", nil},
		{"default unused", "v = ${MARQUEE_TEST_SET:-x}", "v = hello", nil},
		{"default used", "v = ${MARQUEE_TEST_UNSET_1:-fallback}", "v = fallback", nil},
		{"empty default", "v = \"${MARQUEE_TEST_UNSET_1:-}\"", "v = \"\"", nil},
		{"missing", "v = ${MARQUEE_TEST_UNSET_2}", "v = ${MARQUEE_TEST_UNSET_2}", []string{"MARQUEE_TEST_UNSET_2"}},
		{"missing once", "${MARQUEE_TEST_UNSET_3} ${MARQUEE_TEST_UNSET_3}", "${MARQUEE_TEST_UNSET_3} ${MARQUEE_TEST_UNSET_3}", []string{"MARQUEE_TEST_UNSET_3"}},
		{"no vars", "plain", "plain", nil},
		{"comment ignored", "# set ${MARQUEE_TEST_UNSET_4} here", "# set ${MARQUEE_TEST_UNSET_4} here", nil},
		{"trailing comment", "v = \"${MARQUEE_TEST_SET}\" # or ${MARQUEE_TEST_UNSET_4}", "v = \"hello\" # or ${MARQUEE_TEST_UNSET_4}", nil},
		{"hash inside string", "v = \"a#${MARQUEE_TEST_SET}\"", "v = \"a#hello\"", nil},
		{"hash inside literal string", "v = 'a#${MARQUEE_TEST_SET}'", "v = 'a#hello'", nil},
		{"escaped quote", `v = "a\"#${MARQUEE_TEST_SET}"`, `v = "a\"#hello"`, nil},
		{"multiple lines", "a = ${MARQUEE_TEST_SET}\n# ${MARQUEE_TEST_UNSET_5}\nb = ${MARQUEE_TEST_UNSET_5}", "a = hello\n# ${MARQUEE_TEST_UNSET_5}\nb = ${MARQUEE_TEST_UNSET_5}", []string{"MARQUEE_TEST_UNSET_5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnvVars(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	e := &ConfigError{}
	assert.False(t, e.HasErrors())
	assert.Empty(t, e.Error())

	e = &ConfigError{Path: "/etc/marquee/config.toml", Missing: []string{"A", "B"}, Errors: []string{"server.port: bad"}}
	assert.True(t, e.HasErrors())
	msg := e.Error()
	assert.True(t, strings.HasPrefix(msg, "config /etc/marquee/config.toml:"))
	assert.Contains(t, msg, "missing environment variables: A, B")
	assert.Contains(t, msg, "  - server.port: bad")
}

func TestConfigError_Hints(t *testing.T) {
	e := &ConfigError{
		Missing: []string{"OMDB_API_KEY", "HOME_DIR"},
		Errors:  []string{`cleanup.daily_at: invalid time "25:00"`, "cache.ttl: must be positive, got -1s"},
	}
	assert.Equal(t, []string{
		"export OMDB_API_KEY=<key> before starting marqueed",
		`cleanup.daily_at takes a local 24h time such as "03:00"`,
	}, e.Hints())

	assert.Empty(t, (&ConfigError{Errors: []string{"server.port: bad"}}).Hints())
}
