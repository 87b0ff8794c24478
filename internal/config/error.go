package config

import (
	"fmt"
	"slices"
	"strings"
)

// ConfigError collects everything wrong with one config file so the
// operator can fix it in a single pass.
type ConfigError struct {
	Path    string   // Config file path
	Missing []string // Unresolved ${VAR} references outside comments
	Errors  []string // Validation errors, "section.key: reason"
}

// providerKeyVars are the variables the default template reads provider keys from.
var providerKeyVars = []string{"OMDB_API_KEY", "TMDB_API_KEY"}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "config %s:", e.Path)
	}
	if len(e.Missing) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "missing environment variables: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("validation failed:")
		for _, msg := range e.Errors {
			b.WriteString("\n  - " + msg)
		}
	}
	return b.String()
}

// HasErrors reports whether the file needs fixing before the daemon can start.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

// Hints suggests fixes for the most common failures.
func (e *ConfigError) Hints() []string {
	var hints []string
	for _, name := range e.Missing {
		if slices.Contains(providerKeyVars, name) {
			hints = append(hints, fmt.Sprintf("export %s=<key> before starting marqueed", name))
		}
	}
	for _, msg := range e.Errors {
		if strings.HasPrefix(msg, "cleanup.daily_at") {
			hints = append(hints, `cleanup.daily_at takes a local 24h time such as "03:00"`)
			break
		}
	}
	return hints
}
