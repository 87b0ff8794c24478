package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/marquee/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long:  "Writes a commented default config.toml. Defaults to $XDG_CONFIG_HOME/marquee/config.toml.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, values, and environment variable substitution without starting the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configTestCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nSet OMDB_API_KEY before starting marqueed.\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		var err error
		if path, err = config.Discover(); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(w, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(w, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(w, cfg)
	_, _ = fmt.Fprintln(w, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		_, _ = fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			_, _ = fmt.Fprintf(w, "  - %s\n", m)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		_, _ = fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			_, _ = fmt.Fprintf(w, "  - %s\n", err)
		}
		_, _ = fmt.Fprintln(w)
	}

	for _, h := range e.Hints() {
		_, _ = fmt.Fprintf(w, "Hint: %s\n", h)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	_, _ = fmt.Fprintln(w, "Configuration Summary:")
	_, _ = fmt.Fprintf(w, "  Server:      %s:%d (log: %s, %s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.LogLevel, cfg.Server.Environment)
	_, _ = fmt.Fprintf(w, "  Database:    %s\n", cfg.Database.Path)
	_, _ = fmt.Fprintf(w, "  Cache TTL:   %s (concurrency %d)\n", cfg.Cache.TTL, cfg.Cache.Concurrency)

	omdbState := "api key set"
	if cfg.OMDb.APIKey == "" {
		omdbState = "no api key"
	}
	_, _ = fmt.Fprintf(w, "  OMDb:        %s (%s)\n", cfg.OMDb.BaseURL, omdbState)
	if cfg.TMDB != nil {
		_, _ = fmt.Fprintf(w, "  TMDB:        %s\n", cfg.TMDB.BaseURL)
	}

	if cfg.Cleanup.Enabled {
		line := fmt.Sprintf("daily at %s", cfg.Cleanup.DailyAt)
		if cfg.Cleanup.Interval > 0 {
			if cfg.IsProduction() {
				line += fmt.Sprintf(", interval %s ignored in production", cfg.Cleanup.Interval)
			} else {
				line += fmt.Sprintf(", every %s", cfg.Cleanup.Interval)
			}
		}
		_, _ = fmt.Fprintf(w, "  Cleanup:     %s\n", line)
	} else {
		_, _ = fmt.Fprintln(w, "  Cleanup:     disabled (manual only)")
	}
}
