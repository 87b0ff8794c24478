package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

const defaultServerURL = "http://localhost:8585"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Search and maintain the marquee movie cache",
	Long: `marquee talks to a running marqueed, the OMDb-backed movie cache.

Searches hit the cache first and fall back to OMDb on a miss; fetched
records stay active for the configured TTL (24h by default). Expired
records are removed by the daily cleanup, "marquee cleanup" or
"marquee purge".

The server URL comes from --server, then $MARQUEE_SERVER, then
` + defaultServerURL + `.`,
	SilenceUsage:      true,
	PersistentPreRunE: checkServerURL,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// checkServerURL rejects --server values the HTTP client would misread,
// such as "localhost:8585" parsed as a URL scheme.
func checkServerURL(_ *cobra.Command, _ []string) error {
	u, err := url.Parse(serverURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("--server must be an http(s) URL, got %q", serverURL)
	}
	return nil
}

func init() {
	def := defaultServerURL
	if env := os.Getenv("MARQUEE_SERVER"); env != "" {
		def = env
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "marqueed URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of tables")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("marquee {{.Version}}\n")
}
