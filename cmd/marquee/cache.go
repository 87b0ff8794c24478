package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatsCmd,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run a cache cleanup pass now",
	Long:  "Removes every expired record and reports counts before and after.",
	Args:  cobra.NoArgs,
	RunE:  runCleanupCmd,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached records by criteria",
	Long: `Delete cached records matching every given criterion, regardless of expiry.
With --expired, deletes only expired records instead.

Examples:
  marquee purge --expired
  marquee purge --older-than 30d --rating 0-5 --dry-run
  marquee purge --genre horror --year 1970-1979`,
	Args: cobra.NoArgs,
	RunE: runPurgeCmd,
}

var healthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"status"},
	Short:   "Check that the server is reachable",
	Args:    cobra.NoArgs,
	RunE:    runHealthCmd,
}

func init() {
	rootCmd.AddCommand(statsCmd, cleanupCmd, purgeCmd, healthCmd)
	purgeCmd.Flags().Bool("expired", false, "Delete expired records only")
	purgeCmd.Flags().String("older-than", "", "Created before this age, e.g. 30d or 720h")
	purgeCmd.Flags().String("rating", "", "Rating range to delete, e.g. 0-5")
	purgeCmd.Flags().StringSlice("genre", nil, "Genres to delete (any of)")
	purgeCmd.Flags().String("year", "", "Year or range to delete")
	purgeCmd.Flags().Bool("dry-run", false, "Count matches without deleting")
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	stats, err := NewClient(serverURL).Stats()
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}
	printStats(cmd.OutOrStdout(), stats)
	return nil
}

func printStats(w io.Writer, s *StatsResponse) {
	if jsonOutput {
		printJSON(w, s)
		return
	}

	_, _ = fmt.Fprintf(w, "Records:    %d total, %d active, %d expired\n", s.Total, s.Active, s.Expired)
	if s.TTLSeconds > 0 {
		_, _ = fmt.Fprintf(w, "TTL:        %s\n", time.Duration(s.TTLSeconds)*time.Second)
	}
	if s.AverageRating != nil {
		_, _ = fmt.Fprintf(w, "Avg rating: %.2f over %d rated\n", *s.AverageRating, s.RatedCount)
	}

	if len(s.TopGenres) > 0 {
		rows := make([][]string, len(s.TopGenres))
		for i, g := range s.TopGenres {
			rows[i] = []string{g.Genre, humanize.Comma(int64(g.Count))}
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, renderTable(w, []string{"Genre", "Movies"}, rows, []columnAlignment{alignLeft, alignRight}))
	}

	if len(s.ByYear) > 0 {
		rows := make([][]string, len(s.ByYear))
		for i, y := range s.ByYear {
			rows[i] = []string{strconv.Itoa(y.Year), humanize.Comma(int64(y.Count))}
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, renderTable(w, []string{"Year", "Movies"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
}

func runCleanupCmd(cmd *cobra.Command, _ []string) error {
	report, err := NewClient(serverURL).Cleanup()
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(w, report)
		return nil
	}
	_, _ = fmt.Fprintln(w, renderTable(w,
		[]string{"", "Total", "Active", "Expired"},
		[][]string{
			{"before", strconv.Itoa(report.Before.Total), strconv.Itoa(report.Before.Active), strconv.Itoa(report.Before.Expired)},
			{"after", strconv.Itoa(report.After.Total), strconv.Itoa(report.After.Active), strconv.Itoa(report.After.Expired)},
		},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	_, _ = fmt.Fprintf(w, "Deleted %d expired records in %dms\n", report.Deleted, report.DurationMS)
	return nil
}

func runPurgeCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	w := cmd.OutOrStdout()
	expired, _ := cmd.Flags().GetBool("expired")

	var req PurgeRequest
	req.OlderThan, _ = cmd.Flags().GetString("older-than")
	req.Rating, _ = cmd.Flags().GetString("rating")
	req.Genres, _ = cmd.Flags().GetStringSlice("genre")
	req.Year, _ = cmd.Flags().GetString("year")
	req.DryRun, _ = cmd.Flags().GetBool("dry-run")
	hasCriteria := req.OlderThan != "" || req.Rating != "" || len(req.Genres) > 0 || req.Year != ""

	var resp *DeletedResponse
	var err error
	switch {
	case expired && hasCriteria:
		return errors.New("--expired cannot be combined with criteria flags")
	case expired:
		resp, err = client.PurgeExpired()
	case hasCriteria:
		resp, err = client.Purge(req)
	default:
		return errors.New("nothing to purge: pass --expired or at least one criterion")
	}
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if jsonOutput {
		printJSON(w, resp)
		return nil
	}
	if resp.DryRun {
		_, _ = fmt.Fprintf(w, "Would delete %d records\n", resp.Deleted)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Deleted %d records\n", resp.Deleted)
	return nil
}

func runHealthCmd(cmd *cobra.Command, _ []string) error {
	if err := NewClient(serverURL).Health(); err != nil {
		return fmt.Errorf("server unreachable at %s: %w", serverURL, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Server %s is healthy\n", serverURL)
	return nil
}
