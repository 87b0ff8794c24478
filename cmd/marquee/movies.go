package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <term>...",
	Short: "Search movies (cache first, then OMDb)",
	Long: `Search movies by title.

Active cached records are ranked first; on a miss the server searches OMDb,
caches every hit and returns the fresh records.

Examples:
  marquee search inception
  marquee search "the matrix" --no-cache
  marquee search terminator --rating 7 --sort year`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached movies",
	Long: `List active cached movies. Never calls OMDb.

Examples:
  marquee list --genre drama --year 1990-2000
  marquee list --sort rating --order desc --limit 10
  marquee list --page 2

Unrated movies never match --rating, not even --rating 0, although
--sort rating orders them as 0.`,
	Args: cobra.NoArgs,
	RunE: runListCmd,
}

var showCmd = &cobra.Command{
	Use:   "show <imdb-id>",
	Short: "Show one movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCmd,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <imdb-id>",
	Short: "Refetch a movie from OMDb",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefreshCmd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <imdb-id>",
	Short: "Remove a movie from the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteCmd,
}

const ratingFlagHelp = "Minimum IMDb rating or inclusive range, e.g. 7 or 6-8 (excludes unrated movies)"

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("genre", nil, "Genres to match (any of, comma separated)")
	cmd.Flags().String("year", "", "Year or inclusive range, e.g. 1999 or 1990-2000")
	cmd.Flags().String("rating", "", ratingFlagHelp)
	cmd.Flags().String("sort", "", "Sort by title, year, rating, runtime or created")
	cmd.Flags().String("order", "", "Sort order: asc or desc")
	cmd.Flags().Int("page", 0, "Page number")
	cmd.Flags().Int("limit", 0, "Page size (1-50)")
}

func init() {
	rootCmd.AddCommand(searchCmd, listCmd, showCmd, refreshCmd, deleteCmd)
	addFilterFlags(searchCmd)
	addFilterFlags(listCmd)
	searchCmd.Flags().Bool("no-cache", false, "Skip the cache and query OMDb")
}

func listOptionsFromFlags(cmd *cobra.Command) ListOptions {
	var o ListOptions
	o.Genres, _ = cmd.Flags().GetStringSlice("genre")
	o.Year, _ = cmd.Flags().GetString("year")
	o.Rating, _ = cmd.Flags().GetString("rating")
	o.Sort, _ = cmd.Flags().GetString("sort")
	o.Order, _ = cmd.Flags().GetString("order")
	o.Page, _ = cmd.Flags().GetInt("page")
	o.Limit, _ = cmd.Flags().GetInt("limit")
	return o
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	opts := listOptionsFromFlags(cmd)
	opts.Search = strings.Join(args, " ")
	opts.NoCache, _ = cmd.Flags().GetBool("no-cache")

	resp, err := NewClient(serverURL).Movies(opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printMovies(cmd.OutOrStdout(), resp)
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	resp, err := NewClient(serverURL).Movies(listOptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	return printMovies(cmd.OutOrStdout(), resp)
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	resp, err := NewClient(serverURL).Movie(args[0])
	if err != nil {
		return fmt.Errorf("show failed: %w", err)
	}
	return printMovieDetail(cmd.OutOrStdout(), resp, time.Now())
}

func runRefreshCmd(cmd *cobra.Command, args []string) error {
	resp, err := NewClient(serverURL).Refresh(args[0])
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	return printMovieDetail(cmd.OutOrStdout(), resp, time.Now())
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	if err := NewClient(serverURL).Delete(args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), DeletedResponse{Deleted: 1})
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func printMovies(w io.Writer, resp *MoviesResponse) error {
	if jsonOutput {
		printJSON(w, resp)
		return nil
	}

	if len(resp.Movies) == 0 {
		_, _ = fmt.Fprintln(w, "No movies found")
		return nil
	}

	rows := make([][]string, len(resp.Movies))
	for i, m := range resp.Movies {
		rows[i] = []string{
			m.IMDBID,
			truncate(m.Title, 40),
			formatYear(m.Year),
			formatScore(m.Ratings.IMDB.Score),
			formatVotes(m.Ratings.IMDB.Votes),
			formatRuntime(m.Runtime),
			formatList(m.Genres, 3),
		}
	}
	_, _ = fmt.Fprintln(w, renderTable(w,
		[]string{"IMDb", "Title", "Year", "Rating", "Votes", "Runtime", "Genres"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))

	summary := fmt.Sprintf("%d movies (source: %s", len(resp.Movies), resp.Source)
	if p := resp.Pagination; p != nil {
		summary += fmt.Sprintf(", page %d of %d, %d total", p.Page, max(p.Pages, 1), p.Total)
	}
	_, _ = fmt.Fprintln(w, summary+")")

	for _, f := range resp.Failed {
		_, _ = fmt.Fprintf(w, "  skipped %s: %s\n", f.IMDBID, f.Error)
	}
	return nil
}

func printMovieDetail(w io.Writer, resp *MovieResponse, now time.Time) error {
	if jsonOutput {
		printJSON(w, resp)
		return nil
	}

	m := resp.Movie
	_, _ = fmt.Fprintf(w, "%s (%s)  [%s]\n", m.Title, formatYear(m.Year), m.IMDBID)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len([]rune(m.Title))+len(formatYear(m.Year))+3))

	field := func(label, value string) {
		if value != "" && value != dash {
			_, _ = fmt.Fprintf(w, "%-12s %s\n", label+":", value)
		}
	}
	field("Type", m.Type)
	field("Rated", m.Rated)
	if m.Released != nil {
		field("Released", m.Released.Format("2006-01-02"))
	}
	field("Runtime", formatRuntime(m.Runtime))
	field("Genres", formatList(m.Genres, 0))
	field("Directors", formatList(m.Directors, 0))
	field("Writers", formatList(m.Writers, 0))
	field("Cast", formatList(m.Actors, 5))
	field("Languages", formatList(m.Languages, 0))
	field("Countries", formatList(m.Countries, 0))

	rating := formatScore(m.Ratings.IMDB.Score)
	if rating != dash && m.Ratings.IMDB.Votes != nil {
		rating += " (" + formatVotes(m.Ratings.IMDB.Votes) + " votes)"
	}
	field("IMDb", rating)
	field("Tomatometer", formatPercent(m.Ratings.RottenTomatoes))
	field("Metacritic", formatPercent(m.Ratings.Metacritic))
	if m.TMDBID != nil {
		field("TMDB", fmt.Sprint(*m.TMDBID))
	}
	field("Poster", m.Poster)

	if m.Plot != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", m.Plot)
	}
	_, _ = fmt.Fprintf(w, "\nSource: %s, cache %s\n", resp.Source, formatExpiry(m.CacheExpiry, now))
	return nil
}
