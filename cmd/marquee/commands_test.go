package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMovie() Movie {
	m := Movie{
		IMDBID:    "tt0133093",
		Title:     "The Matrix",
		Year:      intPtr(1999),
		Runtime:   intPtr(136),
		Genres:    []string{"Action", "Sci-Fi"},
		Directors: []string{"Lana Wachowski", "Lilly Wachowski"},
		Actors:    []string{"Keanu Reeves", "Laurence Fishburne"},
		Plot:      "A computer hacker learns about the true nature of reality.",
		Type:      "movie",
		Provider:  "omdb",
	}
	m.Ratings.IMDB.Score = floatPtr(8.7)
	m.Ratings.IMDB.Votes = intPtr(2100000)
	m.Ratings.RottenTomatoes = intPtr(83)
	return m
}

func TestPrintMovies_Table(t *testing.T) {
	var buf bytes.Buffer
	err := printMovies(&buf, &MoviesResponse{
		Movies:     []Movie{sampleMovie()},
		Source:     "api",
		Failed:     []Failure{{IMDBID: "tt9999999", Error: "provider timeout"}},
		Pagination: &Pagination{Page: 1, Limit: 10, Total: 12, Pages: 2},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "tt0133093")
	assert.Contains(t, out, "The Matrix")
	assert.Contains(t, out, "2,100,000")
	assert.Contains(t, out, "2h16m")
	assert.Contains(t, out, "source: api, page 1 of 2, 12 total")
	assert.Contains(t, out, "skipped tt9999999: provider timeout")
}

func TestPrintMovies_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printMovies(&buf, &MoviesResponse{Source: "cache"}))
	assert.Equal(t, "No movies found\n", buf.String())
}

func TestPrintMovies_JSON(t *testing.T) {
	defer withJSONOutput(true)()

	var buf bytes.Buffer
	require.NoError(t, printMovies(&buf, &MoviesResponse{Movies: []Movie{sampleMovie()}, Source: "cache"}))
	assert.Contains(t, buf.String(), `"imdb_id": "tt0133093"`)
	assert.Contains(t, buf.String(), `"source": "cache"`)
}

func TestPrintMovieDetail(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := sampleMovie()
	m.CacheExpiry = now.Add(5 * time.Hour)

	var buf bytes.Buffer
	require.NoError(t, printMovieDetail(&buf, &MovieResponse{Movie: m, Source: "cache"}, now))

	out := buf.String()
	assert.Contains(t, out, "The Matrix (1999)  [tt0133093]")
	assert.Contains(t, out, "Directors:   Lana Wachowski, Lilly Wachowski")
	assert.Contains(t, out, "IMDb:        8.7 (2,100,000 votes)")
	assert.Contains(t, out, "Tomatometer: 83%")
	assert.NotContains(t, out, "Metacritic")
	assert.Contains(t, out, "Source: cache, cache in 5 hours")
}

func TestPrintStats(t *testing.T) {
	s := &StatsResponse{
		Counts:        Counts{Total: 3, Active: 2, Expired: 1},
		TTLSeconds:    86400,
		AverageRating: floatPtr(8.25),
		RatedCount:    2,
	}
	s.TopGenres = append(s.TopGenres, struct {
		Genre string `json:"genre"`
		Count int    `json:"count"`
	}{Genre: "Drama", Count: 2})

	var buf bytes.Buffer
	printStats(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "3 total, 2 active, 1 expired")
	assert.Contains(t, out, "TTL:        24h0m0s")
	assert.Contains(t, out, "8.25 over 2 rated")
	assert.Contains(t, out, "Drama")
	assert.NotContains(t, out, "YEAR")
}

func TestSearchCommand(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/movies").
		ExpectGET().
		ExpectQuery("search", "the matrix").
		ExpectQuery("limit", "5").
		ExpectQuery("cache", "").
		RespondPage(MoviesResponse{Movies: []Movie{sampleMovie()}, Source: "api", TotalResults: 1},
			&Pagination{Page: 1, Limit: 10, Total: 1, Pages: 1}).
		Build()
	defer srv.Close()
	defer withServerURL(srv.URL)()

	out, err := runCommand(t, "search", "the", "matrix", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "The Matrix")
	assert.Contains(t, out, "source: api")
}

func TestShowCommand_NotFound(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/movies/tt0000001").
		RespondError(404, "movie not found").
		Build()
	defer srv.Close()
	defer withServerURL(srv.URL)()

	_, err := runCommand(t, "show", "tt0000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "show failed")
	assert.Contains(t, err.Error(), "movie not found")
}

func TestPurgeCommand_FlagValidation(t *testing.T) {
	_, err := runCommand(t, "purge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to purge")

	_, err = runCommand(t, "purge", "--expired", "--year", "1999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestCleanupCommand(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/movies/cache/cleanup").
		ExpectPOST().
		RespondData(CleanupResponse{
			Before:     Counts{Total: 5, Active: 3, Expired: 2},
			Deleted:    2,
			After:      Counts{Total: 3, Active: 3},
			DurationMS: 4,
		}).
		Build()
	defer srv.Close()
	defer withServerURL(srv.URL)()

	out, err := runCommand(t, "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "Deleted 2 expired records in 4ms")
}

func TestHealthCommand(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/health").
		RespondData(map[string]string{"status": "ok"}).
		Build()
	defer srv.Close()
	defer withServerURL(srv.URL)()

	out, err := runCommand(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "is healthy")
}

func TestConfigInitAndTest(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "test-key")
	path := filepath.Join(t.TempDir(), "marquee", "config.toml")

	out, err := runCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = runCommand(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = runCommand(t, "config", "test", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration Summary:")
	assert.Contains(t, out, "api key set")
	assert.Contains(t, out, "Configuration valid!")
}

func TestConfigTest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 99999\n\n[omdb]\napi_key = \"${MARQUEE_TEST_UNSET_KEY}\"\n"), 0644))

	out, err := runCommand(t, "config", "test", path)
	require.Error(t, err)
	assert.Contains(t, out, "Missing environment variables:")
	assert.Contains(t, out, "MARQUEE_TEST_UNSET_KEY")
	assert.Contains(t, out, "Validation errors:")
	assert.Contains(t, out, "server.port")
}

func TestConfigTest_MissingProviderKeyHint(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	require.NoError(t, os.Unsetenv("OMDB_API_KEY"))
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[omdb]\napi_key = \"${OMDB_API_KEY}\"\n"), 0644))

	out, err := runCommand(t, "config", "test", path)
	require.Error(t, err)
	assert.Contains(t, out, "  - OMDB_API_KEY")
	assert.Contains(t, out, "Hint: export OMDB_API_KEY=<key> before starting marqueed")
}

func TestServerFlagValidation(t *testing.T) {
	defer withServerURL(serverURL)()

	_, err := runCommand(t, "--server", "localhost:8585", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--server must be an http(s) URL")
}

func TestRatingFlagHelp_MentionsUnrated(t *testing.T) {
	for _, cmd := range []*cobra.Command{listCmd, searchCmd} {
		flag := cmd.Flags().Lookup("rating")
		require.NotNil(t, flag, cmd.Name())
		assert.Contains(t, flag.Usage, "excludes unrated")
	}
	assert.Contains(t, listCmd.Long, "not even --rating 0")
}
