package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/marquee/internal/database"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

// testMovie builds an active record; mutate the result for variations.
func testMovie(imdbID, title string, year int, rating float64) *Movie {
	return &Movie{
		IMDBID:      imdbID,
		Title:       title,
		Year:        ptr(year),
		Genres:      []string{"Drama"},
		Type:        TypeMovie,
		Ratings:     Ratings{IMDB: IMDBRating{Score: ptr(rating)}},
		Provider:    ProviderOMDb,
		LastUpdated: testNow,
		CacheExpiry: testNow.Add(DefaultTTL),
	}
}
