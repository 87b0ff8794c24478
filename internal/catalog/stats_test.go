package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleMovies(), 0)

	assert.Equal(t, []GenreCount{
		{Genre: "Action", Count: 2},
		{Genre: "Drama", Count: 2},
		{Genre: "Comedy", Count: 1},
		{Genre: "Crime", Count: 1},
		{Genre: "Romance", Count: 1},
		{Genre: "Sci-Fi", Count: 1},
	}, s.TopGenres)

	assert.Equal(t, []YearCount{
		{Year: 2001, Count: 1},
		{Year: 1999, Count: 1},
		{Year: 1995, Count: 1},
		{Year: 1992, Count: 1},
	}, s.ByYear)

	require.NotNil(t, s.AverageRating)
	assert.InDelta(t, (8.7+8.3+8.3)/3, *s.AverageRating, 1e-9)
	assert.Equal(t, 3, s.RatedCount)
}

func TestSummarize_TopN(t *testing.T) {
	s := Summarize(sampleMovies(), 2)
	assert.Equal(t, []GenreCount{{Genre: "Action", Count: 2}, {Genre: "Drama", Count: 2}}, s.TopGenres)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, DefaultTopGenres)
	assert.Empty(t, s.TopGenres)
	assert.Empty(t, s.ByYear)
	assert.Nil(t, s.AverageRating)
}
