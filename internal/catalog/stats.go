package catalog

import (
	"sort"
	"time"
)

// DefaultTopGenres is the number of genres reported by Summarize callers by default.
const DefaultTopGenres = 10

// GenreCount is the number of movies tagged with a genre.
type GenreCount struct {
	Genre string
	Count int
}

// YearCount is the number of movies released in a year.
type YearCount struct {
	Year  int
	Count int
}

// Summary aggregates a set of movies.
type Summary struct {
	TopGenres     []GenreCount // by count desc, then name
	ByYear        []YearCount  // newest first; movies without a year are skipped
	AverageRating *float64     // over rated movies only
	RatedCount    int
}

// Stats is the cache report: store counts plus a summary of active records.
type Stats struct {
	Counts
	Summary
	GeneratedAt time.Time
}

// Summarize groups movies by genre and year. topN <= 0 keeps every genre.
func Summarize(movies []*Movie, topN int) Summary {
	genreCounts := make(map[string]int)
	yearCounts := make(map[int]int)
	var ratingSum float64
	var s Summary

	for _, m := range movies {
		for _, g := range m.Genres {
			genreCounts[g]++
		}
		if m.Year != nil {
			yearCounts[*m.Year]++
		}
		if m.Ratings.IMDB.Score != nil {
			ratingSum += *m.Ratings.IMDB.Score
			s.RatedCount++
		}
	}

	s.TopGenres = make([]GenreCount, 0, len(genreCounts))
	for g, n := range genreCounts {
		s.TopGenres = append(s.TopGenres, GenreCount{Genre: g, Count: n})
	}
	sort.Slice(s.TopGenres, func(i, j int) bool {
		if s.TopGenres[i].Count != s.TopGenres[j].Count {
			return s.TopGenres[i].Count > s.TopGenres[j].Count
		}
		return s.TopGenres[i].Genre < s.TopGenres[j].Genre
	})
	if topN > 0 && len(s.TopGenres) > topN {
		s.TopGenres = s.TopGenres[:topN]
	}

	s.ByYear = make([]YearCount, 0, len(yearCounts))
	for y, n := range yearCounts {
		s.ByYear = append(s.ByYear, YearCount{Year: y, Count: n})
	}
	sort.Slice(s.ByYear, func(i, j int) bool { return s.ByYear[i].Year > s.ByYear[j].Year })

	if s.RatedCount > 0 {
		avg := ratingSum / float64(s.RatedCount)
		s.AverageRating = &avg
	}
	return s
}
