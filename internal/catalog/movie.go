// Package catalog implements the cached movie catalog: the record model,
// provider normalization, the SQLite store, the query layer and the
// cache-aside service on top of them.
package catalog

import (
	"regexp"
	"time"
)

// Type distinguishes movies, series and single episodes.
type Type string

const (
	TypeMovie   Type = "movie"
	TypeSeries  Type = "series"
	TypeEpisode Type = "episode"
)

// Source reports where a result was served from.
type Source string

const (
	SourceCache Source = "cache"
	SourceAPI   Source = "api"
)

// ProviderOMDb tags records that originate from OMDb.
const ProviderOMDb = "omdb"

// imdbIDPattern matches IMDb title identifiers such as tt1375666.
var imdbIDPattern = regexp.MustCompile(`^tt\d{7,10}$`)

// ValidIMDBID reports whether id looks like an IMDb title identifier.
func ValidIMDBID(id string) bool {
	return imdbIDPattern.MatchString(id)
}

// IMDBRating is the primary external rating.
type IMDBRating struct {
	Score *float64 // 0.0-10.0
	Votes *int
}

// Ratings groups scores per rating source. Nil means the source had no score.
type Ratings struct {
	IMDB           IMDBRating
	RottenTomatoes *int // 0-100
	Metacritic     *int // 0-100
}

// Movie is the canonical cached representation of one title.
type Movie struct {
	ID        int64  // store row id
	IMDBID    string // unique external identifier
	TMDBID    *int64 // optional secondary identifier
	Title     string
	Year      *int
	Released  *time.Time
	Runtime   *int // minutes
	Genres    []string
	Directors []string
	Writers   []string
	Actors    []string
	Plot      string
	Languages []string
	Countries []string
	Rated     string // content rating, e.g. "PG-13"
	Type      Type
	Ratings   Ratings
	Poster    string
	Images    []string
	Provider  string

	CacheExpiry time.Time
	LastUpdated time.Time
	CreatedAt   time.Time
}

// IsActive reports whether the record has not yet expired at now.
func (m *Movie) IsActive(now time.Time) bool {
	return now.Before(m.CacheExpiry)
}

// Score returns the primary rating, 0 when unrated.
func (m *Movie) Score() float64 {
	if m.Ratings.IMDB.Score == nil {
		return 0
	}
	return *m.Ratings.IMDB.Score
}

func (m *Movie) yearOrZero() int {
	if m.Year == nil {
		return 0
	}
	return *m.Year
}

func (m *Movie) runtimeOrZero() int {
	if m.Runtime == nil {
		return 0
	}
	return *m.Runtime
}

// Counts summarizes store size.
type Counts struct {
	Total   int
	Active  int
	Expired int
}
