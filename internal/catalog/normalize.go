package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/marquee/internal/omdb"
)

const releasedLayout = "02 Jan 2006"

// Normalize maps a raw OMDb record onto a Movie.
// Cache metadata (expiry, timestamps) is left for the caller to set.
func Normalize(d *omdb.Detail) (*Movie, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidRecord)
	}
	imdbID := clean(d.IMDBID)
	if imdbID == "" {
		return nil, fmt.Errorf("%w: missing imdb id", ErrInvalidRecord)
	}
	title := clean(d.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: %s has no title", ErrInvalidRecord, imdbID)
	}

	m := &Movie{
		IMDBID:    imdbID,
		Title:     title,
		Year:      parseYear(d.Year),
		Released:  parseReleased(d.Released),
		Runtime:   parseRuntime(d.Runtime),
		Genres:    splitList(d.Genre),
		Directors: splitList(d.Director),
		Writers:   splitList(d.Writer),
		Actors:    splitList(d.Actors),
		Plot:      clean(d.Plot),
		Languages: splitList(d.Language),
		Countries: splitList(d.Country),
		Rated:     clean(d.Rated),
		Type:      parseType(d.Type),
		Poster:    clean(d.Poster),
		Provider:  ProviderOMDb,
	}

	m.Ratings.IMDB.Score = parseScore(d.IMDBRating)
	m.Ratings.IMDB.Votes = parseVotes(d.IMDBVotes)
	m.Ratings.RottenTomatoes = parsePercent(d.RatingFor(omdb.SourceRottenTomatoes))
	m.Ratings.Metacritic = parseScaled(d.RatingFor(omdb.SourceMetacritic))
	if m.Ratings.Metacritic == nil {
		m.Ratings.Metacritic = parseScaled(d.Metascore)
	}

	return m, nil
}

// clean trims s and maps the provider's "N/A" placeholder to "".
func clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, omdb.NotAvailable) {
		return ""
	}
	return s
}

// splitList splits a comma-delimited provider list, keeping order.
func splitList(s string) []string {
	s = clean(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = clean(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseYear reads the leading four digits, so "2008–2013" yields 2008.
func parseYear(s string) *int {
	s = clean(s)
	if len(s) < 4 {
		return nil
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y <= 0 {
		return nil
	}
	return &y
}

func parseReleased(s string) *time.Time {
	s = clean(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(releasedLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// parseRuntime converts "148 min" to 148.
func parseRuntime(s string) *int {
	s = clean(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseType(s string) Type {
	switch Type(strings.ToLower(clean(s))) {
	case TypeSeries:
		return TypeSeries
	case TypeEpisode:
		return TypeEpisode
	default:
		return TypeMovie
	}
}

// parseScore reads a primary rating in [0, 10].
func parseScore(s string) *float64 {
	s = clean(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 10 {
		return nil
	}
	return &f
}

// parseVotes reads "2,345,678".
func parseVotes(s string) *int {
	s = strings.ReplaceAll(clean(s), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// parsePercent reads "87%".
func parsePercent(s string) *int {
	s = strings.TrimSuffix(clean(s), "%")
	return boundedInt(s)
}

// parseScaled reads "74/100" or a bare "74".
func parseScaled(s string) *int {
	s = clean(s)
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return boundedInt(s)
}

func boundedInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	return &n
}
