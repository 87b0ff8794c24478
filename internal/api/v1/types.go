package v1

import (
	"time"

	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/cleanup"
)

// envelope wraps every response body.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ratingsResponse is the API representation of a movie's ratings.
type ratingsResponse struct {
	IMDB struct {
		Score *float64 `json:"score"`
		Votes *int     `json:"votes"`
	} `json:"imdb"`
	RottenTomatoes *int `json:"rotten_tomatoes"`
	Metacritic     *int `json:"metacritic"`
}

// movieResponse is the API representation of a movie.
type movieResponse struct {
	ID          int64           `json:"id"`
	IMDBID      string          `json:"imdb_id"`
	TMDBID      *int64          `json:"tmdb_id,omitempty"`
	Title       string          `json:"title"`
	Year        *int            `json:"year"`
	Released    *time.Time      `json:"released,omitempty"`
	Runtime     *int            `json:"runtime"`
	Genres      []string        `json:"genres"`
	Directors   []string        `json:"directors"`
	Writers     []string        `json:"writers"`
	Actors      []string        `json:"actors"`
	Plot        string          `json:"plot"`
	Languages   []string        `json:"languages"`
	Countries   []string        `json:"countries"`
	Rated       string          `json:"rated,omitempty"`
	Type        string          `json:"type"`
	Ratings     ratingsResponse `json:"ratings"`
	Poster      string          `json:"poster,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Provider    string          `json:"provider"`
	CacheExpiry time.Time       `json:"cache_expiry"`
	LastUpdated time.Time       `json:"last_updated"`
	CreatedAt   time.Time       `json:"created_at"`
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func movieToResponse(m *catalog.Movie) movieResponse {
	resp := movieResponse{
		ID:          m.ID,
		IMDBID:      m.IMDBID,
		TMDBID:      m.TMDBID,
		Title:       m.Title,
		Year:        m.Year,
		Released:    m.Released,
		Runtime:     m.Runtime,
		Genres:      nonNil(m.Genres),
		Directors:   nonNil(m.Directors),
		Writers:     nonNil(m.Writers),
		Actors:      nonNil(m.Actors),
		Plot:        m.Plot,
		Languages:   nonNil(m.Languages),
		Countries:   nonNil(m.Countries),
		Rated:       m.Rated,
		Type:        string(m.Type),
		Poster:      m.Poster,
		Images:      m.Images,
		Provider:    m.Provider,
		CacheExpiry: m.CacheExpiry,
		LastUpdated: m.LastUpdated,
		CreatedAt:   m.CreatedAt,
	}
	resp.Ratings.IMDB.Score = m.Ratings.IMDB.Score
	resp.Ratings.IMDB.Votes = m.Ratings.IMDB.Votes
	resp.Ratings.RottenTomatoes = m.Ratings.RottenTomatoes
	resp.Ratings.Metacritic = m.Ratings.Metacritic
	return resp
}

func moviesToResponse(movies []*catalog.Movie) []movieResponse {
	out := make([]movieResponse, len(movies))
	for i, m := range movies {
		out[i] = movieToResponse(m)
	}
	return out
}

// failureResponse names one item dropped from a provider batch.
type failureResponse struct {
	IMDBID string `json:"imdb_id"`
	Error  string `json:"error"`
}

// listMoviesResponse is the data for GET /movies.
type listMoviesResponse struct {
	Movies       []movieResponse   `json:"movies"`
	Source       string            `json:"source"`
	Search       string            `json:"search,omitempty"`
	TotalResults int               `json:"total_results"`
	Failed       []failureResponse `json:"failed,omitempty"`
}

// movieDetailResponse is the data for GET /movies/{id}.
type movieDetailResponse struct {
	Movie  movieResponse `json:"movie"`
	Source string        `json:"source"`
}

// countsResponse is the record count breakdown.
type countsResponse struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

func countsToResponse(c catalog.Counts) countsResponse {
	return countsResponse{Total: c.Total, Active: c.Active, Expired: c.Expired}
}

type genreCountResponse struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

type yearCountResponse struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// statsResponse is the data for GET /stats/cache.
type statsResponse struct {
	countsResponse
	TTLSeconds    int64                `json:"ttl_seconds,omitempty"`
	TopGenres     []genreCountResponse `json:"top_genres"`
	ByYear        []yearCountResponse  `json:"by_year"`
	AverageRating *float64             `json:"average_rating"`
	RatedCount    int                  `json:"rated_count"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

func statsToResponse(s *catalog.Stats) statsResponse {
	resp := statsResponse{
		countsResponse: countsToResponse(s.Counts),
		TopGenres:      make([]genreCountResponse, len(s.TopGenres)),
		ByYear:         make([]yearCountResponse, len(s.ByYear)),
		AverageRating:  s.AverageRating,
		RatedCount:     s.RatedCount,
		GeneratedAt:    s.GeneratedAt,
	}
	for i, g := range s.TopGenres {
		resp.TopGenres[i] = genreCountResponse{Genre: g.Genre, Count: g.Count}
	}
	for i, y := range s.ByYear {
		resp.ByYear[i] = yearCountResponse{Year: y.Year, Count: y.Count}
	}
	return resp
}

// deletedResponse reports a purge.
type deletedResponse struct {
	Deleted int64 `json:"deleted"`
	DryRun  bool  `json:"dry_run,omitempty"`
}

// cleanupResponse is the data for POST /movies/cache/cleanup.
type cleanupResponse struct {
	Before     countsResponse `json:"before"`
	Deleted    int64          `json:"deleted"`
	After      countsResponse `json:"after"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
}

func reportToResponse(r *cleanup.Report) cleanupResponse {
	return cleanupResponse{
		Before:     countsToResponse(r.Before),
		Deleted:    r.Deleted,
		After:      countsToResponse(r.After),
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// purgeRequest is the body for POST /movies/cache/purge.
// Ranges are "min-max" strings like the list query parameters.
type purgeRequest struct {
	OlderThan string   `json:"older_than,omitempty"` // Go duration, e.g. "720h"
	Rating    string   `json:"rating,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Year      string   `json:"year,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// healthResponse is the data for GET /health.
type healthResponse struct {
	Status string `json:"status"`
}
