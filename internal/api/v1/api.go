// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/omdb"
)

const maxBodyBytes = 1 << 16

// Server is the v1 API server.
type Server struct {
	deps   ServerDeps
	logger *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, logger *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, logger: logger.With("component", "api")}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Movies
	mux.HandleFunc("GET /movies", s.listMovies)
	mux.HandleFunc("GET /movies/{id}", s.getMovie)
	mux.HandleFunc("POST /movies/{id}/refresh", s.refreshMovie)
	mux.HandleFunc("DELETE /movies/{id}", s.deleteMovie)

	// Cache maintenance
	mux.HandleFunc("DELETE /movies/cache/expired", s.purgeExpired)
	mux.HandleFunc("POST /movies/cache/cleanup", s.requireCleaner(s.runCleanup))
	mux.HandleFunc("POST /movies/cache/purge", s.purgeByCriteria)

	// System
	mux.HandleFunc("GET /stats/cache", s.cacheStats)
	mux.HandleFunc("GET /health", s.health)
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: false, Message: message})
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	var ferr *catalog.FetchError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "movie not found")
	case errors.Is(err, catalog.ErrEmptyCriteria):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ferr), errors.Is(err, catalog.ErrInvalidRecord):
		s.logger.Warn("provider failure", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusBadGateway, "movie provider unavailable")
	case errors.Is(err, catalog.ErrConfiguration):
		s.logger.Error("provider misconfigured", "error", err)
		if errors.Is(err, omdb.ErrNoAPIKey) {
			writeError(w, http.StatusInternalServerError, "movie provider api key not configured")
			return
		}
		writeError(w, http.StatusInternalServerError, "movie provider rejected api key")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// listMovies serves GET /movies. Without search it lists active cached
// records; with search it goes cache first, then OMDb. A rating filter,
// rating=0 included, drops unrated records, while sort=rating orders them as 0.
func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if p.Search == "" {
		page, err := s.deps.Catalog.ListCached(r.Context(), p.Query)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data: listMoviesResponse{
				Movies:       moviesToResponse(page.Movies),
				Source:       string(catalog.SourceCache),
				TotalResults: page.Total,
			},
			Pagination: &pagination{Page: page.Page, Limit: page.Limit, Total: page.Total, Pages: page.Pages},
		})
		return
	}

	res, err := s.deps.Catalog.Search(r.Context(), p.Search, catalog.SearchOptions{
		Page:     p.Query.Page,
		UseCache: p.UseCache,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := listMoviesResponse{Source: string(res.Source), Search: p.Search, TotalResults: res.Total}
	for _, f := range res.Failures {
		data.Failed = append(data.Failed, failureResponse{IMDBID: f.IMDBID, Error: f.Err.Error()})
	}

	var pg *pagination
	if res.Source == catalog.SourceCache {
		// Cache hits are one ranked set; page through it locally.
		page := catalog.Apply(res.Movies, p.Query)
		data.Movies = moviesToResponse(page.Movies)
		pg = &pagination{Page: page.Page, Limit: page.Limit, Total: page.Total, Pages: page.Pages}
	} else {
		// The provider page already selected the batch; filter and sort within it.
		q := p.Query
		q.Page = 1
		page := catalog.Apply(res.Movies, q)
		data.Movies = moviesToResponse(page.Movies)
		pg = &pagination{
			Page:  res.Page,
			Limit: omdb.PageSize,
			Total: res.Total,
			Pages: (res.Total + omdb.PageSize - 1) / omdb.PageSize,
		}
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: pg})
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathIMDBID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, src, err := s.deps.Catalog.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, movieDetailResponse{Movie: movieToResponse(m), Source: string(src)})
}

func (s *Server) refreshMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathIMDBID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.deps.Catalog.Refresh(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, movieDetailResponse{Movie: movieToResponse(m), Source: string(catalog.SourceAPI)})
}

func (s *Server) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathIMDBID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Catalog.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedResponse{Deleted: 1})
}

func (s *Server) purgeExpired(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Catalog.PurgeExpired(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("expired records purged", "deleted", n, "request_id", RequestID(r.Context()))
	writeData(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (s *Server) runCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Cleaner.RunOnce(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, reportToResponse(report))
}

func (s *Server) purgeByCriteria(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, invalidf("invalid JSON body: %v", err))
		return
	}
	c, err := req.criteria()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.deps.Catalog.PurgeByCriteria(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedResponse{Deleted: n, DryRun: c.DryRun})
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Catalog.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := statsToResponse(stats)
	resp.TTLSeconds = int64(s.deps.Catalog.TTL().Seconds())
	writeData(w, http.StatusOK, resp)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, healthResponse{Status: "ok"})
}
