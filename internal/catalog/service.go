package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/marquee/internal/omdb"
	"github.com/vmunix/marquee/internal/tmdb"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// DefaultTTL is how long a fetched record stays active.
const DefaultTTL = 24 * time.Hour

const defaultConcurrency = 5

// Provider is the external metadata source.
type Provider interface {
	Search(ctx context.Context, term string, page int) (*omdb.SearchResponse, error)
	Movie(ctx context.Context, imdbID string) (*omdb.Detail, error)
}

// Enricher adds secondary identifiers and images to fetched records.
type Enricher interface {
	FindByIMDBID(ctx context.Context, imdbID string) (*tmdb.Movie, error)
}

// Service resolves search terms and identifiers to movies, serving from the
// store while records are active and falling back to the provider otherwise.
type Service struct {
	store       *Store
	provider    Provider
	enricher    Enricher
	ttl         time.Duration
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets how long fetched records stay active.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithConcurrency bounds parallel detail fetches during a search.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithEnricher enables TMDB enrichment.
func WithEnricher(e Enricher) Option {
	return func(s *Service) {
		s.enricher = e
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a catalog service.
func NewService(store *Store, provider Provider, opts ...Option) *Service {
	s := &Service{
		store:       store,
		provider:    provider,
		ttl:         DefaultTTL,
		concurrency: defaultConcurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured time-to-live.
func (s *Service) TTL() time.Duration { return s.ttl }

// SearchOptions controls a term search.
type SearchOptions struct {
	Page     int  // provider result page, 1-indexed
	UseCache bool // consult the store before the provider
}

// SearchResult is the outcome of a term search.
type SearchResult struct {
	Movies   []*Movie
	Total    int // cache hits, or the provider's total result count
	Source   Source
	Page     int
	Failures []ItemError // items dropped from a provider batch
}

// Search resolves term to movies. With UseCache, active stored records that
// match term are returned ranked by relevance. Otherwise, or when nothing
// matches, the provider is searched and every hit is fetched, normalized and
// upserted concurrently. Items that fail are reported in Failures and left
// out of Movies; they do not fail the search.
func (s *Service) Search(ctx context.Context, term string, opts SearchOptions) (*SearchResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}

	if opts.UseCache {
		active, err := s.store.Active(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("search cache: %w", err)
		}
		if hits := Rank(term, active); len(hits) > 0 {
			s.logger.Debug("search served from cache", "term", term, "hits", len(hits))
			return &SearchResult{Movies: hits, Total: len(hits), Source: SourceCache, Page: opts.Page}, nil
		}
	}

	resp, err := s.provider.Search(ctx, term, opts.Page)
	if err != nil {
		return nil, providerError("search", term, err)
	}

	ids := uniqueIDs(resp.Search)
	movies := make([]*Movie, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			movies[i], errs[i] = s.fetch(gctx, id)
			return nil // each item settles on its own
		})
	}
	_ = g.Wait()

	result := &SearchResult{Total: resp.Total(), Source: SourceAPI, Page: opts.Page, Movies: []*Movie{}}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failures = append(result.Failures, ItemError{IMDBID: id, Err: errs[i]})
			continue
		}
		result.Movies = append(result.Movies, movies[i])
	}

	if len(result.Failures) > 0 {
		s.logger.Warn("partial batch failure",
			"term", term,
			"page", opts.Page,
			"cached", len(result.Movies),
			"failed", len(result.Failures),
			"error", errors.Join(itemErrs(result.Failures)...),
		)
	}
	s.logger.Info("search served from provider", "term", term, "page", opts.Page,
		"total", result.Total, "cached", len(result.Movies))
	return result, nil
}

func uniqueIDs(items []omdb.SearchItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.IMDBID == "" || seen[item.IMDBID] {
			continue
		}
		seen[item.IMDBID] = true
		ids = append(ids, item.IMDBID)
	}
	return ids
}

func itemErrs(failures []ItemError) []error {
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f
	}
	return errs
}

// Get returns the movie with imdbID, from the store while active and from
// the provider otherwise.
func (s *Service) Get(ctx context.Context, imdbID string) (*Movie, Source, error) {
	m, err := s.store.Get(ctx, imdbID)
	switch {
	case err == nil && m.IsActive(s.now()):
		return m, SourceCache, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, "", err
	}

	m, err = s.fetch(ctx, imdbID)
	if err != nil {
		return nil, "", err
	}
	return m, SourceAPI, nil
}

// Refresh refetches imdbID from the provider and overwrites the stored record,
// pushing its expiry forward.
func (s *Service) Refresh(ctx context.Context, imdbID string) (*Movie, error) {
	m, err := s.fetch(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("movie refreshed", "imdb_id", imdbID, "cache_expiry", m.CacheExpiry)
	return m, nil
}

// Delete removes imdbID from the store.
func (s *Service) Delete(ctx context.Context, imdbID string) error {
	if err := s.store.Delete(ctx, imdbID); err != nil {
		return err
	}
	s.logger.Info("movie deleted", "imdb_id", imdbID)
	return nil
}

// ListCached applies q to the active stored records. It never calls the provider.
func (s *Service) ListCached(ctx context.Context, q Query) (Page, error) {
	active, err := s.store.Active(ctx, s.now())
	if err != nil {
		return Page{}, err
	}
	return Apply(active, q), nil
}

// PurgeExpired deletes every expired record and returns the count removed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	return n, nil
}

// PurgeByCriteria deletes every record matching c, or only counts them when
// c.DryRun is set.
func (s *Service) PurgeByCriteria(ctx context.Context, c Criteria) (int64, error) {
	if c.IsEmpty() {
		return 0, ErrEmptyCriteria
	}

	all, err := s.store.All(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	var ids []int64
	for _, m := range all {
		if c.Matches(m, now) {
			ids = append(ids, m.ID)
		}
	}
	if c.DryRun {
		return int64(len(ids)), nil
	}

	n, err := s.store.DeleteIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("criteria purge", "criteria", c.String(), "deleted", n)
	return n, nil
}

// Counts returns total, active and expired record counts.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.store.Counts(ctx, s.now())
}

// Stats reports store counts and a summary of the active records.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	counts, err := s.store.Counts(ctx, now)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Active(ctx, now)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Counts:      counts,
		Summary:     Summarize(active, DefaultTopGenres),
		GeneratedAt: now,
	}, nil
}

// fetch loads imdbID from the provider, normalizes, enriches and upserts it.
func (s *Service) fetch(ctx context.Context, imdbID string) (*Movie, error) {
	detail, err := s.provider.Movie(ctx, imdbID)
	if err != nil {
		return nil, providerError("detail", imdbID, err)
	}

	m, err := Normalize(detail)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, m)

	now := s.now()
	m.LastUpdated = now
	m.CacheExpiry = now.Add(s.ttl)
	if err := s.store.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// enrich fills TMDB data when an enricher is configured. Failures only log.
func (s *Service) enrich(ctx context.Context, m *Movie) {
	if s.enricher == nil {
		return
	}
	found, err := s.enricher.FindByIMDBID(ctx, m.IMDBID)
	if err != nil {
		s.logger.Debug("enrichment skipped", "imdb_id", m.IMDBID, "error", err)
		return
	}
	id := found.ID
	m.TMDBID = &id
	m.Images = found.ImageURLs()
}

// providerError maps provider failures onto catalog errors.
func providerError(op, key string, err error) error {
	switch {
	case errors.Is(err, omdb.ErrNoAPIKey), errors.Is(err, omdb.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	case errors.Is(err, omdb.ErrNotFound):
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	default:
		return &FetchError{Op: op, Key: key, Err: err}
	}
}
