package v1

import (
	"context"
	"errors"
	"time"

	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/cleanup"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Catalog is the movie service behind the API.
type Catalog interface {
	Search(ctx context.Context, term string, opts catalog.SearchOptions) (*catalog.SearchResult, error)
	Get(ctx context.Context, imdbID string) (*catalog.Movie, catalog.Source, error)
	Refresh(ctx context.Context, imdbID string) (*catalog.Movie, error)
	Delete(ctx context.Context, imdbID string) error
	ListCached(ctx context.Context, q catalog.Query) (catalog.Page, error)
	PurgeExpired(ctx context.Context) (int64, error)
	PurgeByCriteria(ctx context.Context, c catalog.Criteria) (int64, error)
	Stats(ctx context.Context) (*catalog.Stats, error)
	TTL() time.Duration
}

// Cleaner runs a cleanup pass on demand.
type Cleaner interface {
	RunOnce(ctx context.Context) (*cleanup.Report, error)
}

// ServerDeps contains all dependencies for the API server.
type ServerDeps struct {
	// Required
	Catalog Catalog

	// Optional (nil if not configured)
	Cleaner Cleaner
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Catalog == nil {
		return errors.New("catalog is required")
	}
	return nil
}
