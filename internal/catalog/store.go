package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists movies in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new movie store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const movieColumns = `id, imdb_id, tmdb_id, title, year, released, runtime,
	genres, directors, writers, actors, plot, languages, countries, rated, type,
	imdb_rating, imdb_votes, rotten_tomatoes, metacritic, poster, images, source,
	cache_expiry, last_updated, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (*Movie, error) {
	m := &Movie{}
	var genres, directors, writers, actors, languages, countries, images string
	var typ string
	err := row.Scan(
		&m.ID, &m.IMDBID, &m.TMDBID, &m.Title, &m.Year, &m.Released, &m.Runtime,
		&genres, &directors, &writers, &actors, &m.Plot, &languages, &countries, &m.Rated, &typ,
		&m.Ratings.IMDB.Score, &m.Ratings.IMDB.Votes, &m.Ratings.RottenTomatoes, &m.Ratings.Metacritic,
		&m.Poster, &images, &m.Provider,
		&m.CacheExpiry, &m.LastUpdated, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = Type(typ)

	lists := []struct {
		raw string
		dst *[]string
	}{
		{genres, &m.Genres}, {directors, &m.Directors}, {writers, &m.Writers},
		{actors, &m.Actors}, {languages, &m.Languages}, {countries, &m.Countries},
		{images, &m.Images},
	}
	for _, l := range lists {
		if *l.dst, err = decodeList(l.raw); err != nil {
			return nil, fmt.Errorf("decode %s lists: %w", m.IMDBID, err)
		}
	}
	return m, nil
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func decodeList(raw string) ([]string, error) {
	var items []string
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Upsert inserts m or overwrites the existing record with the same IMDb id,
// in a single statement. CreatedAt is preserved on overwrite.
// m.CacheExpiry and m.LastUpdated must be set; ID and CreatedAt are filled in.
func (s *Store) Upsert(ctx context.Context, m *Movie) error {
	if m.IMDBID == "" {
		return fmt.Errorf("upsert movie: %w: missing imdb id", ErrInvalidRecord)
	}
	if m.CacheExpiry.IsZero() || m.LastUpdated.IsZero() {
		return fmt.Errorf("upsert movie %s: cache expiry and last updated are required", m.IMDBID)
	}
	if m.Type == "" {
		m.Type = TypeMovie
	}
	if m.Provider == "" {
		m.Provider = ProviderOMDb
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO movies (imdb_id, tmdb_id, title, year, released, runtime,
			genres, directors, writers, actors, plot, languages, countries, rated, type,
			imdb_rating, imdb_votes, rotten_tomatoes, metacritic, poster, images, source,
			cache_expiry, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(imdb_id) DO UPDATE SET
			tmdb_id = excluded.tmdb_id,
			title = excluded.title,
			year = excluded.year,
			released = excluded.released,
			runtime = excluded.runtime,
			genres = excluded.genres,
			directors = excluded.directors,
			writers = excluded.writers,
			actors = excluded.actors,
			plot = excluded.plot,
			languages = excluded.languages,
			countries = excluded.countries,
			rated = excluded.rated,
			type = excluded.type,
			imdb_rating = excluded.imdb_rating,
			imdb_votes = excluded.imdb_votes,
			rotten_tomatoes = excluded.rotten_tomatoes,
			metacritic = excluded.metacritic,
			poster = excluded.poster,
			images = excluded.images,
			source = excluded.source,
			cache_expiry = excluded.cache_expiry,
			last_updated = excluded.last_updated`,
		m.IMDBID, m.TMDBID, m.Title, m.Year, utcPtr(m.Released), m.Runtime,
		encodeList(m.Genres), encodeList(m.Directors), encodeList(m.Writers), encodeList(m.Actors),
		m.Plot, encodeList(m.Languages), encodeList(m.Countries), m.Rated, string(m.Type),
		m.Ratings.IMDB.Score, m.Ratings.IMDB.Votes, m.Ratings.RottenTomatoes, m.Ratings.Metacritic,
		m.Poster, encodeList(m.Images), m.Provider,
		m.CacheExpiry.UTC(), m.LastUpdated.UTC(), m.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert movie %s: %w", m.IMDBID, err)
	}

	stored, err := s.Get(ctx, m.IMDBID)
	if err != nil {
		return fmt.Errorf("reload movie %s: %w", m.IMDBID, err)
	}
	m.ID = stored.ID
	m.CreatedAt = stored.CreatedAt
	return nil
}

// Get retrieves a movie by IMDb id regardless of expiry.
// Returns ErrNotFound if the movie does not exist.
func (s *Store) Get(ctx context.Context, imdbID string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE imdb_id = ?", imdbID)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get movie %s: %w", imdbID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", imdbID, err)
	}
	return m, nil
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]*Movie, error) {
	query := "SELECT " + movieColumns + " FROM movies"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return results, nil
}

// All returns every stored movie in insertion order.
func (s *Store) All(ctx context.Context) ([]*Movie, error) {
	return s.list(ctx, "")
}

// Active returns movies whose expiry is after now, in insertion order.
func (s *Store) Active(ctx context.Context, now time.Time) ([]*Movie, error) {
	return s.list(ctx, "cache_expiry > ?", now.UTC())
}

// Counts returns total, active and expired record counts at now.
func (s *Store) Counts(ctx context.Context, now time.Time) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN cache_expiry > ? THEN 1 ELSE 0 END), 0)
		FROM movies`, now.UTC(),
	).Scan(&c.Total, &c.Active)
	if err != nil {
		return Counts{}, fmt.Errorf("count movies: %w", err)
	}
	c.Expired = c.Total - c.Active
	return c, nil
}

// DeleteExpired removes records whose expiry is at or before now.
// Returns the number of records removed.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM movies WHERE cache_expiry <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes a movie by IMDb id.
// Returns ErrNotFound if no such movie is stored.
func (s *Store) Delete(ctx context.Context, imdbID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM movies WHERE imdb_id = ?", imdbID)
	if err != nil {
		return fmt.Errorf("delete movie %s: %w", imdbID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete movie %s: %w", imdbID, ErrNotFound)
	}
	return nil
}

// DeleteIDs removes the given row ids in one transaction.
func (s *Store) DeleteIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM movies WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("prepare delete: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var deleted int64
	for _, id := range ids {
		result, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("delete movie %d: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		deleted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return deleted, nil
}
