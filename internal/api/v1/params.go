package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/marquee/internal/catalog"
)

// validationError is a malformed request; it maps to 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// listParams are the parsed query parameters of GET /movies.
type listParams struct {
	Search   string
	UseCache bool
	Query    catalog.Query
}

func parseListParams(r *http.Request) (listParams, error) {
	v := r.URL.Query()
	p := listParams{
		Search:   strings.TrimSpace(v.Get("search")),
		UseCache: true,
		Query:    catalog.Query{Page: 1, Limit: catalog.DefaultLimit},
	}

	if s := v.Get("genre"); s != "" {
		for _, g := range strings.Split(s, ",") {
			if g = strings.TrimSpace(g); g != "" {
				p.Query.Genres = append(p.Query.Genres, g)
			}
		}
	}
	if s := v.Get("year"); s != "" {
		yr, err := catalog.ParseYearRange(s)
		if err != nil {
			return p, invalidf("year: %v", err)
		}
		p.Query.Year = &yr
	}
	if s := v.Get("rating"); s != "" {
		rr, err := catalog.ParseRatingRange(s)
		if err != nil {
			return p, invalidf("rating: %v", err)
		}
		p.Query.Rating = &rr
	}

	sortBy, err := catalog.ParseSortField(v.Get("sort"))
	if err != nil {
		return p, invalidf("sort: %v", err)
	}
	p.Query.SortBy = sortBy
	order, err := catalog.ParseOrder(v.Get("order"))
	if err != nil {
		return p, invalidf("order: %v", err)
	}
	p.Query.Order = order

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, invalidf("page: must be a positive integer, got %q", s)
		}
		p.Query.Page = n
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > catalog.MaxLimit {
			return p, invalidf("limit: must be between 1 and %d, got %q", catalog.MaxLimit, s)
		}
		p.Query.Limit = n
	}
	if s := v.Get("cache"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return p, invalidf("cache: must be true or false, got %q", s)
		}
		p.UseCache = b
	}
	return p, nil
}

// pathIMDBID extracts and validates the {id} path parameter.
func pathIMDBID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if !catalog.ValidIMDBID(id) {
		return "", invalidf("invalid IMDb id %q", id)
	}
	return id, nil
}

func (p purgeRequest) criteria() (catalog.Criteria, error) {
	c := catalog.Criteria{DryRun: p.DryRun}
	if p.OlderThan != "" {
		d, err := parseAge(p.OlderThan)
		if err != nil || d <= 0 {
			return c, invalidf("older_than: must be a positive duration, got %q", p.OlderThan)
		}
		c.OlderThan = d
	}
	if p.Rating != "" {
		rr, err := catalog.ParseRatingRange(p.Rating)
		if err != nil {
			return c, invalidf("rating: %v", err)
		}
		c.Rating = &rr
	}
	for _, g := range p.Genres {
		if g = strings.TrimSpace(g); g != "" {
			c.Genres = append(c.Genres, g)
		}
	}
	if p.Year != "" {
		yr, err := catalog.ParseYearRange(p.Year)
		if err != nil {
			return c, invalidf("year: %v", err)
		}
		c.Year = &yr
	}
	if c.IsEmpty() {
		return c, invalidf("at least one of older_than, rating, genres, year is required")
	}
	return c, nil
}

// parseAge accepts Go durations plus a whole-day suffix ("30d").
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
