package catalog

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// SortField names a sortable movie attribute.
type SortField string

const (
	SortNone    SortField = "" // keep incoming order
	SortTitle   SortField = "title"
	SortYear    SortField = "year"
	SortRating  SortField = "rating"
	SortRuntime SortField = "runtime"
	SortCreated SortField = "created"
)

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Page size bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// ParseSortField validates a sort key.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortNone, SortTitle, SortYear, SortRating, SortRuntime, SortCreated:
		return f, nil
	case "createdat", "created_at":
		return SortCreated, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// ParseOrder validates a sort direction. Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderAsc, nil
	case OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// IntRange is an inclusive integer range.
type IntRange struct {
	Min, Max int
}

// Contains reports whether v lies in the range.
func (r IntRange) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// FloatRange is an inclusive float range.
type FloatRange struct {
	Min, Max float64
}

// Contains reports whether v lies in the range.
func (r FloatRange) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Query specifies filters, ordering and pagination over a candidate set.
// All filters are optional and combine with AND.
type Query struct {
	Genres []string    // match if the movie has any of these genres
	Year   *IntRange   // exact year is Min == Max
	Rating *FloatRange // "at least x" is {x, 10}
	SortBy SortField
	Order  Order
	Page   int // 1-indexed
	Limit  int // clamped to [1, MaxLimit]
}

// Page is one page of query results.
type Page struct {
	Movies []*Movie
	Total  int // matches before pagination
	Page   int
	Limit  int
	Pages  int
}

// Matches reports whether m passes every filter of q.
// Movies without a year or rating never match a year or rating filter.
func (q Query) Matches(m *Movie) bool {
	if len(q.Genres) > 0 && !hasAnyGenre(m, q.Genres) {
		return false
	}
	if q.Year != nil && (m.Year == nil || !q.Year.Contains(*m.Year)) {
		return false
	}
	if q.Rating != nil && (m.Ratings.IMDB.Score == nil || !q.Rating.Contains(*m.Ratings.IMDB.Score)) {
		return false
	}
	return true
}

func hasAnyGenre(m *Movie, genres []string) bool {
	for _, want := range genres {
		for _, g := range m.Genres {
			if strings.EqualFold(g, want) {
				return true
			}
		}
	}
	return false
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Order == "" {
		q.Order = OrderAsc
	}
	return q
}

// Apply filters, sorts and paginates candidates. The input slice is not modified.
// Sorting is stable and treats missing values as zero (or the empty string),
// so ties and unrated movies keep their incoming relative order.
func Apply(candidates []*Movie, q Query) Page {
	q = q.normalized()

	matched := make([]*Movie, 0, len(candidates))
	for _, m := range candidates {
		if q.Matches(m) {
			matched = append(matched, m)
		}
	}

	if compare := comparator(q.SortBy); compare != nil {
		desc := q.Order == OrderDesc
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return compare(matched[j], matched[i]) < 0
			}
			return compare(matched[i], matched[j]) < 0
		})
	}

	total := len(matched)
	page := Page{
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
		Pages: (total + q.Limit - 1) / q.Limit,
	}

	start := (q.Page - 1) * q.Limit
	if start >= total {
		page.Movies = []*Movie{}
		return page
	}
	end := min(start+q.Limit, total)
	page.Movies = matched[start:end]
	return page
}

// comparator returns a three-way compare for field, nil for SortNone.
func comparator(field SortField) func(a, b *Movie) int {
	switch field {
	case SortTitle:
		return func(a, b *Movie) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortYear:
		return func(a, b *Movie) int { return cmp.Compare(a.yearOrZero(), b.yearOrZero()) }
	case SortRating:
		return func(a, b *Movie) int { return cmp.Compare(a.Score(), b.Score()) }
	case SortRuntime:
		return func(a, b *Movie) int { return cmp.Compare(a.runtimeOrZero(), b.runtimeOrZero()) }
	case SortCreated:
		return func(a, b *Movie) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return nil
	}
}

func formatIntRange(r IntRange) string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

func formatFloatRange(r FloatRange) string {
	return fmt.Sprintf("%g-%g", r.Min, r.Max)
}
