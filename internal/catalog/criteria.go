package catalog

import (
	"strings"
	"time"
)

// Criteria selects records for administrative purging, independent of expiry.
// Set fields combine with AND; a zero Criteria matches nothing and is rejected.
type Criteria struct {
	OlderThan time.Duration // created more than OlderThan ago
	Rating    *FloatRange   // unrated movies count as 0
	Genres    []string      // any of these genres
	Year      *IntRange     // movies without a year never match
	DryRun    bool          // count matches without deleting
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return c.OlderThan <= 0 && c.Rating == nil && len(c.Genres) == 0 && c.Year == nil
}

// Matches reports whether m is selected at now.
func (c Criteria) Matches(m *Movie, now time.Time) bool {
	if c.IsEmpty() {
		return false
	}
	if c.OlderThan > 0 && !m.CreatedAt.Before(now.Add(-c.OlderThan)) {
		return false
	}
	if c.Rating != nil && !c.Rating.Contains(m.Score()) {
		return false
	}
	if len(c.Genres) > 0 && !hasAnyGenre(m, c.Genres) {
		return false
	}
	if c.Year != nil && (m.Year == nil || !c.Year.Contains(*m.Year)) {
		return false
	}
	return true
}

// String renders the criteria for logs.
func (c Criteria) String() string {
	var parts []string
	if c.OlderThan > 0 {
		parts = append(parts, "older_than="+c.OlderThan.String())
	}
	if c.Rating != nil {
		parts = append(parts, "rating="+formatFloatRange(*c.Rating))
	}
	if len(c.Genres) > 0 {
		parts = append(parts, "genres="+strings.Join(c.Genres, "|"))
	}
	if c.Year != nil {
		parts = append(parts, "year="+formatIntRange(*c.Year))
	}
	if c.DryRun {
		parts = append(parts, "dry_run")
	}
	return strings.Join(parts, " ")
}
