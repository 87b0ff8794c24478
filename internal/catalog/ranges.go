package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRating is the top of the primary rating scale.
const MaxRating = 10.0

// ParseYearRange parses "1999" (that year only) or "1990-2000" (inclusive).
// A range with min > max is valid and matches nothing.
func ParseYearRange(s string) (IntRange, error) {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(s), "-")
	minYear, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return IntRange{}, fmt.Errorf("invalid year %q", s)
	}
	if !isRange {
		return IntRange{Min: minYear, Max: minYear}, nil
	}
	maxYear, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return IntRange{}, fmt.Errorf("invalid year range %q", s)
	}
	return IntRange{Min: minYear, Max: maxYear}, nil
}

// ParseRatingRange parses "7" (at least 7) or "6.5-8" (inclusive).
// Bounds must lie in [0, MaxRating].
func ParseRatingRange(s string) (FloatRange, error) {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(s), "-")
	minRating, err := parseRatingBound(lo)
	if err != nil {
		return FloatRange{}, fmt.Errorf("invalid rating %q: %w", s, err)
	}
	if !isRange {
		return FloatRange{Min: minRating, Max: MaxRating}, nil
	}
	maxRating, err := parseRatingBound(hi)
	if err != nil {
		return FloatRange{}, fmt.Errorf("invalid rating range %q: %w", s, err)
	}
	return FloatRange{Min: minRating, Max: maxRating}, nil
}

func parseRatingBound(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if v < 0 || v > MaxRating {
		return 0, fmt.Errorf("must be between 0 and %g", MaxRating)
	}
	return v, nil
}
