package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const dash = "-"

func formatYear(y *int) string {
	if y == nil {
		return dash
	}
	return strconv.Itoa(*y)
}

func formatRuntime(m *int) string {
	if m == nil {
		return dash
	}
	if *m < 60 {
		return fmt.Sprintf("%dm", *m)
	}
	return fmt.Sprintf("%dh%02dm", *m/60, *m%60)
}

func formatScore(s *float64) string {
	if s == nil {
		return dash
	}
	return strconv.FormatFloat(*s, 'f', 1, 64)
}

func formatVotes(v *int) string {
	if v == nil {
		return dash
	}
	return humanize.Comma(int64(*v))
}

func formatPercent(p *int) string {
	if p == nil {
		return dash
	}
	return fmt.Sprintf("%d%%", *p)
}

func formatList(items []string, limit int) string {
	if len(items) == 0 {
		return dash
	}
	if limit > 0 && len(items) > limit {
		return strings.Join(items[:limit], ", ") + fmt.Sprintf(" +%d", len(items)-limit)
	}
	return strings.Join(items, ", ")
}

// formatExpiry renders an expiry relative to now, e.g. "in 23 hours" or "expired 2 hours ago".
func formatExpiry(expiry, now time.Time) string {
	if expiry.IsZero() {
		return dash
	}
	if !expiry.After(now) {
		return "expired " + humanize.RelTime(expiry, now, "ago", "from now")
	}
	return "in " + strings.TrimSuffix(humanize.RelTime(expiry, now, "ago", ""), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
