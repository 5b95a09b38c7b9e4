package utils

import "time"

// Timestamps are stored as UTC RFC3339 strings so they compare and sort
// lexicographically in range queries.

// NowRFC3339 returns the current time in storage form
func NowRFC3339() string {
	return FormatRFC3339(time.Now())
}

// FormatRFC3339 renders a time in storage form
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseRFC3339 parses a stored timestamp
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
