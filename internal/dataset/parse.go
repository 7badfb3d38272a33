package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the accepted timestamp formats, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseTime parses a timestamp in any accepted layout. Returns the zero
// time when the field is empty or unparseable.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseTimePtr parses a timestamp, returning nil for empty/unparseable fields.
func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// parseIntOr parses a string as an integer, returning def if parsing fails.
func parseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseFloat64Or parses a string as a float64, returning def if parsing fails.
func parseFloat64Or(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// parseFloat64OrNaN parses a measurement column where absence is meaningful.
func parseFloat64OrNaN(s string) float64 {
	return parseFloat64Or(s, math.NaN())
}

// parseBool01 interprets the 0/1 flag columns. Anything other than "1",
// "true", or "t" is false.
func parseBool01(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t":
		return true
	}
	return false
}

// trimQuotes removes surrounding double quotes from a CSV field.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// mapColumns builds a lowercased column name → index map from a header row.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// getCol gets a column value by name, or empty string if absent.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}
