package utils

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortFields is the allowlist for list sorting; the map value is the column
// actually ordered by.
var sortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"priority":   "priority",
	"status":     "status",
}

const defaultSort = "created_at DESC"

// ParseSort turns a "field:dir" query value into an ORDER BY clause.
// Unrecognized fields or directions silently fall back to the default.
func ParseSort(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return defaultSort
	}
	field := spec
	dir := "asc"
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		field = spec[:i]
		dir = strings.ToLower(spec[i+1:])
	}
	col, ok := sortFields[strings.ToLower(field)]
	if !ok || (dir != "asc" && dir != "desc") {
		return defaultSort
	}
	return col + " " + strings.ToUpper(dir)
}

// ParsePage reads a 1-based page number; anything unparsable or < 1 becomes 1.
func ParsePage(s string) int {
	p := ParseIntDefault(s, DefaultPage)
	if p < 1 {
		return DefaultPage
	}
	return p
}

// ParseLimit reads a page size clamped to [1, MaxLimit].
func ParseLimit(s string) int {
	l := ParseIntDefault(s, DefaultLimit)
	if l < 1 {
		return 1
	}
	if l > MaxLimit {
		return MaxLimit
	}
	return l
}

func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
