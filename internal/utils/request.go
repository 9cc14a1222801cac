package utils

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// GetString reads a string value stored on ctx under key.
func GetString(ctx context.Context, key any) (string, bool) {
	s, ok := ctx.Value(key).(string)
	return s, ok
}

// QueryInt parses an integer query parameter, falling back to def when
// it is missing, malformed or negative.
func QueryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// QueryString returns the trimmed query parameter.
func QueryString(q url.Values, key string) string {
	return strings.TrimSpace(q.Get(key))
}
