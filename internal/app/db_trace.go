package app

import (
	"regexp"
	"strings"
)

// Span attributes get unwieldy with multi-kilobyte statements, so traced
// queries are collapsed to single-line form and capped.
const tracedQueryLimit = 512

var whitespaceRun = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flat := whitespaceRun.ReplaceAllString(query, " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}

	return flat
}
