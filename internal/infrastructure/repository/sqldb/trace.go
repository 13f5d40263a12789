package sqldb

import (
	"regexp"
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	lineCommentRegex     = regexp.MustCompile(`--[^\n]*`)
)

// FormatQueryForTrace collapses a query onto one line for span attributes.
// Batch upserts keep their first VALUES tuple and a count of the rest.
func FormatQueryForTrace(query string) string {
	query = strings.TrimSpace(lineCommentRegex.ReplaceAllString(query, ""))
	if query == "" {
		return query
	}

	normalized := collapseValues(queryWhitespaceRegex.ReplaceAllString(query, " "))
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

func collapseValues(query string) string {
	idx := strings.Index(strings.ToUpper(query), " VALUES ")
	if idx < 0 {
		return query
	}
	start := idx + len(" VALUES ")

	var (
		depth    int
		tuples   int
		firstEnd = -1
		end      = len(query)
	)
scan:
	for i := start; i < len(query); i++ {
		switch query[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				tuples++
				if firstEnd < 0 {
					firstEnd = i + 1
				}
			}
		case ',', ' ':
		default:
			if depth == 0 {
				end = i
				break scan
			}
		}
	}
	if tuples < 2 {
		return query
	}

	rest := strings.TrimSpace(query[end:])
	out := query[:firstEnd] + " /* +" + strconv.Itoa(tuples-1) + " rows */"
	if rest != "" {
		out += " " + rest
	}
	return out
}
