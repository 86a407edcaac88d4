package sqlquery

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// PatternMatcher builds the substring predicate for Contains filters.
// Replace the default when the backend offers a native match (trigram
// index, full-text search). Install once at startup.
type PatternMatcher func(column, value string, caseSensitive bool) squirrel.Sqlizer

var matchPattern PatternMatcher = defaultPatternMatch

// SetPatternMatcher substitutes the substring strategy; nil restores the
// default ILIKE/LIKE match.
func SetPatternMatcher(fn PatternMatcher) {
	if fn == nil {
		matchPattern = defaultPatternMatch
		return
	}
	matchPattern = fn
}

func defaultPatternMatch(column, value string, caseSensitive bool) squirrel.Sqlizer {
	pattern := "%" + escapeLike(value) + "%"
	if caseSensitive {
		return squirrel.Expr(column+" LIKE ?", pattern)
	}
	return squirrel.Expr(column+" ILIKE ?", pattern)
}

// escapeLike neutralizes LIKE metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
