package schema

import (
	"strings"
	"unicode"
)

// NamingPolicy maps canonical property names to their external wire-format
// names. The Name is part of cache keys, so policies must be pure.
type NamingPolicy struct {
	Name  string
	Apply func(property string) string
}

// Identity exposes canonical names unchanged.
var Identity = NamingPolicy{
	Name:  "identity",
	Apply: func(s string) string { return s },
}

// SnakeCase maps "CreatedAt" to "created_at".
var SnakeCase = NamingPolicy{
	Name:  "snake_case",
	Apply: toSnake,
}

// LowerCamelCase maps "CreatedAt" to "createdAt".
var LowerCamelCase = NamingPolicy{
	Name:  "lowerCamelCase",
	Apply: toLowerCamel,
}

func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// keep acronym runs together: "HTTPPort" -> "http_port"
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toLowerCamel(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		// lower the leading upper run except the last letter before a lower one
		if i+1 < len(runes) && unicode.IsLower(runes[i+1]) && i > 0 {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
		i++
	}
	return string(runes)
}

// PolicyByName returns a registered policy for config values.
func PolicyByName(name string) (NamingPolicy, bool) {
	switch name {
	case "", Identity.Name:
		return Identity, true
	case SnakeCase.Name:
		return SnakeCase, true
	case LowerCamelCase.Name:
		return LowerCamelCase, true
	}
	return NamingPolicy{}, false
}
