package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case.
// Acronym runs stay together (HTTPRequest -> http_request, UserID -> user_id).
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			// A boundary sits before an uppercase rune that follows a
			// lowercase one, or that starts the tail of an acronym run.
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
