package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// alphaDashReject matches every character outside lowercase/uppercase A-Z, digits and dash.
var alphaDashReject = regexp.MustCompile(`[^a-zA-Z0-9\-]`)

// IsAlphaDash reports whether s is non-empty and made only of A-Z, a-z, 0-9 and dashes.
func IsAlphaDash(s string) bool {
	return s != "" && !alphaDashReject.MatchString(s)
}

// ToSnakeCase converts CamelCase identifiers to snake_case column names.
func ToSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
