package search

import (
	"strings"
	"unicode"
)

// strippedRunes are removed outright so "AI's" matches "ais" and
// "Energy, Oil & Gas" matches "energy oil gas" without a phantom space.
var strippedRunes = map[rune]struct{}{
	',':      {},
	'\'':     {},
	'‘': {}, // left single quote
	'’': {}, // right single quote
	'“': {}, // left double quote
	'”': {}, // right double quote
}

// Normalize lowercases s, strips commas and straight/smart quotes, collapses
// every other non-alphanumeric run to a single space, and trims.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range strings.ToLower(s) {
		if _, strip := strippedRunes[r]; strip {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
