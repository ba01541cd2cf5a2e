package occupation

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a job title for index keys and matching: lowercase,
// drop everything that is not a letter, digit, or space, collapse runs of
// whitespace to a single space, and trim. Normalize is idempotent and never
// fails; empty input yields the empty string.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		default:
			// Punctuation and symbols are removed entirely.
		}
	}

	return strings.TrimRight(b.String(), " ")
}
