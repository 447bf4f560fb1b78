package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes runes and drops the combining marks, so "ção" becomes "cao".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes text into a comparable token:
//   - lowercases
//   - strips diacritics (NFD + combining mark removal)
//   - keeps only letters, whitespace and hyphens
//   - trims surrounding whitespace
//
// Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FirstToken normalizes text and returns its first whitespace-separated segment.
// Multi-word input therefore only scores its leading word.
func FirstToken(text string) string {
	fields := strings.Fields(Normalize(text))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
