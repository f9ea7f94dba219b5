package refdata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes diacritics: decompose to NFD, drop combining marks,
// recompose. "Môn" and "Mon" must land on the same normalized form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the matching form of a label: diacritics stripped,
// lowercased, punctuation collapsed to spaces, whitespace folded.
func Normalize(label string) string {
	s, _, err := transform.String(stripMarks, label)
	if err != nil {
		s = label
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Slug derives a code fragment from a normalized label, for stub entity
// codes.
func Slug(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "-")
}
