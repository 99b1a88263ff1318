// Package textnorm turns noisy label and OCR text into a comparable form.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9 ]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases s, strips diacritics, replaces every character outside
// [a-z0-9 ] with a space, collapses whitespace and trims.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	s = Fold(s)
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fold applies compatibility decomposition, drops combining marks and
// lower-cases, leaving punctuation in place.
func Fold(s string) string {
	if s == "" {
		return s
	}
	// Lower first so that case mappings which introduce combining marks
	// (e.g. U+0130) are stripped below, and again afterwards for
	// decompositions that yield upper-case letters (e.g. U+3396 -> "mL").
	s = strings.ToLower(s)
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
