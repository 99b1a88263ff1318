// Package fuzzy decides whether an expected value appears in noisy OCR text.
//
// OCR output misreads characters, merges lines and surrounds the interesting
// fields with packaging boilerplate, so plain substring containment is too
// brittle. Each scorer captures a different corruption pattern and a match
// succeeds when any of them clears the threshold.
package fuzzy

import "github.com/kiranshivaraju/labelcheck/pkg/textnorm"

// DefaultScorers are combined by Best. Each is usable on its own.
var DefaultScorers = []Scorer{
	PartialRatio,
	TokenSetRatio,
	TokenSortRatio,
	Ratio,
}

// Result is the outcome of matching one expected value.
type Result struct {
	Found      bool
	Confidence int
}

// Best returns the highest score any of DefaultScorers gives the pair.
// Inputs are expected to be normalized already.
func Best(haystack, needle string) int {
	best := 0
	for _, score := range DefaultScorers {
		if s := score(needle, haystack); s > best {
			best = s
		}
	}
	return best
}

// Match normalizes both operands and reports whether needle appears in
// haystack with a confidence of at least threshold (0..100).
func Match(haystack, needle string, threshold int) Result {
	conf := Best(textnorm.Normalize(haystack), textnorm.Normalize(needle))
	return Result{Found: conf >= threshold, Confidence: conf}
}
