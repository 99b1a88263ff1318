package fuzzy

import (
	"math"

	"github.com/agext/levenshtein"
	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scorer rates the similarity of two normalized strings from 0 to 100.
type Scorer func(a, b string) int

// indel charges 2 for a substitution, which makes the distance the number of
// insertions plus deletions needed to turn one string into the other.
var indel = levenshtein.NewParams().SubCost(2)

// Ratio is the whole-string similarity: (len(a)+len(b)-indel(a,b)) / (len(a)+len(b)).
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	total := len(ra) + len(rb)
	dist := levenshtein.Distance(a, b, indel)
	if dist > total {
		dist = total
	}
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// PartialRatio scores the shorter string against its best-aligned window of
// the longer one. A verbatim substring always scores 100.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzywuzzy.PartialRatio(a, b)
}

// TokenSortRatio compares the strings after sorting their tokens, so word
// order does not matter.
func TokenSortRatio(a, b string) int {
	return fuzzywuzzy.TokenSortRatio(a, b)
}

// TokenSetRatio compares the shared tokens against each side's remainder.
// Word order and duplicates are ignored; a needle whose words all appear in the
// haystack scores 100.
func TokenSetRatio(a, b string) int {
	return fuzzywuzzy.TokenSetRatio(a, b)
}
