// Package units converts label volume expressions to milliliters.
package units

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/labelcheck/pkg/textnorm"
)

// MLPerFluidOunce is the US fluid ounce in milliliters. Bare "oz" on a
// beverage label is read as fluid ounces.
const MLPerFluidOunce = 29.5735

// number matches "1,000", "1.5", "1,5" and ".5". It must not follow a digit
// or point, so the "5" of ".5" or "1.2.5" is never read on its own.
const number = `(?:^|[^\d.])(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?|[.,]\d+)`

var reThousands = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

type pattern struct {
	re     *regexp.Regexp
	factor float64
}

// Priority order matters: the first pattern that matches wins.
var patterns = []pattern{
	{regexp.MustCompile(number + `\s*(?:ml|millilit(?:er|re)s?)\b`), 1},
	{regexp.MustCompile(number + `\s*(?:l|lit(?:er|re)s?)\b`), 1000},
	{regexp.MustCompile(number + `\s*fl\.?\s*oz\b`), MLPerFluidOunce},
	{regexp.MustCompile(number + `\s*oz\b`), MLPerFluidOunce},
	{regexp.MustCompile(number + `\s*(?:cl|centilit(?:er|re)s?)\b`), 10},
}

var reAnyVolume = regexp.MustCompile(number +
	`\s*(ml|millilit(?:er|re)s?|cl|centilit(?:er|re)s?|fl\.?\s*oz|oz|l|lit(?:er|re)s?)\b`)

var reWhitespace = regexp.MustCompile(`\s+`)

// ToMilliliters parses a volume such as "750 ml", "1.5 L" or "12 fl oz".
// ok is false for empty or unrecognised input.
func ToMilliliters(s string) (ml float64, ok bool) {
	t := prepare(s)
	if t == "" {
		return 0, false
	}
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		v, err := parseNumber(m[1])
		if err != nil {
			continue
		}
		return v * p.factor, true
	}
	return 0, false
}

// ExtractVolumes returns every volume expression found in free text, converted
// to milliliters, in order of appearance.
func ExtractVolumes(s string) []float64 {
	t := prepare(s)
	matches := reAnyVolume.FindAllStringSubmatch(t, -1)
	volumes := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := parseNumber(m[1])
		if err != nil {
			continue
		}
		volumes = append(volumes, v*unitFactor(m[2]))
	}
	return volumes
}

// parseNumber reads a comma as a thousands separator in "1,000" and as a
// decimal mark otherwise.
func parseNumber(s string) (float64, error) {
	if reThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

func unitFactor(unit string) float64 {
	switch {
	case strings.HasPrefix(unit, "m"):
		return 1
	case strings.HasPrefix(unit, "c"):
		return 10
	case strings.HasSuffix(unit, "oz"):
		return MLPerFluidOunce
	default:
		return 1000
	}
}

func prepare(s string) string {
	s = textnorm.Fold(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
