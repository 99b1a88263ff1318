// Package compare checks a set of label claims against OCR text.
package compare

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/labelcheck/pkg/fuzzy"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
	"github.com/kiranshivaraju/labelcheck/pkg/textnorm"
	"github.com/kiranshivaraju/labelcheck/pkg/units"
)

// Fixed match thresholds (0..100). They are not calibrated against a labeled set.
const (
	BrandThreshold        = 60
	ProductClassThreshold = 60
	AlcoholThreshold      = 90
	NetContentsThreshold  = 60
)

// VolumeToleranceML is the largest difference between a claimed and a printed
// volume that still counts as a match in NetContentsVolume mode.
const VolumeToleranceML = 1.0

// NetContentsMode selects how net contents are verified. One engine applies a
// single mode to every job so issue messages stay comparable.
type NetContentsMode string

const (
	// NetContentsFuzzy fuzzy-matches the claimed string against the raw text.
	NetContentsFuzzy NetContentsMode = "fuzzy"
	// NetContentsVolume converts the claim and every volume printed on the
	// label to milliliters and compares numerically.
	NetContentsVolume NetContentsMode = "volume"
)

// ParseNetContentsMode maps a config value to a mode. Empty means fuzzy.
func ParseNetContentsMode(s string) (NetContentsMode, error) {
	switch NetContentsMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NetContentsFuzzy:
		return NetContentsFuzzy, nil
	case NetContentsVolume:
		return NetContentsVolume, nil
	default:
		return "", fmt.Errorf("unknown net contents mode %q: must be fuzzy or volume", s)
	}
}

// Result is the verdict for one claim set.
type Result struct {
	Success bool
	// Issues holds one entry per field that could not be verified.
	Issues models.Issues
	// Confidence is the score each checked field reached, for logging.
	Confidence map[string]int
}

// Engine compares claims with OCR output. It performs no I/O and is safe for
// concurrent use.
type Engine struct {
	netMode NetContentsMode
}

// NewEngine returns an Engine using the given net contents mode.
func NewEngine(mode NetContentsMode) *Engine {
	if mode == "" {
		mode = NetContentsFuzzy
	}
	return &Engine{netMode: mode}
}

// NetContentsMode reports the mode the engine was built with.
func (e *Engine) NetContentsMode() NetContentsMode { return e.netMode }

// Compare checks every claimed field against the OCR text. The same inputs
// always produce the same Result.
func (e *Engine) Compare(ocr models.OcrResult, claim models.Claim) Result {
	text := textnorm.Normalize(ocr.RawText)
	issues := models.Issues{}
	conf := make(map[string]int, 4)

	if claim.BrandName != "" {
		m := fuzzy.Match(text, claim.BrandName, BrandThreshold)
		conf[models.FieldBrandName] = m.Confidence
		if !m.Found {
			issues[models.FieldBrandName] = fmt.Sprintf(
				"Brand name not found in label (confidence: %d%%)", m.Confidence)
		}
	}

	if claim.ProductClass != "" {
		m := fuzzy.Match(text, claim.ProductClass, ProductClassThreshold)
		conf[models.FieldProductClass] = m.Confidence
		if !m.Found {
			issues[models.FieldProductClass] = fmt.Sprintf(
				"Product class not found in label (confidence: %d%%)", m.Confidence)
		}
	}

	if !math.IsNaN(claim.AlcoholContent) && !math.IsInf(claim.AlcoholContent, 0) {
		value := FormatNumber(claim.AlcoholContent)
		withPercent := value + "%"
		best := 0
		found := false
		for _, candidate := range []string{withPercent, value} {
			m := fuzzy.Match(text, candidate, AlcoholThreshold)
			best = max(best, m.Confidence)
			if m.Found {
				found = true
				break
			}
		}
		conf[models.FieldAlcoholContent] = best
		if !found {
			issues[models.FieldAlcoholContent] = fmt.Sprintf(
				"Alcohol content \"%s\" not found in label", withPercent)
		}
	}

	if net := strings.TrimSpace(claim.NetContents); net != "" {
		switch e.netMode {
		case NetContentsVolume:
			if msg, ok := checkVolume(ocr.RawText, net); !ok {
				issues[models.FieldNetContents] = msg
			}
		default:
			m := fuzzy.Match(text, net, NetContentsThreshold)
			conf[models.FieldNetContents] = m.Confidence
			if !m.Found {
				issues[models.FieldNetContents] = fmt.Sprintf(
					"Net contents \"%s\" not found in label (confidence: %d%%)", net, m.Confidence)
			}
		}
	}

	return Result{
		Success:    len(issues) == 0,
		Issues:     issues,
		Confidence: conf,
	}
}

// checkVolume passes when any volume printed on the label is within
// VolumeToleranceML of the claimed one. An unreadable claim is a mismatch,
// not an error.
func checkVolume(rawText, claimed string) (string, bool) {
	want, ok := units.ToMilliliters(claimed)
	if !ok {
		return fmt.Sprintf("Net contents \"%s\" could not be interpreted as a volume", claimed), false
	}
	for _, got := range units.ExtractVolumes(rawText) {
		if math.Abs(got-want) <= VolumeToleranceML {
			return "", true
		}
	}
	return fmt.Sprintf("Net contents \"%s\" (%s ml) not found in label", claimed, FormatNumber(math.Round(want*10)/10)), false
}

// FormatNumber renders a number the shortest way that round-trips, so 45
// prints as "45" and 12.5 as "12.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
