package compare

import (
	"testing"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oldTomClaim() models.Claim {
	return models.Claim{
		BrandName:      "Old Tom Distillery",
		ProductClass:   "Kentucky Straight Bourbon Whiskey",
		AlcoholContent: 45,
		NetContents:    "750 ml",
	}
}

const oldTomLabel = "OLD TOM DISTILLERY KENTUCKY STRAIGHT BOURBON WHISKEY 45% 750ml"

func TestCompare_AllFieldsFound(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)

	res := e.Compare(models.OcrResult{RawText: oldTomLabel, Confidence: 91}, oldTomClaim())

	assert.True(t, res.Success)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 100, res.Confidence[models.FieldBrandName])
	assert.Equal(t, 100, res.Confidence[models.FieldProductClass])
	assert.Equal(t, 100, res.Confidence[models.FieldAlcoholContent])
}

func TestCompare_EmptyOCRText(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)

	res := e.Compare(models.OcrResult{}, oldTomClaim())

	assert.False(t, res.Success)
	require.Len(t, res.Issues, 4)
	assert.Equal(t, "Brand name not found in label (confidence: 0%)", res.Issues[models.FieldBrandName])
	assert.Equal(t, "Product class not found in label (confidence: 0%)", res.Issues[models.FieldProductClass])
	assert.Equal(t, `Alcohol content "45%" not found in label`, res.Issues[models.FieldAlcoholContent])
	assert.Equal(t, `Net contents "750 ml" not found in label (confidence: 0%)`, res.Issues[models.FieldNetContents])
}

func TestCompare_AlcoholContentCandidates(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)
	claim := models.Claim{BrandName: "Vodka Co", ProductClass: "Vodka", AlcoholContent: 40}

	tests := []struct {
		name string
		text string
	}{
		{"with percent sign", "VODKA CO VODKA 40% ALC/VOL"},
		{"without percent sign", "VODKA CO VODKA ALC 40 BY VOL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Compare(models.OcrResult{RawText: tt.text}, claim)
			assert.NotContains(t, res.Issues, models.FieldAlcoholContent)
			assert.True(t, res.Success)
		})
	}
}

func TestCompare_AlcoholContentMismatch(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)

	res := e.Compare(models.OcrResult{RawText: "OLD TOM DISTILLERY KENTUCKY STRAIGHT BOURBON WHISKEY 40% 750ml"}, oldTomClaim())

	assert.False(t, res.Success)
	assert.Equal(t, map[string]string{
		models.FieldAlcoholContent: `Alcohol content "45%" not found in label`,
	}, map[string]string(res.Issues))
}

func TestCompare_DecimalAlcoholContent(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)
	claim := models.Claim{BrandName: "Domaine Rosé", ProductClass: "Rosé Wine", AlcoholContent: 12.5}

	res := e.Compare(models.OcrResult{RawText: "DOMAINE ROSÉ\nROSÉ WINE\n12.5% ALC. BY VOL."}, claim)
	assert.True(t, res.Success, "issues: %v", res.Issues)

	res = e.Compare(models.OcrResult{RawText: "DOMAINE ROSÉ ROSÉ WINE"}, claim)
	assert.Equal(t, `Alcohol content "12.5%" not found in label`, res.Issues[models.FieldAlcoholContent])
}

func TestCompare_NetContentsSkippedWhenEmpty(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)
	claim := oldTomClaim()
	claim.NetContents = "   "

	res := e.Compare(models.OcrResult{RawText: "OLD TOM DISTILLERY KENTUCKY STRAIGHT BOURBON WHISKEY 45%"}, claim)

	assert.True(t, res.Success)
	assert.NotContains(t, res.Confidence, models.FieldNetContents)
}

func TestCompare_BrandMismatchReportsConfidence(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)
	claim := oldTomClaim()
	claim.BrandName = "Zyxw Qvjk"

	res := e.Compare(models.OcrResult{RawText: oldTomLabel}, claim)

	assert.False(t, res.Success)
	require.Contains(t, res.Issues, models.FieldBrandName)
	assert.Contains(t, res.Issues[models.FieldBrandName], "Brand name not found in label (confidence: ")
	assert.Less(t, res.Confidence[models.FieldBrandName], BrandThreshold)
}

func TestCompare_Deterministic(t *testing.T) {
	e := NewEngine(NetContentsFuzzy)
	ocr := models.OcrResult{RawText: "0LD T0M DISTILLERY\nBOURBON 45 % 75O ML", Confidence: 40}

	first := e.Compare(ocr, oldTomClaim())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Compare(ocr, oldTomClaim()))
	}
}

func TestCompare_VolumeMode(t *testing.T) {
	e := NewEngine(NetContentsVolume)

	tests := []struct {
		name    string
		net     string
		text    string
		wantMsg string
	}{
		{"same volume different unit", "750 ml", oldTomLabel + " 0.75 L", ""},
		{"fluid ounces within tolerance", "12 fl oz", oldTomLabel + " 355ML", ""},
		{"different volume", "1 L", oldTomLabel, `Net contents "1 L" (1000 ml) not found in label`},
		{"unparseable claim", "one bottle", oldTomLabel, `Net contents "one bottle" could not be interpreted as a volume`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := oldTomClaim()
			claim.NetContents = tt.net
			res := e.Compare(models.OcrResult{RawText: tt.text}, claim)
			if tt.wantMsg == "" {
				assert.NotContains(t, res.Issues, models.FieldNetContents)
				return
			}
			assert.Equal(t, tt.wantMsg, res.Issues[models.FieldNetContents])
		})
	}
}

func TestParseNetContentsMode(t *testing.T) {
	m, err := ParseNetContentsMode("")
	require.NoError(t, err)
	assert.Equal(t, NetContentsFuzzy, m)

	m, err = ParseNetContentsMode("Volume")
	require.NoError(t, err)
	assert.Equal(t, NetContentsVolume, m)

	_, err = ParseNetContentsMode("exact")
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "45", FormatNumber(45))
	assert.Equal(t, "12.5", FormatNumber(12.5))
	assert.Equal(t, "0", FormatNumber(0))
}
