package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

const (
	maxTextFieldLen = 100
	minAlcohol      = 0
	maxAlcohol      = 100
)

// ClaimInput is a claim as submitted, before any parsing.
type ClaimInput struct {
	BrandName      string
	ProductClass   string
	AlcoholContent string
	NetContents    string
}

// ParseClaim trims and validates submitted claim fields. Errors wrap ErrInvalidInput.
func ParseClaim(in ClaimInput) (models.Claim, error) {
	claim := models.Claim{
		BrandName:    strings.TrimSpace(in.BrandName),
		ProductClass: strings.TrimSpace(in.ProductClass),
		NetContents:  strings.TrimSpace(in.NetContents),
	}

	abv := strings.TrimSpace(in.AlcoholContent)
	if abv == "" {
		return models.Claim{}, fmt.Errorf("%w: alcoholContent is required", ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(abv, "%"), 64)
	if err != nil {
		return models.Claim{}, fmt.Errorf("%w: alcoholContent must be a number, got %q", ErrInvalidInput, abv)
	}
	claim.AlcoholContent = v

	if err := validateClaim(claim); err != nil {
		return models.Claim{}, err
	}
	return claim, nil
}

func validateClaim(c models.Claim) error {
	if strings.TrimSpace(c.BrandName) == "" {
		return fmt.Errorf("%w: brandName is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.ProductClass) == "" {
		return fmt.Errorf("%w: productClass is required", ErrInvalidInput)
	}
	for field, v := range map[string]string{
		models.FieldBrandName:    c.BrandName,
		models.FieldProductClass: c.ProductClass,
		models.FieldNetContents:  c.NetContents,
	} {
		if utf8.RuneCountInString(v) > maxTextFieldLen {
			return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, maxTextFieldLen)
		}
	}
	if math.IsNaN(c.AlcoholContent) || math.IsInf(c.AlcoholContent, 0) {
		return fmt.Errorf("%w: alcoholContent must be a number", ErrInvalidInput)
	}
	if c.AlcoholContent < minAlcohol || c.AlcoholContent > maxAlcohol {
		return fmt.Errorf("%w: alcoholContent must be between %d and %d", ErrInvalidInput, minAlcohol, maxAlcohol)
	}
	return nil
}
