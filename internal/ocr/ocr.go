// Package ocr turns label images into raw text for the comparison engine.
package ocr

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

var (
	ErrOCRUnavailable  = errors.New("ocr backend unavailable")
	ErrOCRTimeout      = errors.New("ocr timeout")
	ErrOCRBadResponse  = errors.New("ocr backend returned invalid response")
	ErrUnreadableImage = errors.New("image could not be decoded")
)

// Client extracts text from a label image. An image that cannot be decoded
// yields an empty result and a nil error; only backend failures are errors.
type Client interface {
	Name() string
	ExtractText(ctx context.Context, image []byte) (models.OcrResult, error)
}
