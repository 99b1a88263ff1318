package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Labels narrower than this are upscaled before recognition.
const minOCRWidth = 1200

// MaxImagePixels caps the decoded size of an upload. The header is checked
// before any pixel data is decoded.
const MaxImagePixels = 40_000_000

// Preprocess decodes an uploaded image and prepares it for recognition:
// grayscale, upscaled when small, contrast boosted, re-encoded as PNG.
// Undecodable input, and images above MaxImagePixels, return ErrUnreadableImage.
func Preprocess(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnreadableImage, cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	gray := imaging.Grayscale(img)
	if w := gray.Bounds().Dx(); w > 0 && w < minOCRWidth {
		gray = imaging.Resize(gray, minOCRWidth, 0, imaging.Lanczos)
	}
	gray = imaging.AdjustContrast(gray, 20)

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
