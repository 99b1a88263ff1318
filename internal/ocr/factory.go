package ocr

import (
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/labelcheck/internal/config"
)

// NewClient constructs the OCR client named by cfg.Provider.
// Called once at startup.
func NewClient(cfg config.OCRConfig, logger *slog.Logger) (Client, error) {
	switch cfg.Provider {
	case "tesseract":
		return NewTesseractClient(TesseractConfig{
			Path:          cfg.TesseractPath,
			Lang:          cfg.TesseractLang,
			TessdataDir:   cfg.TessdataDir,
			TSVConfidence: cfg.TSVConfidence,
			Timeout:       cfg.Timeout,
		}, nil, logger), nil
	case "http":
		if cfg.HTTPURL == "" {
			return nil, fmt.Errorf("OCR_HTTP_URL is required for the http OCR provider")
		}
		return NewHTTPClient(cfg.HTTPURL, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown OCR provider %q: must be one of tesseract, http", cfg.Provider)
	}
}
