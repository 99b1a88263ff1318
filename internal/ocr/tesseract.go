package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// TesseractConfig configures the local tesseract binary.
type TesseractConfig struct {
	Path          string // binary name or absolute path; "tesseract" when empty
	Lang          string // "eng" when empty
	TessdataDir   string
	TSVConfidence bool
	Timeout       time.Duration
}

// TesseractClient implements Client by shelling out to tesseract.
type TesseractClient struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

// NewTesseractClient creates a TesseractClient. A nil runner uses os/exec.
func NewTesseractClient(cfg TesseractConfig, runner Runner, logger *slog.Logger) *TesseractClient {
	if cfg.Path == "" {
		cfg.Path = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractClient{cfg: cfg, runner: runner, logger: logger}
}

func (c *TesseractClient) Name() string { return "tesseract" }

func (c *TesseractClient) ExtractText(ctx context.Context, image []byte) (models.OcrResult, error) {
	prepared, err := Preprocess(image)
	if errors.Is(err, ErrUnreadableImage) {
		c.logger.Warn("unreadable label image", "bytes", len(image), "error", err)
		return models.OcrResult{}, nil
	}
	if err != nil {
		return models.OcrResult{}, err
	}

	f, err := os.CreateTemp("", "labelcheck-*.png")
	if err != nil {
		return models.OcrResult{}, fmt.Errorf("create temp image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.Write(prepared); err != nil {
		f.Close()
		return models.OcrResult{}, fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return models.OcrResult{}, fmt.Errorf("close temp image: %w", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	out, _, err := c.runner.Run(ctx, c.cfg.Path, c.args(path)...)
	if err != nil {
		return models.OcrResult{}, c.classify(ctx, err)
	}
	result := models.OcrResult{RawText: strings.TrimSpace(string(out))}

	if c.cfg.TSVConfidence {
		tsv, _, err := c.runner.Run(ctx, c.cfg.Path, append(c.args(path), "tsv")...)
		if err != nil {
			c.logger.Warn("tesseract tsv confidence failed", "error", err)
		} else {
			result.Confidence = meanConfidence(string(tsv))
		}
	}
	return result, nil
}

// tesseract <file> stdout -l <lang> [--tessdata-dir dir]
func (c *TesseractClient) args(path string) []string {
	args := []string{path, "stdout", "-l", c.cfg.Lang}
	if c.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.cfg.TessdataDir)
	}
	return args
}

func (c *TesseractClient) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrOCRTimeout, err)
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	return fmt.Errorf("tesseract: %w", err)
}

// meanConfidence averages the word confidences (conf column) of tesseract TSV
// output, skipping the header and rows with confidence -1.
const tsvConfColumn = 10

func meanConfidence(tsv string) float64 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[tsvConfColumn])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

var _ Client = (*TesseractClient)(nil)
