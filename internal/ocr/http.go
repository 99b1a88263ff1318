package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// HTTPClient implements Client against a remote OCR service. The image is
// posted as multipart field "image"; the service answers
// {"text": "...", "confidence": n}.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

type ocrResponse struct {
	Text       *string `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewHTTPClient creates a new OCR HTTP client.
func NewHTTPClient(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (c *HTTPClient) Name() string { return "http" }

func (c *HTTPClient) ExtractText(ctx context.Context, image []byte) (models.OcrResult, error) {
	prepared, err := Preprocess(image)
	if errors.Is(err, ErrUnreadableImage) {
		c.logger.Warn("unreadable label image", "bytes", len(image), "error", err)
		return models.OcrResult{}, nil
	}
	if err != nil {
		return models.OcrResult{}, err
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", "label.png")
	if err != nil {
		return models.OcrResult{}, fmt.Errorf("building request: %w", err)
	}
	if _, err := part.Write(prepared); err != nil {
		return models.OcrResult{}, fmt.Errorf("building request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.OcrResult{}, fmt.Errorf("building request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return models.OcrResult{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.OcrResult{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return models.OcrResult{}, fmt.Errorf("%w: status %d", ErrOCRUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return models.OcrResult{}, fmt.Errorf("%w: status %d", ErrOCRBadResponse, resp.StatusCode)
	}

	var out ocrResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return models.OcrResult{}, fmt.Errorf("%w: %v", ErrOCRBadResponse, err)
	}
	if out.Text == nil {
		return models.OcrResult{}, fmt.Errorf("%w: missing text", ErrOCRBadResponse)
	}

	return models.OcrResult{RawText: *out.Text, Confidence: out.Confidence}, nil
}

// classifyError maps transport errors to the package sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrOCRTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrOCRTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
}

var _ Client = (*HTTPClient)(nil)
