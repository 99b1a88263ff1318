package mock

import (
	"context"

	"github.com/kiranshivaraju/labelcheck/internal/ocr"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// MockClient satisfies ocr.Client for testing.
type MockClient struct {
	Name_           string
	ExtractTextFunc func(ctx context.Context, image []byte) (models.OcrResult, error)
}

func (m *MockClient) Name() string { return m.Name_ }

func (m *MockClient) ExtractText(ctx context.Context, image []byte) (models.OcrResult, error) {
	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, image)
	}
	return models.OcrResult{}, nil
}

// NewTextClient returns a MockClient that always recognizes text.
func NewTextClient(text string) *MockClient {
	return &MockClient{
		Name_: "mock",
		ExtractTextFunc: func(_ context.Context, _ []byte) (models.OcrResult, error) {
			return models.OcrResult{RawText: text, Confidence: 90}, nil
		},
	}
}

// NewFailingClient returns a MockClient that always returns the given error.
func NewFailingClient(err error) *MockClient {
	return &MockClient{
		Name_: "mock-failing",
		ExtractTextFunc: func(_ context.Context, _ []byte) (models.OcrResult, error) {
			return models.OcrResult{}, err
		},
	}
}

// NewPanickingClient returns a MockClient whose ExtractText panics.
func NewPanickingClient() *MockClient {
	return &MockClient{
		Name_: "mock-panic",
		ExtractTextFunc: func(_ context.Context, _ []byte) (models.OcrResult, error) {
			panic("simulated ocr crash")
		},
	}
}

// NewBlockingClient returns a MockClient that waits for release (or context
// cancellation) before recognizing text.
func NewBlockingClient(text string, release <-chan struct{}) *MockClient {
	return &MockClient{
		Name_: "mock-blocking",
		ExtractTextFunc: func(ctx context.Context, _ []byte) (models.OcrResult, error) {
			select {
			case <-release:
				return models.OcrResult{RawText: text}, nil
			case <-ctx.Done():
				return models.OcrResult{}, ocr.ErrOCRTimeout
			}
		},
	}
}

// Compile-time check that MockClient implements ocr.Client.
var _ ocr.Client = (*MockClient)(nil)
