package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/labelcheck/internal/api/handler"
	"github.com/kiranshivaraju/labelcheck/internal/compare"
	"github.com/kiranshivaraju/labelcheck/internal/idgen"
	"github.com/kiranshivaraju/labelcheck/internal/ocr/mock"
	"github.com/kiranshivaraju/labelcheck/internal/store"
	"github.com/kiranshivaraju/labelcheck/internal/validation"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labelText = "OLD TOM DISTILLERY KENTUCKY STRAIGHT BOURBON WHISKEY 45% 750ml"

type testServer struct {
	router http.Handler
	svc    *validation.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc := validation.NewService(store.NewMemoryStore(), nil, mock.NewTextClient(labelText),
		compare.NewEngine(compare.NetContentsFuzzy), idgen.NewCounter(), validation.Options{})
	return &testServer{router: routerFor(svc), svc: svc}
}

func routerFor(svc handler.ValidationService) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/label-validations", handler.NewSubmitHandler(svc))
	r.Get("/api/v1/label-validations", handler.NewListHandler(svc))
	r.Get("/api/v1/label-validations/{id}", handler.NewGetHandler(svc))
	r.Get("/api/v1/label-validations/{id}/status", handler.NewStatusHandler(svc))
	return r
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.svc.Wait(ctx))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.Black)
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func validFields() map[string]string {
	return map[string]string{
		"brandName":      "Old Tom Distillery",
		"productClass":   "Kentucky Straight Bourbon Whiskey",
		"alcoholContent": "45",
		"netContents":    "750 ml",
	}
}

func multipartRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("labelImage", "label.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/label-validations", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return parseBody(t, w)["error"].(map[string]any)["code"].(string)
}

// ========================================
// Submit
// ========================================

func TestSubmit_Accepted(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(multipartRequest(t, validFields(), pngBytes(t)))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "/api/v1/label-validations/1", w.Header().Get("Location"))

	data := parseBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "1", data["id"])
	assert.Equal(t, "processing", data["status"])
	assert.Equal(t, false, data["success"])
	assert.NotEmpty(t, data["createdAt"])
	_, hasIssues := data["issues"]
	assert.False(t, hasIssues)

	form := data["formData"].(map[string]any)
	assert.Equal(t, "Old Tom Distillery", form["brandName"])
	assert.Equal(t, "Kentucky Straight Bourbon Whiskey", form["productClass"])
	assert.Equal(t, float64(45), form["alcoholContent"])
	assert.Equal(t, "750 ml", form["netContents"])

	ts.wait(t)
}

func TestSubmit_MissingBrandName(t *testing.T) {
	ts := newTestServer(t)
	fields := validFields()
	delete(fields, "brandName")

	w := ts.do(multipartRequest(t, fields, pngBytes(t)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(t, w))

	jobs, err := ts.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSubmit_NonNumericAlcohol(t *testing.T) {
	ts := newTestServer(t)
	fields := validFields()
	fields["alcoholContent"] = "strong"

	w := ts.do(multipartRequest(t, fields, pngBytes(t)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, parseBody(t, w)["error"].(map[string]any)["message"], "alcoholContent")
}

func TestSubmit_MissingImage(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(multipartRequest(t, validFields(), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(t, w))
}

func TestSubmit_UnsupportedImageType(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(multipartRequest(t, validFields(), []byte("GIF89a not really")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, parseBody(t, w)["error"].(map[string]any)["message"], "JPEG, PNG or WebP")
}

func TestSubmit_ImageTooLarge(t *testing.T) {
	ts := newTestServer(t)
	big := make([]byte, handler.MaxImageBytes+1)
	copy(big, pngBytes(t))

	w := ts.do(multipartRequest(t, validFields(), big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", errCode(t, w))
}

func TestSubmit_NotMultipart(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/label-validations", bytes.NewBufferString(`{"brandName":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ========================================
// Get / List / Status
// ========================================

func TestGet_AfterCompletion(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusAccepted, ts.do(multipartRequest(t, validFields(), pngBytes(t))).Code)
	ts.wait(t)

	w := ts.do(httptest.NewRequest("GET", "/api/v1/label-validations/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	data := parseBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, true, data["success"])
	assert.NotEmpty(t, data["completedAt"])
}

func TestGet_UnknownID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest("GET", "/api/v1/label-validations/12345", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, w))
}

func TestList(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest("GET", "/api/v1/label-validations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Empty(t, body["data"])
	assert.Equal(t, float64(0), body["meta"].(map[string]any)["total"])

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusAccepted, ts.do(multipartRequest(t, validFields(), pngBytes(t))).Code)
	}
	ts.wait(t)

	w = ts.do(httptest.NewRequest("GET", "/api/v1/label-validations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body = parseBody(t, w)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "1", data[0].(map[string]any)["id"])
	assert.Equal(t, "2", data[1].(map[string]any)["id"])
	assert.Equal(t, float64(2), body["meta"].(map[string]any)["total"])
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusAccepted, ts.do(multipartRequest(t, validFields(), pngBytes(t))).Code)
	ts.wait(t)

	w := ts.do(httptest.NewRequest("GET", "/api/v1/label-validations/1/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := parseBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "1", data["id"])
	assert.Equal(t, "completed", data["status"])

	w = ts.do(httptest.NewRequest("GET", "/api/v1/label-validations/999/status", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- internal errors ---

type brokenService struct{}

func (brokenService) Submit(context.Context, models.Claim, []byte) (*models.ValidationJob, error) {
	return nil, errors.New("store offline")
}
func (brokenService) Get(context.Context, string) (*models.ValidationJob, error) {
	return nil, errors.New("store offline")
}
func (brokenService) List(context.Context) ([]*models.ValidationJob, error) {
	return nil, errors.New("store offline")
}
func (brokenService) Status(context.Context, string) (string, error) {
	return "", errors.New("store offline")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	router := routerFor(brokenService{})

	requests := []*http.Request{
		multipartRequest(t, validFields(), pngBytes(t)),
		httptest.NewRequest("GET", "/api/v1/label-validations", nil),
		httptest.NewRequest("GET", "/api/v1/label-validations/1", nil),
		httptest.NewRequest("GET", "/api/v1/label-validations/1/status", nil),
	}
	for _, req := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code, req.URL.Path)
		assert.NotContains(t, w.Body.String(), "store offline")
	}
}
