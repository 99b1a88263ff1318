package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/labelcheck/internal/api/response"
	"github.com/kiranshivaraju/labelcheck/internal/validation"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

const (
	// MaxImageBytes caps an uploaded label image.
	MaxImageBytes = 10 << 20
	// Form fields and headers on top of the image.
	multipartOverhead = 1 << 20

	imageField = "labelImage"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidationService defines the job operations the handlers depend on.
type ValidationService interface {
	Submit(ctx context.Context, claim models.Claim, image []byte) (*models.ValidationJob, error)
	Get(ctx context.Context, id string) (*models.ValidationJob, error)
	List(ctx context.Context) ([]*models.ValidationJob, error)
	Status(ctx context.Context, id string) (string, error)
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/label-validations.
// The request is multipart/form-data with the claim fields and a labelImage file.
func NewSubmitHandler(svc ValidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+multipartOverhead)
		if err := r.ParseMultipartForm(MaxImageBytes + multipartOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Label image must be at most 10 MB", nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Expected multipart/form-data body", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		claim, err := validation.ParseClaim(validation.ClaimInput{
			BrandName:      r.FormValue(models.FieldBrandName),
			ProductClass:   r.FormValue(models.FieldProductClass),
			AlcoholContent: r.FormValue(models.FieldAlcoholContent),
			NetContents:    r.FormValue(models.FieldNetContents),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		image, status, msg := readImage(r)
		if status != 0 {
			code := "INVALID_REQUEST"
			if status == http.StatusRequestEntityTooLarge {
				code = "PAYLOAD_TOO_LARGE"
			}
			response.Error(w, status, code, msg, nil)
			return
		}

		job, err := svc.Submit(r.Context(), claim, image)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Location", "/api/v1/label-validations/"+job.ID)
		response.Accepted(w, job)
	}
}

// readImage returns the uploaded label image, or an HTTP status and message
// describing why it was rejected.
func readImage(r *http.Request) ([]byte, int, string) {
	f, _, err := r.FormFile(imageField)
	if err != nil {
		return nil, http.StatusBadRequest, "labelImage is required"
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, http.StatusBadRequest, "labelImage could not be read"
	}
	if len(data) == 0 {
		return nil, http.StatusBadRequest, "labelImage is required"
	}
	if len(data) > MaxImageBytes {
		return nil, http.StatusRequestEntityTooLarge, "Label image must be at most 10 MB"
	}
	if !allowedImageTypes[http.DetectContentType(data)] {
		return nil, http.StatusBadRequest, "labelImage must be a JPEG, PNG or WebP image"
	}
	return data, 0, ""
}

// NewListHandler returns an http.HandlerFunc for GET /api/v1/label-validations.
func NewListHandler(svc ValidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Collection(w, jobs, response.ListMeta{Total: len(jobs)})
	}
}

// NewGetHandler returns an http.HandlerFunc for GET /api/v1/label-validations/{id}.
func NewGetHandler(svc ValidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, job)
	}
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/v1/label-validations/{id}/status.
func NewStatusHandler(svc ValidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		status, err := svc.Status(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, map[string]string{"id": id, "status": status})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, validation.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Validation job not found", nil)
	default:
		slog.Error("label validation request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}
