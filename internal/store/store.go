package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the data access interface for validation jobs. Every write replaces
// a complete record; fields are never patched in place.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.ValidationJob) error
	GetJob(ctx context.Context, id string) (*models.ValidationJob, error)
	ListJobs(ctx context.Context) ([]*models.ValidationJob, error)
	// ReplaceJob stores the terminal state of a processing job. The id,
	// claim and creation time of the stored record are kept as they were.
	ReplaceJob(ctx context.Context, job *models.ValidationJob) error
}

var validTransitions = map[string][]string{
	models.JobStatusProcessing: {models.JobStatusCompleted, models.JobStatusFailed},
}

func validTransition(from, to string) bool {
	for _, a := range validTransitions[from] {
		if a == to {
			return true
		}
	}
	return false
}
