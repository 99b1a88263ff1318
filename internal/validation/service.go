// Package validation runs label validation jobs: it stores a processing job,
// checks the label in the background and records the verdict.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kiranshivaraju/labelcheck/internal/cache"
	"github.com/kiranshivaraju/labelcheck/internal/compare"
	"github.com/kiranshivaraju/labelcheck/internal/idgen"
	"github.com/kiranshivaraju/labelcheck/internal/ocr"
	"github.com/kiranshivaraju/labelcheck/internal/store"
	"github.com/kiranshivaraju/labelcheck/internal/telemetry"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

const (
	defaultConcurrency = 4
	defaultStatusTTL   = 30 * time.Minute
)

// Options tunes a Service. Zero values take defaults.
type Options struct {
	Concurrency int
	StatusTTL   time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// Service owns the validation job lifecycle.
type Service struct {
	store  store.Store
	cache  cache.Cache
	ocr    ocr.Client
	engine *compare.Engine
	ids    idgen.Generator

	sem       chan struct{}
	wg        sync.WaitGroup
	statusTTL time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service. ca may be nil when no cache is configured.
func NewService(st store.Store, ca cache.Cache, client ocr.Client, engine *compare.Engine, ids idgen.Generator, opts Options) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = defaultStatusTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		store:     st,
		cache:     ca,
		ocr:       client,
		engine:    engine,
		ids:       ids,
		sem:       make(chan struct{}, opts.Concurrency),
		statusTTL: opts.StatusTTL,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// Submit stores a processing job for claim and checks the label image in a
// background goroutine. It returns as soon as the job is stored.
func (s *Service) Submit(ctx context.Context, claim models.Claim, image []byte) (*models.ValidationJob, error) {
	if err := validateClaim(claim); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: labelImage is required", ErrInvalidInput)
	}

	job := &models.ValidationJob{
		ID:        s.ids.NewID(),
		Status:    models.JobStatusProcessing,
		CreatedAt: s.now(),
		Claim:     claim,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	s.setStatus(ctx, job.ID, job.Status)
	telemetry.JobsSubmitted.Inc()

	s.wg.Add(1)
	go s.process(job.Clone(), image)

	return job, nil
}

// process checks one job. It recovers from panics and always leaves the job
// completed or failed.
func (s *Service) process(job *models.ValidationJob, image []byte) {
	defer s.wg.Done()
	ctx := context.Background()

	telemetry.InFlightGauge.Inc()
	defer telemetry.InFlightGauge.Dec()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in validation job", "job_id", job.ID, "error", r)
			s.fail(ctx, job)
		}
	}()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	start := time.Now()
	text, err := s.ocr.ExtractText(ctx, image)
	telemetry.OCRDuration.WithLabelValues(s.ocr.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("ocr failed", "job_id", job.ID, "ocr", s.ocr.Name(), "error", err)
		s.fail(ctx, job)
		return
	}

	verdict := s.engine.Compare(text, job.Claim)
	s.logger.Debug("label compared",
		"job_id", job.ID,
		"ocr_confidence", text.Confidence,
		"confidence", verdict.Confidence,
		"success", verdict.Success)

	done := s.now()
	job.Status = models.JobStatusCompleted
	job.Success = verdict.Success
	job.Issues = verdict.Issues
	job.CompletedAt = &done
	if err := s.store.ReplaceJob(ctx, job); err != nil {
		s.logger.Error("storing verdict failed", "job_id", job.ID, "error", err)
		s.fail(ctx, job)
		return
	}
	s.setStatus(ctx, job.ID, job.Status)

	verdictLabel := telemetry.VerdictFail
	if verdict.Success {
		verdictLabel = telemetry.VerdictPass
	}
	telemetry.JobsCompleted.WithLabelValues(verdictLabel).Inc()
	s.logger.Info("validation job completed", "job_id", job.ID, "success", job.Success, "issues", len(job.Issues))
}

func (s *Service) fail(ctx context.Context, job *models.ValidationJob) {
	if err := s.markFailed(ctx, job); err != nil {
		s.logger.Error("marking job failed", "job_id", job.ID, "error", err)
	}
}

func (s *Service) markFailed(ctx context.Context, job *models.ValidationJob) error {
	done := s.now()
	job.Status = models.JobStatusFailed
	job.Success = false
	job.Issues = models.Issues{models.IssueGeneral: GeneralFailureMessage}
	job.CompletedAt = &done

	if err := s.store.ReplaceJob(ctx, job); err != nil {
		return err
	}
	s.setStatus(ctx, job.ID, job.Status)
	telemetry.JobsFailed.Inc()
	return nil
}

// FailStale marks every job still processing after olderThan as failed with
// the general issue. It is run at startup to settle jobs whose worker died
// with a previous process. Jobs another instance finishes first are skipped.
func (s *Service) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing jobs: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	failed := 0
	for _, job := range jobs {
		if job.Terminal() || job.CreatedAt.After(cutoff) {
			continue
		}
		err := s.markFailed(ctx, job)
		if errors.Is(err, store.ErrInvalidTransition) {
			continue
		}
		if err != nil {
			return failed, fmt.Errorf("failing stale job %s: %w", job.ID, err)
		}
		s.logger.Warn("stale validation job marked failed", "job_id", job.ID, "created_at", job.CreatedAt)
		failed++
	}
	return failed, nil
}

// setStatus writes the job status to the cache. Cache errors are logged and ignored.
func (s *Service) setStatus(ctx context.Context, id, status string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJobStatus(ctx, id, status, s.statusTTL); err != nil {
		s.logger.Warn("caching job status", "job_id", id, "error", err)
	}
}

// Get returns the job with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.ValidationJob, error) {
	job, err := s.store.GetJob(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

// List returns every job, oldest first.
func (s *Service) List(ctx context.Context) ([]*models.ValidationJob, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// Status returns only the status of a job. A cached terminal status answers
// directly. A cached processing status is confirmed against the store, and the
// cache is rewritten when the store has already moved on.
func (s *Service) Status(ctx context.Context, id string) (string, error) {
	if s.cache != nil {
		status, ok, err := s.cache.GetJobStatus(ctx, id)
		if err != nil {
			s.logger.Warn("reading cached job status", "job_id", id, "error", err)
		} else if ok && models.IsTerminalStatus(status) {
			return status, nil
		}
	}

	job, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if job.Terminal() {
		s.setStatus(ctx, job.ID, job.Status)
	}
	return job.Status, nil
}

// Wait blocks until every background job has finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
