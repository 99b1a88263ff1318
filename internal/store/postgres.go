package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const jobColumns = `id, status, success, brand_name, product_class, alcohol_content, net_contents, issues, created_at, completed_at`

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.ValidationJob) error {
	issues, err := marshalIssues(job.Issues)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO validation_jobs (`+jobColumns+`, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.Status, job.Success, job.Claim.BrandName, job.Claim.ProductClass,
		job.Claim.AlcoholContent, job.Claim.NetContents, issues, job.CreatedAt,
		job.CompletedAt, time.Now().UTC())
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.ValidationJob, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM validation_jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context) ([]*models.ValidationJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM validation_jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.ValidationJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ReplaceJob only updates rows still in processing, so two writers can never
// both move the same job to a terminal state.
func (s *PostgresStore) ReplaceJob(ctx context.Context, job *models.ValidationJob) error {
	if !validTransition(models.JobStatusProcessing, job.Status) {
		return fmt.Errorf("%w: -> %s", ErrInvalidTransition, job.Status)
	}
	issues, err := marshalIssues(job.Issues)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE validation_jobs
		 SET status = $2, success = $3, issues = $4, completed_at = $5, updated_at = $6
		 WHERE id = $1 AND status = $7`,
		job.ID, job.Status, job.Success, issues, job.CompletedAt, time.Now().UTC(),
		models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("replace job: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = s.pool.QueryRow(ctx, `SELECT status FROM validation_jobs WHERE id = $1`, job.ID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, job.Status)
}

func scanJob(row pgx.Row) (*models.ValidationJob, error) {
	var j models.ValidationJob
	var issues []byte
	if err := row.Scan(&j.ID, &j.Status, &j.Success, &j.Claim.BrandName, &j.Claim.ProductClass,
		&j.Claim.AlcoholContent, &j.Claim.NetContents, &issues, &j.CreatedAt, &j.CompletedAt); err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &j.Issues); err != nil {
			return nil, fmt.Errorf("decode issues: %w", err)
		}
	}
	return &j, nil
}

// marshalIssues returns nil for an empty map so the column stays NULL.
func marshalIssues(issues models.Issues) ([]byte, error) {
	if len(issues) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(issues)
	if err != nil {
		return nil, fmt.Errorf("encode issues: %w", err)
	}
	return b, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
