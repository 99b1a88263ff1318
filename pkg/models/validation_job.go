package models

import "time"

const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Issue map keys. IssueGeneral is only used for processing failures.
const (
	FieldBrandName      = "brandName"
	FieldProductClass   = "productClass"
	FieldAlcoholContent = "alcoholContent"
	FieldNetContents    = "netContents"
	IssueGeneral        = "general"
)

// Issues maps a field name to a human-readable explanation of why the claim
// could not be verified. An empty map means every checked field was found.
type Issues map[string]string

// ValidationJob tracks one asynchronous label check. The API returns it on
// POST /api/v1/label-validations; the client polls GET /api/v1/label-validations/{id}
// until status is completed or failed.
type ValidationJob struct {
	ID          string     `db:"id"           json:"id"`
	Status      string     `db:"status"       json:"status"`
	CreatedAt   time.Time  `db:"created_at"   json:"createdAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	Success     bool       `db:"success"      json:"success"`
	Claim       Claim      `db:"-"            json:"formData"`
	Issues      Issues     `db:"issues"       json:"issues,omitempty"`
}

// IsTerminalStatus reports whether status is completed or failed.
func IsTerminalStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// Terminal reports whether the job has left the processing state.
func (j *ValidationJob) Terminal() bool {
	return IsTerminalStatus(j.Status)
}

// Clone returns a deep copy so callers can never mutate a stored record in place.
func (j *ValidationJob) Clone() *ValidationJob {
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Issues != nil {
		c.Issues = make(Issues, len(j.Issues))
		for k, v := range j.Issues {
			c.Issues[k] = v
		}
	}
	return &c
}
