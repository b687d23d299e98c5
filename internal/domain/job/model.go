package job

import (
	"time"

	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

// CostOptimizationJob records one run of the optimization recommender
type CostOptimizationJob struct {
	ID                       string     `json:"id"`
	OrganizationID           string     `json:"organization_id"`
	Status                   Status     `json:"status"`
	StartedAt                time.Time  `json:"started_at"`
	CompletedAt              *time.Time `json:"completed_at,omitempty"`
	ResourcesAnalyzed        int        `json:"resources_analyzed"`
	RecommendationsGenerated int        `json:"recommendations_generated"`
	PotentialSavings         float64    `json:"potential_savings"`
	CreatedBy                string     `json:"created_by"`
	ErrorMessage             string     `json:"error_message,omitempty"`
}

// Status represents the status of a job
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal checks if the status is terminal (completed or failed)
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Start returns a new job in the running state
func Start(id, organizationID, createdBy string, now time.Time) *CostOptimizationJob {
	return &CostOptimizationJob{
		ID:             id,
		OrganizationID: organizationID,
		Status:         StatusRunning,
		StartedAt:      now,
		CreatedBy:      createdBy,
	}
}

// Complete finalizes the job successfully. A job can be finalized only once.
func (j *CostOptimizationJob) Complete(resourcesAnalyzed, recommendationsGenerated int, potentialSavings float64, now time.Time) error {
	if j.Status.IsTerminal() {
		return errors.Conflict("job " + j.ID + " is already " + string(j.Status))
	}
	j.Status = StatusCompleted
	j.CompletedAt = &now
	j.ResourcesAnalyzed = resourcesAnalyzed
	j.RecommendationsGenerated = recommendationsGenerated
	j.PotentialSavings = potentialSavings
	return nil
}

// Fail finalizes the job as failed with the cause's message
func (j *CostOptimizationJob) Fail(cause error, now time.Time) error {
	if j.Status.IsTerminal() {
		return errors.Conflict("job " + j.ID + " is already " + string(j.Status))
	}
	j.Status = StatusFailed
	j.CompletedAt = &now
	if cause != nil {
		j.ErrorMessage = cause.Error()
	}
	return nil
}

// Duration returns how long the job ran, or 0 while it is still running
func (j *CostOptimizationJob) Duration() time.Duration {
	if j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(j.StartedAt)
}

// Clone returns a deep copy
func (j *CostOptimizationJob) Clone() *CostOptimizationJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
