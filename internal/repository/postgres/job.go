package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/job"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

const jobColumns = `id, organization_id, status, started_at, completed_at, resources_analyzed,
	recommendations_generated, potential_savings, created_by, error_message`

// JobRepository stores optimization jobs in the cost_optimization_jobs table
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a SQL-backed job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j *job.CostOptimizationJob) error {
	defer observe("insert", "cost_optimization_jobs", time.Now())

	query := r.db.Rebind(`INSERT INTO cost_optimization_jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		j.ID, j.OrganizationID, j.Status, formatTime(j.StartedAt), formatNullTime(j.CompletedAt),
		j.ResourcesAnalyzed, j.RecommendationsGenerated, j.PotentialSavings, j.CreatedBy, j.ErrorMessage,
	)
	if err != nil {
		return errors.DatabaseError("Failed to create job", err)
	}
	return nil
}

// Update replaces a stored job. Only jobs still pending or running match the update.
func (r *JobRepository) Update(ctx context.Context, j *job.CostOptimizationJob) error {
	defer observe("update", "cost_optimization_jobs", time.Now())

	query := r.db.Rebind(`UPDATE cost_optimization_jobs SET status = ?, completed_at = ?, resources_analyzed = ?,
		recommendations_generated = ?, potential_savings = ?, error_message = ?
		WHERE id = ? AND status NOT IN (?, ?)`)

	result, err := r.db.ExecContext(ctx, query,
		j.Status, formatNullTime(j.CompletedAt), j.ResourcesAnalyzed,
		j.RecommendationsGenerated, j.PotentialSavings, j.ErrorMessage,
		j.ID, job.StatusCompleted, job.StatusFailed,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update job", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to update job", err)
	}
	if rows == 0 {
		stored, getErr := r.GetByID(ctx, j.ID)
		if getErr != nil {
			return getErr
		}
		return errors.Conflict("job " + j.ID + " is already " + string(stored.Status))
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*job.CostOptimizationJob, error) {
	defer observe("select", "cost_optimization_jobs", time.Now())

	query := r.db.Rebind(`SELECT ` + jobColumns + ` FROM cost_optimization_jobs WHERE id = ?`)
	j, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("Job", id)
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get job", err)
	}
	return j, nil
}

func (r *JobRepository) List(ctx context.Context, organizationID string, limit int) ([]*job.CostOptimizationJob, error) {
	defer observe("select", "cost_optimization_jobs", time.Now())

	query := `SELECT ` + jobColumns + ` FROM cost_optimization_jobs WHERE organization_id = ? ORDER BY started_at DESC, id ASC`
	args := []interface{}{organizationID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list jobs", err)
	}
	defer rows.Close()

	jobs := make([]*job.CostOptimizationJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan job", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list jobs", err)
	}
	return jobs, nil
}

func scanJob(row rowScanner) (*job.CostOptimizationJob, error) {
	var j job.CostOptimizationJob
	var startedAt string
	var completedAt sql.NullString

	err := row.Scan(
		&j.ID, &j.OrganizationID, &j.Status, &startedAt, &completedAt, &j.ResourcesAnalyzed,
		&j.RecommendationsGenerated, &j.PotentialSavings, &j.CreatedBy, &j.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	if j.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("invalid started_at: %w", err)
	}
	if j.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, fmt.Errorf("invalid completed_at: %w", err)
	}
	return &j, nil
}
