package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

const recommendationColumns = `id, organization_id, job_id, resource_id, resource_type, type, title, description,
	current_configuration, recommended_configuration, current_cost, recommended_cost, savings_amount, savings_percentage,
	annual_savings, currency, confidence, effort, impact, status, category, implementation_steps, justification,
	implemented_at, implemented_by, dismissed_at, dismissed_by, dismiss_reason, notes, created_at, updated_at`

// RecommendationRepository stores recommendations in the cost_recommendations table
type RecommendationRepository struct {
	db *DB
}

// NewRecommendationRepository creates a SQL-backed recommendation repository
func NewRecommendationRepository(db *DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *recommendation.CostOptimizationRecommendation) error {
	defer observe("insert", "cost_recommendations", time.Now())
	return r.insert(ctx, r.db, rec)
}

// CreateMany inserts recommendations in one transaction
func (r *RecommendationRepository) CreateMany(ctx context.Context, recs []*recommendation.CostOptimizationRecommendation) error {
	if len(recs) == 0 {
		return nil
	}
	defer observe("insert_batch", "cost_recommendations", time.Now())

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			if err := r.insert(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RecommendationRepository) insert(ctx context.Context, ex execer, rec *recommendation.CostOptimizationRecommendation) error {
	currentConfig, recommendedConfig, steps, err := encodeRecommendationJSON(rec)
	if err != nil {
		return errors.Internal("Failed to encode recommendation", err)
	}

	query := r.db.Rebind(`INSERT INTO cost_recommendations (` + recommendationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = ex.ExecContext(ctx, query,
		rec.ID, rec.OrganizationID, rec.JobID, rec.ResourceID, rec.ResourceType, rec.Type, rec.Title, rec.Description,
		currentConfig, recommendedConfig, rec.CurrentCost, rec.RecommendedCost, rec.SavingsAmount, rec.SavingsPercentage,
		rec.AnnualSavings, rec.Currency, rec.Confidence, rec.Effort, rec.Impact, rec.Status, rec.Category, steps, rec.Justification,
		formatNullTime(rec.ImplementedAt), rec.ImplementedBy, formatNullTime(rec.DismissedAt), rec.DismissedBy, rec.DismissReason,
		rec.Notes, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create recommendation", err)
	}
	return nil
}

func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*recommendation.CostOptimizationRecommendation, error) {
	defer observe("select", "cost_recommendations", time.Now())

	query := r.db.Rebind(`SELECT ` + recommendationColumns + ` FROM cost_recommendations WHERE id = ?`)
	rec, err := scanRecommendation(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("Recommendation", id)
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get recommendation", err)
	}
	return rec, nil
}

func (r *RecommendationRepository) Update(ctx context.Context, rec *recommendation.CostOptimizationRecommendation) error {
	defer observe("update", "cost_recommendations", time.Now())

	query := r.db.Rebind(`UPDATE cost_recommendations SET status = ?, implemented_at = ?, implemented_by = ?,
		dismissed_at = ?, dismissed_by = ?, dismiss_reason = ?, notes = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		rec.Status, formatNullTime(rec.ImplementedAt), rec.ImplementedBy,
		formatNullTime(rec.DismissedAt), rec.DismissedBy, rec.DismissReason, rec.Notes, formatTime(rec.UpdatedAt), rec.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update recommendation", err)
	}

	return updatedOne(result, "Recommendation", rec.ID)
}

func (r *RecommendationRepository) List(ctx context.Context, organizationID string, filter recommendation.Filter) ([]*recommendation.CostOptimizationRecommendation, error) {
	defer observe("select", "cost_recommendations", time.Now())

	where := []string{"organization_id = ?"}
	args := []interface{}{organizationID}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}

	query := fmt.Sprintf(`SELECT %s FROM cost_recommendations WHERE %s ORDER BY savings_amount DESC, created_at ASC, id ASC`,
		recommendationColumns, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list recommendations", err)
	}
	defer rows.Close()

	recs := make([]*recommendation.CostOptimizationRecommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan recommendation", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list recommendations", err)
	}
	return recs, nil
}

func encodeRecommendationJSON(rec *recommendation.CostOptimizationRecommendation) (string, string, string, error) {
	current, err := json.Marshal(orEmptyMap(rec.CurrentConfiguration))
	if err != nil {
		return "", "", "", err
	}
	recommended, err := json.Marshal(orEmptyMap(rec.RecommendedConfiguration))
	if err != nil {
		return "", "", "", err
	}
	steps := rec.ImplementationSteps
	if steps == nil {
		steps = []string{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return "", "", "", err
	}
	return string(current), string(recommended), string(stepsJSON), nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func scanRecommendation(row rowScanner) (*recommendation.CostOptimizationRecommendation, error) {
	var rec recommendation.CostOptimizationRecommendation
	var currentConfig, recommendedConfig, steps, createdAt, updatedAt string
	var implementedAt, dismissedAt sql.NullString

	err := row.Scan(
		&rec.ID, &rec.OrganizationID, &rec.JobID, &rec.ResourceID, &rec.ResourceType, &rec.Type, &rec.Title, &rec.Description,
		&currentConfig, &recommendedConfig, &rec.CurrentCost, &rec.RecommendedCost, &rec.SavingsAmount, &rec.SavingsPercentage,
		&rec.AnnualSavings, &rec.Currency, &rec.Confidence, &rec.Effort, &rec.Impact, &rec.Status, &rec.Category, &steps, &rec.Justification,
		&implementedAt, &rec.ImplementedBy, &dismissedAt, &rec.DismissedBy, &rec.DismissReason,
		&rec.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(currentConfig), &rec.CurrentConfiguration); err != nil {
		return nil, fmt.Errorf("invalid current_configuration: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendedConfig), &rec.RecommendedConfiguration); err != nil {
		return nil, fmt.Errorf("invalid recommended_configuration: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &rec.ImplementationSteps); err != nil {
		return nil, fmt.Errorf("invalid implementation_steps: %w", err)
	}

	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}
	if rec.ImplementedAt, err = parseNullTime(implementedAt); err != nil {
		return nil, fmt.Errorf("invalid implemented_at: %w", err)
	}
	if rec.DismissedAt, err = parseNullTime(dismissedAt); err != nil {
		return nil, fmt.Errorf("invalid dismissed_at: %w", err)
	}
	return &rec, nil
}
