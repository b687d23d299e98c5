package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

const anomalyColumns = `id, organization_id, resource_id, resource_type, service_type, region, account_id, currency,
	detected_at, start_date, end_date, expected_cost, actual_cost, deviation, deviation_percentage, deviation_std_devs,
	severity, status, anomaly_type, assigned_to, root_cause, notes, resolved_at, resolved_by, resolution, created_at, updated_at`

// AnomalyRepository stores anomalies in the cost_anomalies table
type AnomalyRepository struct {
	db *DB
}

// NewAnomalyRepository creates a SQL-backed anomaly repository
func NewAnomalyRepository(db *DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

func (r *AnomalyRepository) Create(ctx context.Context, a *anomaly.CostAnomaly) error {
	defer observe("insert", "cost_anomalies", time.Now())
	return r.insert(ctx, r.db, a)
}

// CreateMany inserts anomalies in one transaction
func (r *AnomalyRepository) CreateMany(ctx context.Context, anomalies []*anomaly.CostAnomaly) error {
	if len(anomalies) == 0 {
		return nil
	}
	defer observe("insert_batch", "cost_anomalies", time.Now())

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range anomalies {
			if err := r.insert(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AnomalyRepository) insert(ctx context.Context, ex execer, a *anomaly.CostAnomaly) error {
	query := r.db.Rebind(`INSERT INTO cost_anomalies (` + anomalyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := ex.ExecContext(ctx, query,
		a.ID, a.OrganizationID, a.ResourceID, a.ResourceType, a.ServiceType, a.Region, a.AccountID, a.Currency,
		formatTime(a.DetectedAt), formatTime(a.StartDate), formatTime(a.EndDate),
		a.ExpectedCost, a.ActualCost, a.Deviation, a.DeviationPercentage, a.DeviationStdDevs,
		a.Severity, a.Status, a.AnomalyType, a.AssignedTo, a.RootCause, a.Notes,
		formatNullTime(a.ResolvedAt), a.ResolvedBy, a.Resolution,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create anomaly", err)
	}
	return nil
}

func (r *AnomalyRepository) GetByID(ctx context.Context, id string) (*anomaly.CostAnomaly, error) {
	defer observe("select", "cost_anomalies", time.Now())

	query := r.db.Rebind(`SELECT ` + anomalyColumns + ` FROM cost_anomalies WHERE id = ?`)
	a, err := scanAnomaly(r.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("Anomaly", id)
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get anomaly", err)
	}
	return a, nil
}

func (r *AnomalyRepository) Update(ctx context.Context, a *anomaly.CostAnomaly) error {
	defer observe("update", "cost_anomalies", time.Now())

	query := r.db.Rebind(`UPDATE cost_anomalies SET status = ?, assigned_to = ?, root_cause = ?, notes = ?,
		resolved_at = ?, resolved_by = ?, resolution = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		a.Status, a.AssignedTo, a.RootCause, a.Notes,
		formatNullTime(a.ResolvedAt), a.ResolvedBy, a.Resolution, formatTime(a.UpdatedAt), a.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update anomaly", err)
	}

	return updatedOne(result, "Anomaly", a.ID)
}

func (r *AnomalyRepository) List(ctx context.Context, organizationID string, filter anomaly.Filter) ([]*anomaly.CostAnomaly, error) {
	defer observe("select", "cost_anomalies", time.Now())

	where := []string{"organization_id = ?"}
	args := []interface{}{organizationID}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, filter.Severity)
	}
	if filter.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.StartDate != nil {
		where = append(where, "start_date >= ?")
		args = append(args, formatTime(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "end_date <= ?")
		args = append(args, formatTime(*filter.EndDate))
	}

	query := fmt.Sprintf(`SELECT %s FROM cost_anomalies WHERE %s ORDER BY detected_at DESC, start_date DESC, id ASC`,
		anomalyColumns, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list anomalies", err)
	}
	defer rows.Close()

	anomalies := make([]*anomaly.CostAnomaly, 0)
	for rows.Next() {
		a, err := scanAnomaly(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan anomaly", err)
		}
		anomalies = append(anomalies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list anomalies", err)
	}
	return anomalies, nil
}

func (r *AnomalyRepository) CountBySeverity(ctx context.Context, organizationID string) (map[anomaly.Severity]int, error) {
	defer observe("select", "cost_anomalies", time.Now())

	query := r.db.Rebind(`SELECT severity, COUNT(*) FROM cost_anomalies WHERE organization_id = ? GROUP BY severity`)
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count anomalies", err)
	}
	defer rows.Close()

	counts := make(map[anomaly.Severity]int, len(anomaly.Severities))
	for _, s := range anomaly.Severities {
		counts[s] = 0
	}
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan anomaly count", err)
		}
		counts[anomaly.Severity(severity)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to count anomalies", err)
	}
	return counts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnomaly(row rowScanner) (*anomaly.CostAnomaly, error) {
	var a anomaly.CostAnomaly
	var detectedAt, startDate, endDate, createdAt, updatedAt string
	var resolvedAt sql.NullString

	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.ResourceID, &a.ResourceType, &a.ServiceType, &a.Region, &a.AccountID, &a.Currency,
		&detectedAt, &startDate, &endDate,
		&a.ExpectedCost, &a.ActualCost, &a.Deviation, &a.DeviationPercentage, &a.DeviationStdDevs,
		&a.Severity, &a.Status, &a.AnomalyType, &a.AssignedTo, &a.RootCause, &a.Notes,
		&resolvedAt, &a.ResolvedBy, &a.Resolution, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&a.DetectedAt, detectedAt},
		{&a.StartDate, startDate},
		{&a.EndDate, endDate},
		{&a.CreatedAt, createdAt},
		{&a.UpdatedAt, updatedAt},
	} {
		if *f.dst, err = parseTime(f.src); err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", f.src, err)
		}
	}
	if a.ResolvedAt, err = parseNullTime(resolvedAt); err != nil {
		return nil, fmt.Errorf("invalid resolved_at: %w", err)
	}
	return &a, nil
}
