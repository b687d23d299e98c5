package anomaly

import "context"

// Repository defines the interface for anomaly data access
type Repository interface {
	// Create inserts a new anomaly keyed by its ID
	Create(ctx context.Context, a *CostAnomaly) error

	// CreateMany inserts all anomalies or none of them
	CreateMany(ctx context.Context, anomalies []*CostAnomaly) error

	// GetByID retrieves an anomaly by ID
	GetByID(ctx context.Context, id string) (*CostAnomaly, error)

	// Update replaces a stored anomaly
	Update(ctx context.Context, a *CostAnomaly) error

	// List returns an organization's anomalies matching filter, newest detection first
	List(ctx context.Context, organizationID string, filter Filter) ([]*CostAnomaly, error)

	// CountBySeverity counts an organization's anomalies by severity
	CountBySeverity(ctx context.Context, organizationID string) (map[Severity]int, error)
}
