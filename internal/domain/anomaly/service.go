package anomaly

import (
	"context"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// Service defines the interface for anomaly business logic
type Service interface {
	// DetectAnomalies analyzes cost samples and stores any anomalies found
	DetectAnomalies(ctx context.Context, organizationID string, samples []cost.CostDataPoint, opts Options) ([]*CostAnomaly, error)

	// GetAnomalies lists an organization's anomalies
	GetAnomalies(ctx context.Context, organizationID string, filter Filter) ([]*CostAnomaly, error)

	// GetAnomaly retrieves a single anomaly
	GetAnomaly(ctx context.Context, id string) (*CostAnomaly, error)

	// UpdateAnomalyStatus moves an anomaly to a new status
	UpdateAnomalyStatus(ctx context.Context, id string, status Status, update StatusUpdate) (*CostAnomaly, error)

	// GetSummary counts an organization's anomalies by severity
	GetSummary(ctx context.Context, organizationID string) (map[Severity]int, error)
}
