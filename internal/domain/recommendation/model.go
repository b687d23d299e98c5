package recommendation

import "time"

// CostOptimizationRecommendation is a proposed cost-reducing change for one resource
type CostOptimizationRecommendation struct {
	ID                       string            `json:"id"`
	OrganizationID           string            `json:"organization_id"`
	JobID                    string            `json:"job_id,omitempty"`
	ResourceID               string            `json:"resource_id"`
	ResourceType             string            `json:"resource_type,omitempty"`
	Type                     Type              `json:"type"`
	Title                    string            `json:"title"`
	Description              string            `json:"description"`
	CurrentConfiguration     map[string]string `json:"current_configuration,omitempty"`
	RecommendedConfiguration map[string]string `json:"recommended_configuration,omitempty"`
	CurrentCost              float64           `json:"current_cost"`
	RecommendedCost          float64           `json:"recommended_cost"`
	SavingsAmount            float64           `json:"savings_amount"`
	SavingsPercentage        float64           `json:"savings_percentage"`
	AnnualSavings            float64           `json:"annual_savings"`
	Currency                 string            `json:"currency"`
	Confidence               Level             `json:"confidence"`
	Effort                   Level             `json:"effort"`
	Impact                   Level             `json:"impact"`
	Status                   Status            `json:"status"`
	Category                 Category          `json:"category"`
	ImplementationSteps      []string          `json:"implementation_steps,omitempty"`
	Justification            string            `json:"justification,omitempty"`
	ImplementedAt            *time.Time        `json:"implemented_at,omitempty"`
	ImplementedBy            string            `json:"implemented_by,omitempty"`
	DismissedAt              *time.Time        `json:"dismissed_at,omitempty"`
	DismissedBy              string            `json:"dismissed_by,omitempty"`
	DismissReason            string            `json:"dismiss_reason,omitempty"`
	Notes                    string            `json:"notes,omitempty"`
	CreatedAt                time.Time         `json:"created_at"`
	UpdatedAt                time.Time         `json:"updated_at"`
}

// MonthsPerYear annualizes savings measured over a monthly analysis window
const MonthsPerYear = 12

// SetCosts records current and recommended cost and derives every savings figure from them
func (r *CostOptimizationRecommendation) SetCosts(current, recommended float64) {
	r.CurrentCost = current
	r.RecommendedCost = recommended
	r.SavingsAmount = current - recommended
	r.SavingsPercentage = 0
	if current != 0 {
		r.SavingsPercentage = r.SavingsAmount * 100 / current
	}
	r.AnnualSavings = r.SavingsAmount * MonthsPerYear
}

// Clone returns a deep copy so registries never hand out shared state
func (r *CostOptimizationRecommendation) Clone() *CostOptimizationRecommendation {
	if r == nil {
		return nil
	}
	c := *r
	c.CurrentConfiguration = cloneMap(r.CurrentConfiguration)
	c.RecommendedConfiguration = cloneMap(r.RecommendedConfiguration)
	if r.ImplementationSteps != nil {
		c.ImplementationSteps = append([]string(nil), r.ImplementationSteps...)
	}
	if r.ImplementedAt != nil {
		t := *r.ImplementedAt
		c.ImplementedAt = &t
	}
	if r.DismissedAt != nil {
		t := *r.DismissedAt
		c.DismissedAt = &t
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Type is the kind of optimization recommended
type Type string

const (
	TypeRightsizing         Type = "rightsizing"
	TypeIdleResource        Type = "idle_resource"
	TypeReservedInstance    Type = "reserved_instance"
	TypeSavingsPlan         Type = "savings_plan"
	TypeSpotInstance        Type = "spot_instance"
	TypeStorageOptimization Type = "storage_optimization"
)

// IsValid reports whether t is a known recommendation type
func (t Type) IsValid() bool {
	switch t {
	case TypeRightsizing, TypeIdleResource, TypeReservedInstance,
		TypeSavingsPlan, TypeSpotInstance, TypeStorageOptimization:
		return true
	}
	return false
}

// Level rates confidence, effort and impact
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// IsValid reports whether l is a known level
func (l Level) IsValid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	}
	return false
}

// Status is a recommendation's position in its lifecycle
type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusImplemented Status = "implemented"
	StatusDismissed   Status = "dismissed"
	StatusExpired     Status = "expired"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusImplemented, StatusDismissed, StatusExpired:
		return true
	}
	return false
}

// IsOpen reports whether savings from a recommendation in this status are still achievable
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// Category groups recommendations for reporting
type Category string

const (
	CategoryRightsizing         Category = "rightsizing"
	CategoryUnusedResources     Category = "unused_resources"
	CategoryReservedInstances   Category = "reserved_instances"
	CategoryStorageOptimization Category = "storage_optimization"
)

// Filter narrows GetRecommendations results. Zero values match everything.
type Filter struct {
	Status     Status
	Type       Type
	ResourceID string
	Limit      int
}

// Matches reports whether r satisfies every set field of f, ignoring Limit
func (f Filter) Matches(r *CostOptimizationRecommendation) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.ResourceID != "" && r.ResourceID != f.ResourceID {
		return false
	}
	return true
}

// StatusUpdate carries the optional fields applied alongside a status change
type StatusUpdate struct {
	// UserID is recorded as implementer or dismisser
	UserID string `json:"user_id,omitempty"`
	Reason string `json:"reason,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Options tune an optimization run
type Options struct {
	MinimumSavings float64 `json:"minimum_savings" validate:"gte=0"`
	// IncludeTypes restricts analyzers; empty means every type
	IncludeTypes []Type `json:"include_types,omitempty"`
	UserID       string `json:"user_id" validate:"required"`
}

// Includes reports whether analyzers of type t should run
func (o Options) Includes(t Type) bool {
	if len(o.IncludeTypes) == 0 {
		return true
	}
	for _, it := range o.IncludeTypes {
		if it == t {
			return true
		}
	}
	return false
}
