package anomaly

import "time"

// CostAnomaly is a day on which a resource's spend deviated from its own baseline
type CostAnomaly struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organization_id"`
	ResourceID          string     `json:"resource_id"`
	ResourceType        string     `json:"resource_type,omitempty"`
	ServiceType         string     `json:"service_type,omitempty"`
	Region              string     `json:"region,omitempty"`
	AccountID           string     `json:"account_id,omitempty"`
	Currency            string     `json:"currency"`
	DetectedAt          time.Time  `json:"detected_at"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             time.Time  `json:"end_date"`
	ExpectedCost        float64    `json:"expected_cost"`
	ActualCost          float64    `json:"actual_cost"`
	Deviation           float64    `json:"deviation"`
	DeviationPercentage float64    `json:"deviation_percentage"`
	DeviationStdDevs    float64    `json:"deviation_std_devs"`
	Severity            Severity   `json:"severity"`
	Status              Status     `json:"status"`
	AnomalyType         Type       `json:"anomaly_type"`
	AssignedTo          string     `json:"assigned_to,omitempty"`
	RootCause           string     `json:"root_cause,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy          string     `json:"resolved_by,omitempty"`
	Resolution          string     `json:"resolution,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so registries never hand out shared state
func (a *CostAnomaly) Clone() *CostAnomaly {
	if a == nil {
		return nil
	}
	c := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

// Severity classifies how far a day deviated from its baseline
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every severity, most severe first
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// IsValid reports whether s is a known severity
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// SeverityForDeviation maps a deviation expressed in standard deviations onto a severity
func SeverityForDeviation(stdDevs float64) Severity {
	switch {
	case stdDevs >= 4:
		return SeverityCritical
	case stdDevs >= 3:
		return SeverityHigh
	case stdDevs >= 2.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Status is an anomaly's position in its investigation lifecycle
type Status string

const (
	StatusDetected      Status = "detected"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusFalsePositive Status = "false_positive"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDetected, StatusInvestigating, StatusResolved, StatusFalsePositive:
		return true
	}
	return false
}

// Type describes the shape of the deviation
type Type string

const (
	TypeSpike      Type = "spike"
	TypeTrend      Type = "trend"
	TypeRecurring  Type = "recurring"
	TypeStepChange Type = "step_change"
)

// IsValid reports whether t is a known anomaly type
func (t Type) IsValid() bool {
	switch t {
	case TypeSpike, TypeTrend, TypeRecurring, TypeStepChange:
		return true
	}
	return false
}

// ClassifyShape labels a deviation by how far actual spend overshot the baseline
func ClassifyShape(actual, expected float64) Type {
	switch {
	case actual > 2*expected:
		return TypeSpike
	case actual > 1.5*expected:
		return TypeStepChange
	default:
		return TypeTrend
	}
}

// Filter narrows GetAnomalies results. Zero values match everything.
type Filter struct {
	Status     Status
	Severity   Severity
	ResourceID string
	// StartDate and EndDate bound the anomaly day, inclusive
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Matches reports whether a satisfies every set field of f, ignoring Limit
func (f Filter) Matches(a *CostAnomaly) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.ResourceID != "" && a.ResourceID != f.ResourceID {
		return false
	}
	if f.StartDate != nil && a.StartDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && a.EndDate.After(*f.EndDate) {
		return false
	}
	return true
}

// StatusUpdate carries the optional fields applied alongside a status change
type StatusUpdate struct {
	AssignedTo string `json:"assigned_to,omitempty"`
	RootCause  string `json:"root_cause,omitempty"`
	Notes      string `json:"notes,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// Options tune a detection run. Fields are used as given, so callers start from
// DefaultOptions; a zero MinimumAnomalyAmount disables the amount gate.
type Options struct {
	// SensitivityThreshold is the minimum deviation in standard deviations
	SensitivityThreshold float64 `json:"sensitivity_threshold" validate:"gte=0"`
	// MinimumAnomalyAmount is the minimum absolute deviation in currency units
	MinimumAnomalyAmount float64 `json:"minimum_anomaly_amount" validate:"gte=0"`
	// LookbackDays is recorded but not enforced against sample age
	LookbackDays int `json:"lookback_days" validate:"gte=0"`
}

// Detection defaults
const (
	DefaultSensitivityThreshold = 2.0
	DefaultMinimumAnomalyAmount = 100.0
	DefaultLookbackDays         = 30

	// MinimumSamples and MinimumDays gate whether a resource carries enough signal
	MinimumSamples = 7
	MinimumDays    = 7
	// RecentDays is how many trailing days are tested against the baseline
	RecentDays = 3
)

// DefaultOptions returns the detection defaults
func DefaultOptions() Options {
	return Options{
		SensitivityThreshold: DefaultSensitivityThreshold,
		MinimumAnomalyAmount: DefaultMinimumAnomalyAmount,
		LookbackDays:         DefaultLookbackDays,
	}
}
