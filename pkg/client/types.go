package client

import "time"

// CostDataPoint is one billed-cost observation sent for analysis
type CostDataPoint struct {
	Timestamp    time.Time         `json:"timestamp"`
	Amount       float64           `json:"amount"`
	Currency     string            `json:"currency,omitempty"`
	ResourceID   string            `json:"resource_id"`
	ResourceType string            `json:"resource_type,omitempty"`
	ServiceType  string            `json:"service_type,omitempty"`
	ProviderType string            `json:"provider_type,omitempty"` // aws, gcp, azure
	Region       string            `json:"region,omitempty"`
	AccountID    string            `json:"account_id,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// MetricStats summarizes one utilization metric, in percent
type MetricStats struct {
	Average float64 `json:"average"`
	Peak    float64 `json:"peak"`
	P95     float64 `json:"p95"`
}

// NetworkStats holds average network throughput
type NetworkStats struct {
	InboundAverage  float64 `json:"inbound_average"`
	OutboundAverage float64 `json:"outbound_average"`
}

// ResourceUtilization summarizes a resource's usage over a window
type ResourceUtilization struct {
	ResourceID   string        `json:"resource_id"`
	ResourceType string        `json:"resource_type,omitempty"`
	CPU          *MetricStats  `json:"cpu,omitempty"`
	Memory       *MetricStats  `json:"memory,omitempty"`
	Disk         *MetricStats  `json:"disk,omitempty"`
	Network      *NetworkStats `json:"network,omitempty"`
	PeriodStart  time.Time     `json:"period_start"`
	PeriodEnd    time.Time     `json:"period_end"`
	SampleCount  int           `json:"sample_count"`
}

// Anomaly represents a detected cost anomaly
type Anomaly struct {
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
	Severity            string     `json:"severity"`     // critical, high, medium, low
	Status              string     `json:"status"`       // detected, investigating, resolved, false_positive
	AnomalyType         string     `json:"anomaly_type"` // spike, trend, recurring, step_change
	AssignedTo          string     `json:"assigned_to,omitempty"`
	RootCause           string     `json:"root_cause,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy          string     `json:"resolved_by,omitempty"`
	Resolution          string     `json:"resolution,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Recommendation represents a cost optimization recommendation
type Recommendation struct {
	ID                       string            `json:"id"`
	OrganizationID           string            `json:"organization_id"`
	JobID                    string            `json:"job_id,omitempty"`
	ResourceID               string            `json:"resource_id"`
	ResourceType             string            `json:"resource_type,omitempty"`
	Type                     string            `json:"type"` // rightsizing, idle_resource, reserved_instance, ...
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
	Confidence               string            `json:"confidence"`
	Effort                   string            `json:"effort"`
	Impact                   string            `json:"impact"`
	Status                   string            `json:"status"` // pending, in_progress, implemented, dismissed, expired
	Category                 string            `json:"category"`
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

// Job represents one optimization run
type Job struct {
	ID                       string     `json:"id"`
	OrganizationID           string     `json:"organization_id"`
	Status                   string     `json:"status"` // running, completed, failed
	StartedAt                time.Time  `json:"started_at"`
	CompletedAt              *time.Time `json:"completed_at,omitempty"`
	ResourcesAnalyzed        int        `json:"resources_analyzed"`
	RecommendationsGenerated int        `json:"recommendations_generated"`
	PotentialSavings         float64    `json:"potential_savings"`
	CreatedBy                string     `json:"created_by"`
	ErrorMessage             string     `json:"error_message,omitempty"`
}

// WastefulResource ranks one resource by recoverable spend
type WastefulResource struct {
	ResourceID       string  `json:"resource_id"`
	ResourceType     string  `json:"resource_type,omitempty"`
	CurrentCost      float64 `json:"current_cost"`
	WastedCost       float64 `json:"wasted_cost"`
	WastedPercentage float64 `json:"wasted_percentage"`
}

// Summary is an organization-level savings rollup
type Summary struct {
	OrganizationID       string             `json:"organization_id"`
	PeriodStart          time.Time          `json:"period_start"`
	PeriodEnd            time.Time          `json:"period_end"`
	TotalCost            float64            `json:"total_cost"`
	PotentialSavings     float64            `json:"potential_savings"`
	SavingsPercentage    float64            `json:"savings_percentage"`
	SavingsByCategory    map[string]float64 `json:"savings_by_category"`
	SavingsByType        map[string]float64 `json:"savings_by_type"`
	SavingsByConfidence  map[string]float64 `json:"savings_by_confidence"`
	TopWastefulResources []WastefulResource `json:"top_wasteful_resources"`
	RecommendationCount  int                `json:"recommendation_count"`
	GeneratedAt          time.Time          `json:"generated_at"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}
