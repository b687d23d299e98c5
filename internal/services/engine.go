package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/costengine/internal/domain/analysis"
)

// EngineOptions carries behavior switches shared by the analysis services
type EngineOptions struct {
	// StrictTransitions rejects status changes outside the lifecycle tables
	StrictTransitions bool
	// ReportingWindow is the display period attached to summaries
	ReportingWindow time.Duration
	// Now overrides the clock, mainly for tests
	Now func() time.Time
	// NewID overrides identifier generation, mainly for tests
	NewID func() string
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.ReportingWindow <= 0 {
		o.ReportingWindow = analysis.DefaultReportingWindow
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}
