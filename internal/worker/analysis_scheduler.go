package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/metrics"
)

// RunReport summarizes one scheduled pass over every organization
type RunReport struct {
	StartedAt       time.Time
	Duration        time.Duration
	Organizations   int
	Failed          int
	Anomalies       int
	Recommendations int
}

// AnalysisScheduler periodically runs anomaly detection and optimization for every
// organization a source knows about
type AnalysisScheduler struct {
	source       ingest.Source
	detector     anomaly.Service
	recommender  recommendation.Service
	detectOpts   anomaly.Options
	optimizeOpts recommendation.Options
	schedule     string
	logger       *logger.Logger

	runningMutex sync.Mutex
	scheduler    *cron.Cron
	isRunning    bool
}

// NewAnalysisScheduler creates a new analysis scheduler worker
func NewAnalysisScheduler(
	source ingest.Source,
	detector anomaly.Service,
	recommender recommendation.Service,
	detectOpts anomaly.Options,
	optimizeOpts recommendation.Options,
	schedule string,
	log *logger.Logger,
) *AnalysisScheduler {
	return &AnalysisScheduler{
		source:       source,
		detector:     detector,
		recommender:  recommender,
		detectOpts:   detectOpts,
		optimizeOpts: optimizeOpts,
		schedule:     schedule,
		logger:       log,
	}
}

// Start registers the cron entry and starts the scheduler
func (s *AnalysisScheduler) Start() error {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}

	c.Start()
	s.scheduler = c
	s.isRunning = true

	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
	}).Info("Analysis scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running pass to finish or ctx to expire
func (s *AnalysisScheduler) Stop(ctx context.Context) error {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	if !s.isRunning {
		return nil
	}

	done := s.scheduler.Stop()
	s.isRunning = false

	select {
	case <-done.Done():
		s.logger.Info("Analysis scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *AnalysisScheduler) IsRunning() bool {
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()
	return s.isRunning
}

// RunOnce analyzes every organization sequentially. A failing organization is logged
// and counted; the pass continues with the next one.
func (s *AnalysisScheduler) RunOnce(ctx context.Context) RunReport {
	report := RunReport{StartedAt: time.Now()}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	orgs, err := s.source.Organizations(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list organizations for scheduled analysis")
		metrics.RecordScheduledRun("failed")
		return report
	}

	for _, org := range orgs {
		if ctx.Err() != nil {
			break
		}
		report.Organizations++

		anomalies, recs, err := s.analyzeOrganization(ctx, org)
		report.Anomalies += anomalies
		report.Recommendations += recs
		if err != nil {
			report.Failed++
			s.logger.WithOrganization(org).ErrorWithErr(err, "Scheduled analysis failed")
		}
	}

	status := "success"
	if report.Failed > 0 {
		status = "failed"
	}
	metrics.RecordScheduledRun(status)

	s.logger.WithFields(map[string]interface{}{
		"organizations":   report.Organizations,
		"failed":          report.Failed,
		"anomalies":       report.Anomalies,
		"recommendations": report.Recommendations,
	}).Info("Completed scheduled analysis")

	return report
}

func (s *AnalysisScheduler) analyzeOrganization(ctx context.Context, organizationID string) (int, int, error) {
	ds, err := s.source.Load(ctx, organizationID)
	if err != nil {
		return 0, 0, err
	}

	found, err := s.detector.DetectAnomalies(ctx, organizationID, ds.Costs, s.detectOpts)
	if err != nil {
		return 0, 0, fmt.Errorf("anomaly detection: %w", err)
	}

	if len(ds.Utilization) == 0 {
		return len(found), 0, nil
	}

	_, recs, err := s.recommender.AnalyzeAndOptimize(ctx, organizationID, ds.Costs, ds.Utilization, s.optimizeOpts)
	if err != nil {
		return len(found), 0, fmt.Errorf("optimization: %w", err)
	}
	return len(found), len(recs), nil
}
