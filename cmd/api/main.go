package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pratik-mahalle/costengine/internal/api/handlers"
	"github.com/pratik-mahalle/costengine/internal/api/middleware"
	"github.com/pratik-mahalle/costengine/internal/api/router"
	"github.com/pratik-mahalle/costengine/internal/config"
	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/job"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
	"github.com/pratik-mahalle/costengine/internal/providers"
	"github.com/pratik-mahalle/costengine/internal/repository/memory"
	"github.com/pratik-mahalle/costengine/internal/repository/postgres"
	"github.com/pratik-mahalle/costengine/internal/services"
	"github.com/pratik-mahalle/costengine/internal/worker"
	"github.com/pratik-mahalle/costengine/migrations"
)

type repositories struct {
	anomalies       anomaly.Repository
	recommendations recommendation.Repository
	jobs            job.Repository
	db              *postgres.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Level: "error", Format: "json"}).FatalWithErr(err, "Failed to load config")
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.SetGlobal(log)

	repos, err := openRepositories(cfg.Database, log)
	if err != nil {
		log.FatalWithErr(err, "Failed to initialize storage")
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	engineOpts := services.EngineOptions{
		StrictTransitions: cfg.Engine.StrictTransitions,
		ReportingWindow:   cfg.Engine.ReportingWindow,
	}
	detector := services.NewAnomalyDetector(repos.anomalies, log, engineOpts)
	recommender := services.NewOptimizationRecommender(repos.recommendations, repos.jobs, log, engineOpts)
	summary := services.NewSummaryAggregator(repos.recommendations, log, engineOpts)

	val := validator.New()
	var pinger handlers.Pinger
	if repos.db != nil {
		pinger = repos.db
	}
	h := &router.Handlers{
		Health:         handlers.NewHealthHandler(pinger, cfg.Database.Driver, log),
		Anomaly:        handlers.NewAnomalyHandler(detector, log, val),
		Recommendation: handlers.NewRecommendationHandler(recommender, log, val),
		Job:            handlers.NewJobHandler(recommender, log),
		Summary:        handlers.NewSummaryHandler(summary, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		go limiter.Run(ctx)
	}

	var scheduler *worker.AnalysisScheduler
	if cfg.Scheduler.Enabled {
		source, err := buildSource(ctx, cfg, log)
		if err != nil {
			log.FatalWithErr(err, "Failed to initialize cost source")
		}
		scheduler = worker.NewAnalysisScheduler(
			source,
			detector,
			recommender,
			anomaly.Options{
				SensitivityThreshold: cfg.Engine.SensitivityThreshold,
				MinimumAnomalyAmount: cfg.Engine.MinimumAnomalyAmount,
				LookbackDays:         cfg.Engine.LookbackDays,
			},
			recommendation.Options{
				MinimumSavings: cfg.Engine.MinimumSavings,
				UserID:         cfg.Scheduler.UserID,
			},
			cfg.Scheduler.Schedule,
			log,
		)
		if err := scheduler.Start(); err != nil {
			log.FatalWithErr(err, "Failed to start analysis scheduler")
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router.New(cfg, log, h, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"address":     srv.Addr,
			"store":       cfg.Database.Driver,
			"environment": cfg.Server.Environment,
		}).Info("Starting cost engine API")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.FatalWithErr(err, "Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.ErrorWithErr(err, "Analysis scheduler did not stop cleanly")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Server shutdown failed")
	}
	log.Info("Server stopped")
}

// buildSource picks where scheduled runs read cost data from. Cloud billing
// sources take utilization from the data directory when one exists for the organization.
func buildSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (ingest.Source, error) {
	dir := ingest.NewDirSource(cfg.Scheduler.DataDir)
	in := cfg.Ingest

	var fetcher providers.CostFetcher
	switch in.Provider {
	case "", "dir":
		return dir, nil
	case "aws":
		f, err := providers.NewAWSCostFetcher(ctx, providers.AWSCredentials{
			AccessKeyID:     in.AWS.AccessKeyID,
			SecretAccessKey: in.AWS.SecretAccessKey,
			Region:          in.AWS.Region,
		})
		if err != nil {
			return nil, err
		}
		fetcher = f
	case "gcp":
		fetcher = providers.NewGCPCostFetcher(providers.GCPBillingCredentials{
			ProjectID:          in.GCP.ProjectID,
			ServiceAccountJSON: in.GCP.ServiceAccountJSON,
			BillingTable:       in.GCP.BillingTable,
		})
	case "azure":
		f, err := providers.NewAzureCostFetcher(providers.AzureCredentials{
			TenantID:       in.Azure.TenantID,
			ClientID:       in.Azure.ClientID,
			ClientSecret:   in.Azure.ClientSecret,
			SubscriptionID: in.Azure.SubscriptionID,
		})
		if err != nil {
			return nil, err
		}
		fetcher = f
	default:
		return nil, fmt.Errorf("unsupported ingest provider: %s", in.Provider)
	}

	var utilization ingest.Source
	if info, err := os.Stat(filepath.Join(cfg.Scheduler.DataDir, in.OrganizationID)); err == nil && info.IsDir() {
		utilization = dir
	}

	log.WithFields(map[string]interface{}{
		"provider":        in.Provider,
		"organization_id": in.OrganizationID,
		"utilization":     utilization != nil,
	}).Info("Scheduled analysis reads billing data from cloud provider")

	return providers.NewSource(in.OrganizationID, in.Window, utilization, log, fetcher), nil
}

func openRepositories(cfg config.DatabaseConfig, log *logger.Logger) (*repositories, error) {
	if cfg.Driver == "memory" {
		return &repositories{
			anomalies:       memory.NewAnomalyRepository(),
			recommendations: memory.NewRecommendationRepository(),
			jobs:            memory.NewJobRepository(),
		}, nil
	}

	db, err := postgres.New(cfg)
	if err != nil {
		return nil, err
	}

	applied, err := postgres.RunMigrations(db, migrations.Files)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(applied) > 0 {
		log.WithFields(map[string]interface{}{"migrations": applied}).Info("Applied database migrations")
	}

	return &repositories{
		anomalies:       postgres.NewAnomalyRepository(db),
		recommendations: postgres.NewRecommendationRepository(db),
		jobs:            postgres.NewJobRepository(db),
		db:              db,
	}, nil
}
