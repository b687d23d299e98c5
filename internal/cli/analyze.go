package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/repository/memory"
	"github.com/pratik-mahalle/costengine/internal/services"
	"github.com/pratik-mahalle/costengine/pkg/client"
)

// localEngine runs the analysis services in-process over in-memory registries
type localEngine struct {
	detector    *services.AnomalyDetector
	recommender *services.OptimizationRecommender
	summary     *services.SummaryAggregator
}

func newLocalEngine(log *logger.Logger) *localEngine {
	recs := memory.NewRecommendationRepository()
	return &localEngine{
		detector:    services.NewAnomalyDetector(memory.NewAnomalyRepository(), log, services.EngineOptions{}),
		recommender: services.NewOptimizationRecommender(recs, memory.NewJobRepository(), log, services.EngineOptions{}),
		summary:     services.NewSummaryAggregator(recs, log, services.EngineOptions{}),
	}
}

type analyzeFlags struct {
	costsPath       string
	utilizationPath string
	organizationID  string
	verbose         bool
}

func (f *analyzeFlags) register(cmd *cobra.Command, needUtilization bool) {
	cmd.Flags().StringVar(&f.costsPath, "costs", "", "cost samples file (.json or .yaml)")
	cmd.Flags().StringVar(&f.organizationID, "org", "local", "organization the results are recorded under")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log engine activity to stderr")
	_ = cmd.MarkFlagRequired("costs")
	if needUtilization {
		cmd.Flags().StringVar(&f.utilizationPath, "utilization", "", "resource utilization file (.json or .yaml)")
		_ = cmd.MarkFlagRequired("utilization")
	}
}

func (f *analyzeFlags) logger(errOut io.Writer) *logger.Logger {
	if !f.verbose {
		return logger.Nop()
	}
	return logger.New(logger.Config{Level: "info", Format: "console", Output: errOut})
}

func (f *analyzeFlags) load() ([]cost.CostDataPoint, []cost.ResourceUtilization, error) {
	costs, err := ingest.LoadCosts(f.costsPath)
	if err != nil {
		return nil, nil, err
	}
	if f.utilizationPath == "" {
		return costs, nil, nil
	}
	utilization, err := ingest.LoadUtilization(f.utilizationPath)
	if err != nil {
		return nil, nil, err
	}
	return costs, utilization, nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze local cost files without a server",
		Long: `Run the analysis engine in-process over cost and utilization files.
Results are printed and not persisted.`,
	}

	cmd.AddCommand(newAnalyzeAnomaliesCmd())
	cmd.AddCommand(newAnalyzeOptimizeCmd())
	cmd.AddCommand(newAnalyzeSummaryCmd())

	return cmd
}

func newAnalyzeAnomaliesCmd() *cobra.Command {
	var (
		flags       analyzeFlags
		sensitivity float64
		minAmount   float64
		lookback    int
	)

	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Detect cost anomalies in a cost samples file",
		RunE: func(cmd *cobra.Command, args []string) error {
			costs, _, err := flags.load()
			if err != nil {
				return err
			}

			engine := newLocalEngine(flags.logger(cmd.ErrOrStderr()))
			found, err := engine.detector.DetectAnomalies(cmd.Context(), flags.organizationID, costs, anomaly.Options{
				SensitivityThreshold: sensitivity,
				MinimumAnomalyAmount: minAmount,
				LookbackDays:         lookback,
			})
			if err != nil {
				return err
			}

			var out []client.Anomaly
			if err := toWire(found, &out); err != nil {
				return err
			}
			return renderAnomalies(cmd.OutOrStdout(), out)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().Float64Var(&sensitivity, "sensitivity", anomaly.DefaultSensitivityThreshold, "minimum deviation in standard deviations")
	cmd.Flags().Float64Var(&minAmount, "min-amount", anomaly.DefaultMinimumAnomalyAmount, "minimum absolute deviation")
	cmd.Flags().IntVar(&lookback, "lookback-days", 0, "lookback window recorded with the run")

	return cmd
}

type optimizeFlags struct {
	minSavings float64
	types      []string
	user       string
}

func (f *optimizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minSavings, "min-savings", 0, "drop recommendations saving less than this")
	cmd.Flags().StringSliceVar(&f.types, "types", nil, "only run these analyzers (rightsizing, idle_resource, reserved_instance)")
	cmd.Flags().StringVar(&f.user, "user", "", "user recorded as the job creator")
}

func (f *optimizeFlags) options() recommendation.Options {
	opts := recommendation.Options{
		MinimumSavings: f.minSavings,
		UserID:         currentUser(f.user),
	}
	for _, t := range f.types {
		opts.IncludeTypes = append(opts.IncludeTypes, recommendation.Type(t))
	}
	return opts
}

func runOptimize(ctx context.Context, engine *localEngine, flags *analyzeFlags, opt *optimizeFlags) (*client.AnalyzeResult, error) {
	costs, utilization, err := flags.load()
	if err != nil {
		return nil, err
	}

	j, recs, err := engine.recommender.AnalyzeAndOptimize(ctx, flags.organizationID, costs, utilization, opt.options())
	if err != nil {
		if j != nil {
			return nil, fmt.Errorf("job %s failed: %w", j.ID, err)
		}
		return nil, err
	}

	result := &client.AnalyzeResult{}
	if err := toWire(j, &result.Job); err != nil {
		return nil, err
	}
	if err := toWire(recs, &result.Recommendations); err != nil {
		return nil, err
	}
	return result, nil
}

func newAnalyzeOptimizeCmd() *cobra.Command {
	var (
		flags analyzeFlags
		opt   optimizeFlags
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Propose cost optimizations from cost and utilization files",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := newLocalEngine(flags.logger(cmd.ErrOrStderr()))
			result, err := runOptimize(cmd.Context(), engine, &flags, &opt)
			if err != nil {
				return err
			}
			if isStructured() {
				return printOutput(cmd.OutOrStdout(), result)
			}
			return renderRecommendations(cmd.OutOrStdout(), result.Recommendations)
		},
	}

	flags.register(cmd, true)
	opt.register(cmd)

	return cmd
}

func newAnalyzeSummaryCmd() *cobra.Command {
	var (
		flags analyzeFlags
		opt   optimizeFlags
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Optimize and roll the results up into a savings summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := newLocalEngine(flags.logger(cmd.ErrOrStderr()))
			if _, err := runOptimize(cmd.Context(), engine, &flags, &opt); err != nil {
				return err
			}

			summary, err := engine.summary.GenerateAnalysisSummary(cmd.Context(), flags.organizationID)
			if err != nil {
				return err
			}

			var out client.Summary
			if err := toWire(summary, &out); err != nil {
				return err
			}
			return renderSummary(cmd.OutOrStdout(), &out)
		},
	}

	flags.register(cmd, true)
	opt.register(cmd)

	return cmd
}
