package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/pkg/client"
)

func newAnomalyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "anomalies",
		Aliases: []string{"anomaly"},
		Short:   "Manage cost anomalies on the server",
	}

	cmd.AddCommand(newAnomalyDetectCmd())
	cmd.AddCommand(newAnomalyListCmd())
	cmd.AddCommand(newAnomalyGetCmd())
	cmd.AddCommand(newAnomalyUpdateCmd())
	cmd.AddCommand(newAnomalyResolveCmd())
	cmd.AddCommand(newAnomalySummaryCmd())

	return cmd
}

func newAnomalyDetectCmd() *cobra.Command {
	var (
		org         string
		costsPath   string
		sensitivity float64
		minAmount   float64
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Upload cost samples and detect anomalies",
		RunE: func(cmd *cobra.Command, args []string) error {
			costs, err := ingest.LoadCosts(costsPath)
			if err != nil {
				return err
			}
			req := client.DetectRequest{
				SensitivityThreshold: &sensitivity,
				MinimumAnomalyAmount: &minAmount,
			}
			if err := toWire(costs, &req.Samples); err != nil {
				return err
			}

			found, err := apiClient.Anomalies().Detect(cmd.Context(), org, req)
			if err != nil {
				return err
			}
			return renderAnomalies(cmd.OutOrStdout(), found)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	cmd.Flags().StringVar(&costsPath, "costs", "", "cost samples file (.json or .yaml)")
	cmd.Flags().Float64Var(&sensitivity, "sensitivity", anomaly.DefaultSensitivityThreshold, "minimum deviation in standard deviations")
	cmd.Flags().Float64Var(&minAmount, "min-amount", anomaly.DefaultMinimumAnomalyAmount, "minimum absolute deviation")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("costs")

	return cmd
}

func newAnomalyListCmd() *cobra.Command {
	var (
		org      string
		status   string
		severity string
		resource string
		since    string
		until    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List anomalies",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &client.AnomalyListOptions{
				Status:     status,
				Severity:   severity,
				ResourceID: resource,
				Limit:      limit,
			}
			var err error
			if opts.StartDate, err = parseDateFlag("since", since); err != nil {
				return err
			}
			if opts.EndDate, err = parseDateFlag("until", until); err != nil {
				return err
			}

			anomalies, err := apiClient.Anomalies().List(cmd.Context(), org, opts)
			if err != nil {
				return err
			}
			return renderAnomalies(cmd.OutOrStdout(), anomalies)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (detected, investigating, resolved, false_positive)")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (critical, high, medium, low)")
	cmd.Flags().StringVar(&resource, "resource", "", "filter by resource ID")
	cmd.Flags().StringVar(&since, "since", "", "only anomalies on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "only anomalies on or before this day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of anomalies")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &t, nil
}

func newAnomalyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show anomaly details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Anomalies().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderAnomaly(cmd.OutOrStdout(), a)
		},
	}
}

func newAnomalyUpdateCmd() *cobra.Command {
	var req client.UpdateAnomalyStatusRequest

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Move an anomaly to a new status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Anomalies().UpdateStatus(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return renderAnomaly(cmd.OutOrStdout(), a)
		},
	}

	cmd.Flags().StringVar(&req.Status, "status", "", "new status (detected, investigating, resolved, false_positive)")
	cmd.Flags().StringVar(&req.AssignedTo, "assign", "", "assignee")
	cmd.Flags().StringVar(&req.RootCause, "root-cause", "", "root cause")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newAnomalyResolveCmd() *cobra.Command {
	var (
		user       string
		resolution string
	)

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve an anomaly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Anomalies().Resolve(cmd.Context(), args[0], currentUser(user), resolution)
			if err != nil {
				return err
			}
			if isStructured() {
				return printOutput(cmd.OutOrStdout(), a)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Anomaly %s resolved.\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user recorded as resolver")
	cmd.Flags().StringVar(&resolution, "resolution", "", "how the anomaly was resolved")

	return cmd
}

func newAnomalySummaryCmd() *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count anomalies by severity",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := apiClient.Anomalies().Summary(cmd.Context(), org)
			if err != nil {
				return err
			}
			if isStructured() {
				return printOutput(cmd.OutOrStdout(), summary)
			}

			table := NewTable(cmd.OutOrStdout(), "SEVERITY", "COUNT")
			for _, s := range anomaly.Severities {
				table.AddRow(formatSeverity(string(s)), fmt.Sprintf("%d", summary.BySeverity[string(s)]))
			}
			table.AddRow("TOTAL", fmt.Sprintf("%d", summary.Total))
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}
