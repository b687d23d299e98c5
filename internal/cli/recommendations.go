package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/pkg/client"
)

func newRecommendationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recommendation", "rec"},
		Short:   "Manage cost optimization recommendations on the server",
	}

	cmd.AddCommand(newRecAnalyzeCmd())
	cmd.AddCommand(newRecListCmd())
	cmd.AddCommand(newRecGetCmd())
	cmd.AddCommand(newRecStartCmd())
	cmd.AddCommand(newRecImplementCmd())
	cmd.AddCommand(newRecDismissCmd())
	cmd.AddCommand(newRecSavingsCmd())

	return cmd
}

func newRecAnalyzeCmd() *cobra.Command {
	var (
		org             string
		costsPath       string
		utilizationPath string
		opt             optimizeFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Upload cost and utilization data and generate recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			costs, err := ingest.LoadCosts(costsPath)
			if err != nil {
				return err
			}
			utilization, err := ingest.LoadUtilization(utilizationPath)
			if err != nil {
				return err
			}

			opts := opt.options()
			req := client.AnalyzeRequest{
				MinimumSavings: opts.MinimumSavings,
				UserID:         opts.UserID,
			}
			for _, t := range opts.IncludeTypes {
				req.IncludeTypes = append(req.IncludeTypes, string(t))
			}
			if err := toWire(costs, &req.Costs); err != nil {
				return err
			}
			if err := toWire(utilization, &req.Utilization); err != nil {
				return err
			}

			result, err := apiClient.Recommendations().Analyze(cmd.Context(), org, req)
			if err != nil {
				return err
			}
			if isStructured() {
				return printOutput(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s %s\n\n", result.Job.ID, result.Job.Status)
			return renderRecommendations(cmd.OutOrStdout(), result.Recommendations)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	cmd.Flags().StringVar(&costsPath, "costs", "", "cost samples file (.json or .yaml)")
	cmd.Flags().StringVar(&utilizationPath, "utilization", "", "resource utilization file (.json or .yaml)")
	opt.register(cmd)
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("costs")
	_ = cmd.MarkFlagRequired("utilization")

	return cmd
}

func newRecListCmd() *cobra.Command {
	var (
		org      string
		status   string
		recType  string
		resource string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recommendations, largest savings first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := apiClient.Recommendations().List(cmd.Context(), org, &client.RecommendationListOptions{
				Status:     status,
				Type:       recType,
				ResourceID: resource,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			return renderRecommendations(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, in_progress, implemented, dismissed, expired)")
	cmd.Flags().StringVar(&recType, "type", "", "filter by type")
	cmd.Flags().StringVar(&resource, "resource", "", "filter by resource ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of recommendations")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func newRecGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show recommendation details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.Recommendations().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderRecommendation(cmd.OutOrStdout(), rec)
		},
	}
}

func newRecStartCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Mark a recommendation as in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.Recommendations().UpdateStatus(cmd.Context(), args[0], client.UpdateRecommendationStatusRequest{
				Status: "in_progress",
				Notes:  notes,
			})
			if err != nil {
				return err
			}
			return reportRecStatus(cmd, rec)
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	return cmd
}

func newRecImplementCmd() *cobra.Command {
	var (
		user  string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "implement <id>",
		Short: "Mark a recommendation as implemented",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.Recommendations().Implement(cmd.Context(), args[0], currentUser(user), notes)
			if err != nil {
				return err
			}
			return reportRecStatus(cmd, rec)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user recorded as implementer")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	return cmd
}

func newRecDismissCmd() *cobra.Command {
	var (
		user   string
		reason string
	)

	cmd := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss a recommendation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.Recommendations().Dismiss(cmd.Context(), args[0], currentUser(user), reason)
			if err != nil {
				return err
			}
			return reportRecStatus(cmd, rec)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user recorded as dismisser")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for dismissal")
	return cmd
}

func reportRecStatus(cmd *cobra.Command, rec *client.Recommendation) error {
	if isStructured() {
		return printOutput(cmd.OutOrStdout(), rec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recommendation %s is now %s.\n", rec.ID, rec.Status)
	return nil
}

func newRecSavingsCmd() *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Show savings still available from open recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			savings, err := apiClient.Recommendations().TotalSavings(cmd.Context(), org)
			if err != nil {
				return err
			}
			if isStructured() {
				return printOutput(cmd.OutOrStdout(), savings)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Monthly: %s\nAnnual:  %s\n", formatMoney(savings.TotalSavings), formatMoney(savings.AnnualSavings))
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
