package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show an organization's savings summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := apiClient.Summary(cmd.Context(), org)
			if err != nil {
				return err
			}
			return renderSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := apiClient.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}
			if isStructured() {
				return printOutput(cmd.OutOrStdout(), health)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server: %s\n", formatStatus(health.Status))
			return nil
		},
	}
}
