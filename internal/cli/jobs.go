package cli

import (
	"github.com/spf13/cobra"
)

func newJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Inspect optimization jobs",
	}

	cmd.AddCommand(newJobListCmd())
	cmd.AddCommand(newJobGetCmd())

	return cmd
}

func newJobListCmd() *cobra.Command {
	var (
		org   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List optimization jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := apiClient.Jobs().List(cmd.Context(), org, limit)
			if err != nil {
				return err
			}
			return renderJobs(cmd.OutOrStdout(), jobs)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of jobs")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func newJobGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := apiClient.Jobs().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderJob(cmd.OutOrStdout(), j)
		},
	}
}
