package commands

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.nabs.build/nabs/internal/app"
	"go.nabs.build/nabs/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var filterValues []string
	var since string

	cmd := &cobra.Command{
		Use:   "run [task]...",
		Short: "Run tasks across the workspace",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.app.Run(cmd.Context(), args, app.RunOptions{
				Filter:      parseFilter(filterValues),
				Since:       since,
				Parallelism: runtime.NumCPU(),
			})
			for _, res := range results {
				reportResult(cmd, res)
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&filterValues, "filter", nil, "restrict the run to matching projects (repeatable)")
	cmd.Flags().StringVar(&since, "since", "", "use the git-diff oracle against this ref instead of the hash oracle")

	return cmd
}

func reportResult(cmd *cobra.Command, res domain.TaskResult) {
	switch res.Outcome {
	case domain.OutcomeSuccessful:
		cmd.PrintErrln(res.Task.String(), "ran")
	case domain.OutcomeSkipped:
		cmd.PrintErrln(res.Task.String(), "skipped")
	case domain.OutcomeFailed:
		cmd.PrintErrln(res.Task.String(), "failed:", res.Err)
	}
}
