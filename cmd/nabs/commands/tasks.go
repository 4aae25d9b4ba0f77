package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List every task in the workspace, in dependency order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.app.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := g.Validate(); err != nil {
				return err
			}
			for _, ref := range g.TopsortTasks() {
				fmt.Fprintln(cmd.OutOrStdout(), ref.String())
			}
			return nil
		},
	}
}
