package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the workspace's project and task dependency edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.app.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := g.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ref := range g.Projects() {
				info, _ := g.GetProject(ref)
				for _, dep := range info.Dependencies {
					fmt.Fprintf(out, "%s -> %s\n", ref.String(), dep.String())
				}
			}
			for _, ref := range g.TopsortTasks() {
				for _, dep := range g.DirectTaskDependencies(ref) {
					fmt.Fprintf(out, "%s -> %s\n", ref.String(), dep.String())
				}
			}
			return nil
		},
	}
}
