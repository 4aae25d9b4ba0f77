package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List every project in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.app.Load(cmd.Context())
			if err != nil {
				return err
			}
			for _, ref := range g.Projects() {
				info, _ := g.GetProject(ref)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", info.DisplayName, ref.String())
			}
			return nil
		},
	}
}
