package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.nabs.build/nabs/internal/adapters/output"
)

func (c *CLI) newChangedCmd() *cobra.Command {
	var since string
	var format string

	cmd := &cobra.Command{
		Use:   "changed",
		Short: "List projects transitively affected by changes since a git ref",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := c.app.Changed(cmd.Context(), since)
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(resolveFormat(format))
			if err != nil {
				return err
			}
			return formatter.Format(cmd.OutOrStdout(), projects)
		},
	}

	cmd.Flags().StringVar(&since, "since", "HEAD", "git ref to diff against")
	cmd.Flags().StringVar(&format, "format", "auto", "output format: auto|plain|table|json|ndjson")

	return cmd
}

// resolveFormat turns "auto" into plain for an interactive terminal, json
// otherwise; every other value passes through unchanged to
// output.NewFormatter, which rejects unimplemented shapes explicitly.
func resolveFormat(f string) output.Format {
	if f != "auto" {
		return output.Format(f)
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return output.FormatPlain
	}
	return output.FormatJSON
}
