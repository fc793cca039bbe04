package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hactl/internal/app"
)

// NewContextCommand creates the `context` command group for the follow-up
// command state.
func NewContextCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect or clear the follow-up command context",
	}

	var output string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current context record",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, state, err := container.Contexts.Current()
			if err != nil {
				return err
			}
			return renderer(cmd, output).RenderContext(rec, state)
		},
	}
	show.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Forget the previous command's targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Contexts.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgContextCleared)
			return nil
		},
	}

	cmd.AddCommand(show, clear)
	return cmd
}
