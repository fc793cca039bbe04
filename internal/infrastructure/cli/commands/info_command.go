package commands

import (
	"github.com/spf13/cobra"

	"hactl/internal/app"
)

// NewInfoCommand creates the `info` command: a connectivity check that
// reports the hub's API information.
func NewInfoCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show hub version and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := container.Transport.APIInfo(cmd.Context())
			if err != nil {
				return err
			}
			return renderer(cmd, output).RenderInfo(info)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}
