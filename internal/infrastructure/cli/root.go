// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"hactl/internal/app"
	"hactl/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. A bare utterance routes to the
// `do` command, so `hactl turn on the kitchen light` just works.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	renderer := NewRendererFactory(container)
	doCmd := commands.NewDoCommand(container, renderer)

	root := &cobra.Command{
		Use:   "hactl [utterance]",
		Short: "hactl - natural language control for Home Assistant",
		Long:  "hactl resolves natural language commands against your Home Assistant registry and dispatches them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			doCmd.SetArgs(args)
			return doCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(doCmd)
	root.AddCommand(commands.NewEntityCommand(container, renderer))
	root.AddCommand(commands.NewServiceCommand(container, renderer))
	root.AddCommand(commands.NewAreaCommand(container, renderer))
	root.AddCommand(commands.NewDeviceCommand(container, renderer))
	root.AddCommand(commands.NewLabelCommand(container, renderer))
	root.AddCommand(commands.NewCacheCommand(container, renderer))
	root.AddCommand(commands.NewContextCommand(container, renderer))
	root.AddCommand(commands.NewHistoryCommand(container, renderer))
	root.AddCommand(commands.NewTemplateCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewInfoCommand(container, renderer))
	return root, nil
}

// NewRendererFactory adapts the renderer to the commands package without a
// package cycle: commands receive a constructor, not the cli package itself.
func NewRendererFactory(container *app.Container) commands.RendererFunc {
	return func(cmd *cobra.Command, formatOverride string) commands.Renderer {
		settings := container.Config.Output
		if formatOverride != "" {
			settings.Format = formatOverride
		}
		return NewRenderer(cmd.OutOrStdout(), settings)
	}
}
