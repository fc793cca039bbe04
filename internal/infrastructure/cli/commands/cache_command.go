package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hactl/internal/app"
)

// NewCacheCommand creates the `cache` command group.
func NewCacheCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or refresh the registry cache",
	}
	cmd.AddCommand(newCacheStatusCommand(container, renderer))
	cmd.AddCommand(newCacheRefreshCommand(container))
	cmd.AddCommand(newCacheClearCommand(container))
	return cmd
}

func newCacheStatusCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-category cache freshness",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := container.Registry.Status()
			if err != nil {
				return err
			}
			return renderer(cmd, output).RenderCacheStatus(statuses)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

func newCacheRefreshCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [categories...]",
		Short: "Re-fetch registry categories from the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, ok := parseCategories(args)
			if !ok {
				return fmt.Errorf("unknown category in %v; known: entities, services, areas, devices, labels", args)
			}
			if err := container.Registry.Refresh(cmd.Context(), cats...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgCacheRefreshed)
			return nil
		},
	}
}

func newCacheClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [categories...]",
		Short: "Drop cached registry snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, ok := parseCategories(args)
			if !ok {
				return fmt.Errorf("unknown category in %v; known: entities, services, areas, devices, labels", args)
			}
			if err := container.Registry.Invalidate(cats...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgCacheInvalidated)
			return nil
		},
	}
}
