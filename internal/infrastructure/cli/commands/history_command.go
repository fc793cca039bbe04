package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hactl/internal/app"
	"hactl/internal/domain"
)

// defaultHistoryKeep is how many entries `history compact` retains when no
// count is given.
const defaultHistoryKeep = 1000

// NewHistoryCommand creates the `history` command group over the resolution
// log.
func NewHistoryCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the resolution log",
	}
	cmd.AddCommand(newHistoryListCommand(container, renderer))
	cmd.AddCommand(newHistorySearchCommand(container, renderer))
	cmd.AddCommand(newHistoryStatsCommand(container, renderer))
	cmd.AddCommand(newHistoryCompactCommand(container))
	cmd.AddCommand(newHistoryClearCommand(container))
	cmd.AddCommand(newHistoryExportCommand(container))
	return cmd
}

func newHistoryListCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var (
		limit  int
		search string
		output string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past resolutions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.History.Records(domain.HistoryFilter{
				Limit:  limit,
				Search: search,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 && output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoHistory)
				return nil
			}
			return renderer(cmd, output).RenderHistory(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only entries containing this text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

func newHistorySearchCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search past resolutions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.History.Records(domain.HistoryFilter{
				Limit:  limit,
				Search: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			return renderer(cmd, output).RenderHistory(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

func newHistoryStatsCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show match accuracy statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := container.History.Stats()
			if err != nil {
				return err
			}
			return renderer(cmd, output).RenderStats(stats)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

func newHistoryCompactCommand(container *app.Container) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Prune the log down to the newest entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep <= 0 {
				return fmt.Errorf("--keep must be > 0")
			}
			removed, err := container.History.Compact(keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries, kept the newest %d.\n", removed, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", defaultHistoryKeep, "Number of entries to keep")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire resolution log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.History.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the resolution log as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.History.ExportJSON(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported history to %s\n", args[0])
			return nil
		},
	}
	return cmd
}
