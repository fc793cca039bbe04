package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hactl/internal/app"
	"hactl/internal/application/resolve"
	"hactl/internal/domain"
)

// NewDoCommand creates the `do` command: resolve an utterance and dispatch
// the resulting service calls.
func NewDoCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var (
		dryRun    bool
		exactOnly bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "do [utterance]",
		Short: "Resolve a natural language command and run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := strings.TrimSpace(strings.Join(args, " "))
			if utterance == "" {
				return errors.New(ErrUtteranceRequired)
			}

			res, err := container.Resolver.Resolve(cmd.Context(), utterance, resolve.Options{
				DryRun:    dryRun,
				ExactOnly: exactOnly,
			})
			if err != nil {
				return describeResolutionError(err)
			}
			return renderer(cmd, output).RenderResult(res, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Resolve and show the plan without dispatching")
	cmd.Flags().BoolVar(&exactOnly, "exact", false, "Only accept exact entity matches")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

// describeResolutionError turns the typed resolution failures into actionable
// messages; anything unrecognized passes through.
func describeResolutionError(err error) error {
	var ambiguous *domain.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%q matches more than one entity:\n", ambiguous.Phrase)
		for _, s := range ambiguous.Tied {
			fmt.Fprintf(&sb, "  %s (%s)\n", s.Candidate.ID, s.Candidate.Name)
		}
		sb.WriteString("Be more specific, or use the entity id directly.")
		return errors.New(sb.String())
	}

	var noMatch *domain.NoMatchError
	if errors.As(err, &noMatch) && len(noMatch.Suggestions) > 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "nothing matches %q. Did you mean:\n", noMatch.Phrase)
		for _, s := range noMatch.Suggestions {
			fmt.Fprintf(&sb, "  %s (%s)\n", s.Candidate.ID, s.Candidate.Name)
		}
		return errors.New(strings.TrimRight(sb.String(), "\n"))
	}

	var unavailable *domain.CacheUnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Errorf("%w\nCheck hub connectivity, then run `hactl cache refresh`", err)
	}
	return err
}
