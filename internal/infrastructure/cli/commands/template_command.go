package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hactl/internal/app"
)

// NewTemplateCommand creates the `template` command, which renders a Jinja
// template on the hub. The template comes from the argument, --file, or
// stdin, in that order.
func NewTemplateCommand(container *app.Container) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "template [template]",
		Short: "Render a Jinja template on the hub",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tmpl string
			switch {
			case len(args) == 1:
				tmpl = args[0]
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read template file: %w", err)
				}
				tmpl = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read template from stdin: %w", err)
				}
				tmpl = string(data)
			}

			rendered, err := container.Transport.RenderTemplate(cmd.Context(), tmpl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the template from a file")
	return cmd
}
