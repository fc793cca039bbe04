package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"hactl/internal/app"
	"hactl/internal/domain"
)

// NewEntityCommand creates the `entity` command group.
func NewEntityCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Inspect entities known to the hub",
	}
	cmd.AddCommand(newEntityListCommand(container, renderer))
	cmd.AddCommand(newEntityGetCommand(container, renderer))
	cmd.AddCommand(newEntityStateCommand(container, renderer))
	return cmd
}

func newEntityListCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var (
		domainFilter string
		areaFilter   string
		fresh        bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities from the registry cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := container.Registry.Entities(cmd.Context(), fresh)
			if err != nil {
				return err
			}
			if domainFilter != "" {
				entities = filterEntities(entities, func(e domain.Entity) bool {
					return e.Domain == domainFilter
				})
			}
			if areaFilter != "" {
				entities = filterEntities(entities, func(e domain.Entity) bool {
					return e.AreaID == areaFilter
				})
			}
			sort.Slice(entities, func(i, j int) bool {
				return entities[i].EntityID < entities[j].EntityID
			})
			return renderer(cmd, output).RenderEntities(entities)
		},
	}

	cmd.Flags().StringVar(&domainFilter, "domain", "", "Only entities in this domain (light, switch, ...)")
	cmd.Flags().StringVar(&areaFilter, "area", "", "Only entities assigned to this area id")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Refresh the cache before listing if stale")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

func newEntityGetCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [entity-id]",
		Short: "Show one entity, refreshing the cache first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Registry.Refresh(cmd.Context(), domain.CategoryEntities); err != nil {
				return err
			}
			entities, err := container.Registry.Entities(cmd.Context(), false)
			if err != nil {
				return err
			}
			for _, e := range entities {
				if e.EntityID == args[0] {
					return renderer(cmd, output).RenderEntities([]domain.Entity{e})
				}
			}
			return fmt.Errorf("no entity %q in the registry", args[0])
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

func newEntityStateCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "state [entity-id]",
		Short: "Fetch an entity's live state from the hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := container.Transport.EntityState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderer(cmd, output).RenderEntities([]domain.Entity{entity})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")
	return cmd
}

// NewServiceCommand creates the `service` command group.
func NewServiceCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Inspect callable hub services",
	}

	var (
		domainFilter string
		fresh        bool
		output       string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List services from the registry cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := container.Registry.Services(cmd.Context(), fresh)
			if err != nil {
				return err
			}
			if domainFilter != "" {
				kept := services[:0]
				for _, s := range services {
					if s.Domain == domainFilter {
						kept = append(kept, s)
					}
				}
				services = kept
			}
			return renderer(cmd, output).RenderServices(services)
		},
	}
	list.Flags().StringVar(&domainFilter, "domain", "", "Only services in this domain")
	list.Flags().BoolVar(&fresh, "fresh", false, "Refresh the cache before listing if stale")
	list.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")

	cmd.AddCommand(list)
	return cmd
}

// NewAreaCommand creates the `area` command group.
func NewAreaCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Inspect areas",
	}

	var (
		fresh  bool
		output string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List areas from the registry cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			areas, err := container.Registry.Areas(cmd.Context(), fresh)
			if err != nil {
				return err
			}
			sort.Slice(areas, func(i, j int) bool { return areas[i].AreaID < areas[j].AreaID })
			return renderer(cmd, output).RenderAreas(areas)
		},
	}
	list.Flags().BoolVar(&fresh, "fresh", false, "Refresh the cache before listing if stale")
	list.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")

	cmd.AddCommand(list)
	return cmd
}

// NewDeviceCommand creates the `device` command group.
func NewDeviceCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Inspect devices",
	}

	var (
		fresh  bool
		output string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List devices from the registry cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := container.Registry.Devices(cmd.Context(), fresh)
			if err != nil {
				return err
			}
			sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
			return renderer(cmd, output).RenderDevices(devices)
		},
	}
	list.Flags().BoolVar(&fresh, "fresh", false, "Refresh the cache before listing if stale")
	list.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")

	cmd.AddCommand(list)
	return cmd
}

// NewLabelCommand creates the `label` command group.
func NewLabelCommand(container *app.Container, renderer RendererFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Inspect labels",
	}

	var (
		fresh  bool
		output string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List labels from the registry cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := container.Registry.Labels(cmd.Context(), fresh)
			if err != nil {
				return err
			}
			sort.Slice(labels, func(i, j int) bool { return labels[i].LabelID < labels[j].LabelID })
			return renderer(cmd, output).RenderLabels(labels)
		},
	}
	list.Flags().BoolVar(&fresh, "fresh", false, "Refresh the cache before listing if stale")
	list.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json, or yaml")

	cmd.AddCommand(list)
	return cmd
}

func filterEntities(entities []domain.Entity, keep func(domain.Entity) bool) []domain.Entity {
	out := entities[:0]
	for _, e := range entities {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// parseCategories maps user-supplied category names onto the known set.
func parseCategories(args []string) ([]domain.Category, bool) {
	var cats []domain.Category
	for _, raw := range args {
		name := strings.ToLower(strings.TrimSpace(raw))
		matched := false
		for _, cat := range domain.Categories() {
			if name == string(cat) || name+"s" == string(cat) {
				cats = append(cats, cat)
				matched = true
				break
			}
		}
		if !matched {
			return nil, false
		}
	}
	return cats, true
}
