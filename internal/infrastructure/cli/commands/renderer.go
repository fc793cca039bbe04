package commands

import (
	"github.com/spf13/cobra"

	"hactl/internal/application/resolve"
	"hactl/internal/domain"
)

// Renderer is the output surface the commands draw on. The concrete
// implementation lives one package up; commands only see the contract.
type Renderer interface {
	RenderResult(res resolve.Result, dryRun bool) error
	RenderEntities(entities []domain.Entity) error
	RenderServices(services []domain.Service) error
	RenderAreas(areas []domain.Area) error
	RenderDevices(devices []domain.Device) error
	RenderLabels(labels []domain.Label) error
	RenderCacheStatus(statuses []domain.CategoryStatus) error
	RenderContext(rec domain.ContextRecord, state domain.ContextState) error
	RenderHistory(entries []domain.HistoryEntry) error
	RenderStats(stats domain.AccuracyStats) error
	RenderInfo(info map[string]any) error
}

// RendererFunc builds a renderer for one command invocation, honoring a
// per-command --output override.
type RendererFunc func(cmd *cobra.Command, formatOverride string) Renderer
