// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// These interfaces are the contract between the resolution pipeline and the
// external adapters (hub transport, on-disk stores, renderers). The pipeline
// depends only on abstractions here, which keeps it testable with in-memory
// fakes.
package ports

import (
	"context"

	"hactl/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.hactl/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Transport is the hub client boundary. The registry cache uses the Fetch
// methods exclusively on its refresh path; Dispatch executes a resolved plan
// step; EntityState serves freshness-sensitive commands that bypass the
// cache.
type Transport interface {
	FetchEntities(ctx context.Context) ([]domain.Entity, error)
	FetchServices(ctx context.Context) ([]domain.Service, error)
	FetchAreas(ctx context.Context) ([]domain.Area, error)
	FetchDevices(ctx context.Context) ([]domain.Device, error)
	FetchLabels(ctx context.Context) ([]domain.Label, error)
	Dispatch(ctx context.Context, entityID string, call domain.ServiceCall) (domain.DispatchOutcome, error)
	EntityState(ctx context.Context, entityID string) (domain.Entity, error)
	RenderTemplate(ctx context.Context, template string) (string, error)
	APIInfo(ctx context.Context) (map[string]any, error)
}

// RegistryStore is the TTL-governed local mirror of the hub registry.
// Readers that tolerate staleness pass fresh=false and get the most recent
// snapshot immediately; fresh=true refreshes synchronously when stale.
type RegistryStore interface {
	Entities(ctx context.Context, fresh bool) ([]domain.Entity, error)
	Services(ctx context.Context, fresh bool) ([]domain.Service, error)
	Areas(ctx context.Context, fresh bool) ([]domain.Area, error)
	Devices(ctx context.Context, fresh bool) ([]domain.Device, error)
	Labels(ctx context.Context, fresh bool) ([]domain.Label, error)
	Refresh(ctx context.Context, cats ...domain.Category) error
	RefreshStale(ctx context.Context)
	Invalidate(cats ...domain.Category) error
	Status() ([]domain.CategoryStatus, error)
}

// ContextStore persists the single most recent resolution for elliptical
// follow-ups. Record overwrites; there is no history here.
type ContextStore interface {
	Record(rec domain.ContextRecord) error
	Current() (domain.ContextRecord, domain.ContextState, error)
	Clear() error
}

// HistoryStore is the append-only resolution log.
type HistoryStore interface {
	Append(entry domain.HistoryEntry) error
	Records(filter domain.HistoryFilter) ([]domain.HistoryEntry, error)
	Stats() (domain.AccuracyStats, error)
	Compact(keep int) (removed int, err error)
	Clear() error
	ExportJSON(dest string) error
}

// Logger provides structured logging for the pipeline. Implementations can
// route to stderr or files.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
