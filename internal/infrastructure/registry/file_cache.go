// Package registry implements the TTL-governed local mirror of the hub
// registry. Each category (entities, services, areas, devices, labels) is
// persisted as its own JSON snapshot so categories refresh independently.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hactl/internal/domain"
	"hactl/internal/ports"
)

// TTLPolicy returns the freshness window for a category.
type TTLPolicy func(domain.Category) time.Duration

// FileCache mirrors the hub registry on disk under a cache directory.
// Snapshots carry the server URL they were fetched from; pointing hactl at a
// different hub invalidates every snapshot implicitly.
type FileCache struct {
	dir       string
	serverURL string
	transport ports.Transport
	ttl       TTLPolicy
	log       ports.Logger
	now       func() time.Time
}

var _ ports.RegistryStore = (*FileCache)(nil)

// New creates a FileCache rooted at dir.
func New(dir, serverURL string, transport ports.Transport, ttl TTLPolicy, log ports.Logger) *FileCache {
	return &FileCache{
		dir:       dir,
		serverURL: serverURL,
		transport: transport,
		ttl:       ttl,
		log:       log,
		now:       time.Now,
	}
}

func (c *FileCache) Entities(ctx context.Context, fresh bool) ([]domain.Entity, error) {
	return getCategory(ctx, c, domain.CategoryEntities, fresh, c.transport.FetchEntities)
}

func (c *FileCache) Services(ctx context.Context, fresh bool) ([]domain.Service, error) {
	return getCategory(ctx, c, domain.CategoryServices, fresh, c.transport.FetchServices)
}

func (c *FileCache) Areas(ctx context.Context, fresh bool) ([]domain.Area, error) {
	return getCategory(ctx, c, domain.CategoryAreas, fresh, c.transport.FetchAreas)
}

func (c *FileCache) Devices(ctx context.Context, fresh bool) ([]domain.Device, error) {
	return getCategory(ctx, c, domain.CategoryDevices, fresh, c.transport.FetchDevices)
}

func (c *FileCache) Labels(ctx context.Context, fresh bool) ([]domain.Label, error) {
	return getCategory(ctx, c, domain.CategoryLabels, fresh, c.transport.FetchLabels)
}

// Refresh synchronously re-fetches the named categories (all when none are
// named). The first failure aborts and surfaces as a CacheRefreshError.
func (c *FileCache) Refresh(ctx context.Context, cats ...domain.Category) error {
	if len(cats) == 0 {
		cats = domain.Categories()
	}
	for _, cat := range cats {
		if err := c.refreshOne(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}

// RefreshStale re-fetches every stale category, best effort. Failures are
// logged and skipped so a flaky hub never blocks a command that can run on
// stale data.
func (c *FileCache) RefreshStale(ctx context.Context) {
	for _, st := range c.statuses() {
		if st.Present && !st.Stale {
			continue
		}
		if err := c.refreshOne(ctx, st.Category); err != nil {
			c.log.Warn("background refresh failed", map[string]interface{}{
				"category": st.Category,
				"error":    err.Error(),
			})
		}
	}
}

// Invalidate removes the named snapshots (all when none are named).
func (c *FileCache) Invalidate(cats ...domain.Category) error {
	if len(cats) == 0 {
		cats = domain.Categories()
	}
	for _, cat := range cats {
		if err := os.Remove(c.categoryPath(cat)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("invalidate %s: %w", cat, err)
		}
	}
	return nil
}

// Status reports every category's presence, age, and staleness.
func (c *FileCache) Status() ([]domain.CategoryStatus, error) {
	return c.statuses(), nil
}

func (c *FileCache) statuses() []domain.CategoryStatus {
	now := c.now()
	out := make([]domain.CategoryStatus, 0, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		st := domain.CategoryStatus{Category: cat, TTL: c.ttl(cat)}
		path := c.categoryPath(cat)
		info, err := os.Stat(path)
		if err != nil {
			out = append(out, st)
			continue
		}
		var snap domain.Snapshot[json.RawMessage]
		if err := readSnapshot(path, &snap); err != nil || !snap.Valid(c.serverURL) {
			out = append(out, st)
			continue
		}
		st.Present = true
		st.Count = len(snap.Items)
		st.FetchedAt = snap.FetchedAt
		st.Age = snap.Age(now)
		st.Stale = snap.Stale(now)
		st.SizeBytes = info.Size()
		out = append(out, st)
	}
	return out
}

func (c *FileCache) refreshOne(ctx context.Context, cat domain.Category) error {
	var err error
	switch cat {
	case domain.CategoryEntities:
		err = fetchAndStore(ctx, c, cat, c.transport.FetchEntities)
	case domain.CategoryServices:
		err = fetchAndStore(ctx, c, cat, c.transport.FetchServices)
	case domain.CategoryAreas:
		err = fetchAndStore(ctx, c, cat, c.transport.FetchAreas)
	case domain.CategoryDevices:
		err = fetchAndStore(ctx, c, cat, c.transport.FetchDevices)
	case domain.CategoryLabels:
		err = fetchAndStore(ctx, c, cat, c.transport.FetchLabels)
	default:
		err = fmt.Errorf("unknown category %q", cat)
	}
	if err != nil {
		return &domain.CacheRefreshError{Category: cat, Cause: err}
	}
	return nil
}

func (c *FileCache) categoryPath(cat domain.Category) string {
	return filepath.Join(c.dir, string(cat)+".json")
}

// getCategory serves one category, refreshing when the snapshot is missing,
// from another server, or stale with fresh requested. A failed refresh over
// a stale-but-present snapshot degrades to the stale data with a warning; a
// failed initial fetch is a CacheUnavailableError.
func getCategory[T any](ctx context.Context, c *FileCache, cat domain.Category, fresh bool, fetch func(context.Context) ([]T, error)) ([]T, error) {
	var snap domain.Snapshot[T]
	err := readSnapshot(c.categoryPath(cat), &snap)
	have := err == nil && snap.Valid(c.serverURL)

	if have && (!fresh || !snap.Stale(c.now())) {
		if snap.Stale(c.now()) {
			c.log.Debug("serving stale snapshot", map[string]interface{}{
				"category": cat,
				"age":      snap.Age(c.now()).String(),
			})
		}
		return snap.Items, nil
	}

	items, fetchErr := fetch(ctx)
	if fetchErr != nil {
		if have {
			c.log.Warn("refresh failed, serving stale snapshot", map[string]interface{}{
				"category": cat,
				"error":    fetchErr.Error(),
			})
			return snap.Items, nil
		}
		return nil, &domain.CacheUnavailableError{Category: cat, Cause: fetchErr}
	}
	if err := storeSnapshot(c, cat, items); err != nil {
		// Persisting is best effort; the fetched data is still good.
		c.log.Warn("persist snapshot failed", map[string]interface{}{
			"category": cat,
			"error":    err.Error(),
		})
	}
	return items, nil
}

func fetchAndStore[T any](ctx context.Context, c *FileCache, cat domain.Category, fetch func(context.Context) ([]T, error)) error {
	items, err := fetch(ctx)
	if err != nil {
		return err
	}
	return storeSnapshot(c, cat, items)
}

func storeSnapshot[T any](c *FileCache, cat domain.Category, items []T) error {
	snap := domain.NewSnapshot(items, c.ttl(cat), c.serverURL)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(c.categoryPath(cat), data)
}

func readSnapshot(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// writeAtomic writes via temp file + rename; registry reads never observe a
// half-written snapshot.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
