// Package contextstore persists the single most recent resolution so that
// elliptical follow-ups ("brighter", "turn them off") have a referent.
package contextstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hactl/internal/domain"
	"hactl/internal/ports"
)

// FileStore keeps one ContextRecord as JSON on disk. The TTL is sliding:
// every successful use re-records the context, which refreshes UpdatedAt.
type FileStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

var _ ports.ContextStore = (*FileStore)(nil)

// New creates a FileStore writing to path. A non-positive ttl falls back to
// the default context window.
func New(path string, ttl time.Duration) *FileStore {
	if ttl <= 0 {
		ttl = domain.DefaultContextTTL
	}
	return &FileStore{path: path, ttl: ttl, now: time.Now}
}

// Record overwrites the stored context. UpdatedAt is stamped here so callers
// cannot accidentally persist a stale timestamp.
func (s *FileStore) Record(rec domain.ContextRecord) error {
	rec.UpdatedAt = s.now()
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	return writeAtomic(s.path, data)
}

// Current returns the stored record and its freshness classification.
// An expired record is returned alongside its state so callers can mention
// what the context used to be.
func (s *FileStore) Current() (domain.ContextRecord, domain.ContextState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ContextRecord{}, domain.ContextAbsent, nil
		}
		return domain.ContextRecord{}, domain.ContextAbsent, fmt.Errorf("read context: %w", err)
	}

	var rec domain.ContextRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt context file is treated as absent rather than fatal;
		// the next successful resolution rewrites it.
		return domain.ContextRecord{}, domain.ContextAbsent, nil
	}
	if len(rec.EntityIDs) == 0 {
		return domain.ContextRecord{}, domain.ContextAbsent, nil
	}
	if !rec.Usable(s.now(), s.ttl) {
		return rec, domain.ContextExpired, nil
	}
	return rec, domain.ContextUsable, nil
}

// Clear removes the stored context. Clearing an absent context is not an
// error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear context: %w", err)
	}
	return nil
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a truncated record.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".context-*")
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
