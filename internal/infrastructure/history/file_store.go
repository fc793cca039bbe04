package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"hactl/internal/domain"
	"hactl/internal/ports"
)

// FileStore appends resolution entries to a jsonl file. It is the fallback
// when SQLite is unavailable and the primary store in tests.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.HistoryStore = (*FileStore)(nil)

// NewFileStore creates a history store at dir/history.jsonl.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "history.jsonl")}
}

// Append writes one entry to the end of the log.
func (f *FileStore) Append(entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

// Records returns entries newest first, honoring the filter. Corrupt lines
// are skipped.
func (f *FileStore) Records(filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		kept := entries[:0]
		for _, e := range entries {
			if matchesSearch(e, needle) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// Stats aggregates match quality over the whole log.
func (f *FileStore) Stats() (domain.AccuracyStats, error) {
	entries, err := f.load()
	if err != nil {
		return domain.AccuracyStats{}, err
	}
	return aggregate(entries), nil
}

// Compact rewrites the log keeping only the newest `keep` entries.
func (f *FileStore) Compact(keep int) (int, error) {
	newest, err := f.Records(domain.HistoryFilter{Limit: keep})
	if err != nil {
		return 0, err
	}
	all, err := f.load()
	if err != nil {
		return 0, err
	}
	removed := len(all) - len(newest)
	if removed <= 0 {
		return 0, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var buf bytes.Buffer
	// Rewrite oldest first so future appends stay chronological.
	for i := len(newest) - 1; i >= 0; i-- {
		b, err := json.Marshal(newest[i])
		if err != nil {
			return 0, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear removes the log file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExportJSON copies the log to dest, newest first.
func (f *FileStore) ExportJSON(dest string) error {
	entries, err := f.Records(domain.HistoryFilter{})
	if err != nil {
		return err
	}
	return exportJSONL(dest, entries)
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) load() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var entries []domain.HistoryEntry
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var e domain.HistoryEntry
		if err := json.Unmarshal(line, &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func matchesSearch(e domain.HistoryEntry, needle string) bool {
	if strings.Contains(strings.ToLower(e.Utterance), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Interpretation), needle) {
		return true
	}
	for _, t := range e.Targets {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
