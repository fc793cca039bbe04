package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"hactl/internal/domain"
	"hactl/internal/ports"
)

// SQLiteStore persists the resolution log in a SQLite database. When the
// database cannot be opened it degrades to the JSONL FileStore at the same
// directory, so history is never silently dropped.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates (or opens) the resolution database under dir.
func NewSQLiteStore(dir string) *SQLiteStore {
	path := filepath.Join(dir, "history.db")
	_ = os.MkdirAll(dir, 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS resolutions (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		utterance TEXT NOT NULL,
		interpretation TEXT,
		action TEXT,
		targets TEXT,
		match_kind TEXT,
		confidence REAL,
		success INTEGER,
		error TEXT
	);`)
	return err
}

func (s *SQLiteStore) fallback() *FileStore {
	return NewFileStore(filepath.Dir(s.path))
}

// Append inserts a new resolution record.
func (s *SQLiteStore) Append(entry domain.HistoryEntry) error {
	if s.db == nil {
		return s.fallback().Append(entry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	targets, err := json.Marshal(entry.Targets)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO resolutions
		(id, timestamp, utterance, interpretation, action, targets, match_kind, confidence, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.RFC3339),
		entry.Utterance,
		entry.Interpretation,
		string(entry.Action),
		string(targets),
		string(entry.MatchKind),
		entry.Confidence,
		boolToInt(entry.Success),
		entry.Error,
	)
	return err
}

// Records returns resolution entries, newest first.
func (s *SQLiteStore) Records(filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	if s.db == nil {
		return s.fallback().Records(filter)
	}
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, timestamp, utterance, interpretation, action, targets, match_kind, confidence, success, error FROM resolutions`)
	var args []interface{}
	if filter.Search != "" {
		builder.WriteString(" WHERE utterance LIKE ? OR interpretation LIKE ? OR targets LIKE ?")
		pat := "%" + filter.Search + "%"
		args = append(args, pat, pat, pat)
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if filter.Limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var ts, action, targets, kind string
		var success int
		if err := rows.Scan(&e.ID, &ts, &e.Utterance, &e.Interpretation, &action, &targets, &kind, &e.Confidence, &success, &e.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = t
		}
		e.Action = domain.Action(action)
		e.MatchKind = domain.MatchKind(kind)
		e.Success = success == 1
		if targets != "" {
			_ = json.Unmarshal([]byte(targets), &e.Targets)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats aggregates match quality over the whole log.
func (s *SQLiteStore) Stats() (domain.AccuracyStats, error) {
	entries, err := s.Records(domain.HistoryFilter{})
	if err != nil {
		return domain.AccuracyStats{}, err
	}
	return aggregate(entries), nil
}

// Compact keeps the newest `keep` entries and deletes the rest, returning
// how many were removed.
func (s *SQLiteStore) Compact(keep int) (int, error) {
	if s.db == nil {
		return s.fallback().Compact(keep)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM resolutions WHERE id NOT IN (
		SELECT id FROM resolutions ORDER BY datetime(timestamp) DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	return int(removed), err
}

// Clear deletes all resolution entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback().Clear()
	}
	_, err := s.db.Exec("DELETE FROM resolutions")
	return err
}

// ExportJSON writes the resolution log to a jsonl file, newest first.
func (s *SQLiteStore) ExportJSON(dest string) error {
	entries, err := s.Records(domain.HistoryFilter{})
	if err != nil {
		return err
	}
	return exportJSONL(dest, entries)
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// aggregate folds entries into accuracy statistics. Shared by both stores.
func aggregate(entries []domain.HistoryEntry) domain.AccuracyStats {
	stats := domain.AccuracyStats{EntityUseCount: map[string]int{}}
	for _, e := range entries {
		stats.Total++
		if !e.Success {
			stats.Failures++
		}
		switch e.MatchKind {
		case domain.MatchExact:
			stats.ExactMatches++
		case domain.MatchAlias:
			stats.AliasMatches++
		case domain.MatchFuzzy:
			stats.FuzzyMatches++
		case domain.MatchAmbiguous:
			stats.Ambiguous++
		}
		for _, id := range e.Targets {
			stats.EntityUseCount[id]++
		}
	}
	return stats
}

func exportJSONL(dest string, entries []domain.HistoryEntry) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now()
		}
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
