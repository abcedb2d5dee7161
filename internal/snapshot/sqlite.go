package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	url     TEXT PRIMARY KEY,
	seq     INTEGER NOT NULL,
	title   TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_seq_idx ON snapshots (seq);
`

// SQLiteStore persists snapshots so a browse session can reuse them after a restart.
// It honours the same FIFO contract as MemoryStore: seq is assigned on first
// insert and never rewritten by an overwrite, and eviction removes MIN(seq).
//
// Storage failures never surface through the Store port: a failed lookup reads
// as a miss (the page is fetched again) and a failed put leaves the store as it was.
// Both are reported to the metadata sink.
type SQLiteStore struct {
	db           *sql.DB
	maxEntries   int
	metadataSink metadata.MetadataSink
}

func NewSQLiteStore(path string, maxEntries int, metadataSink metadata.MetadataSink) (*SQLiteStore, error) {
	if maxEntries < 0 {
		maxEntries = 0
	}
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{
			Message: fmt.Sprintf("open %s: %v", path, err),
			Cause:   ErrCauseOpenFailed,
		}
	}
	// one connection keeps ":memory:" databases and write ordering consistent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, &StoreError{
			Message: fmt.Sprintf("create schema: %v", err),
			Cause:   ErrCauseOpenFailed,
		}
	}

	s := &SQLiteStore{
		db:           db,
		maxEntries:   maxEntries,
		metadataSink: metadataSink,
	}

	// a database written with a larger bound is trimmed to the current one
	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseOpenFailed}
	}
	evicted, err := s.evictOverflow(tx)
	if err != nil {
		_ = tx.Rollback()
		_ = db.Close()
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseOpenFailed}
	}
	if err := tx.Commit(); err != nil {
		_ = db.Close()
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseOpenFailed}
	}
	s.reportEvictions(evicted)

	return s, nil
}

func (s *SQLiteStore) Lookup(url string) (Snapshot, bool) {
	snapshot := Snapshot{URL: url}
	err := s.db.QueryRow(
		"SELECT title, content FROM snapshots WHERE url = ?", url,
	).Scan(&snapshot.Title, &snapshot.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false
	}
	if err != nil {
		s.recordError("SQLiteStore.Lookup", url, err)
		return Snapshot{}, false
	}
	return snapshot, true
}

func (s *SQLiteStore) Put(snapshot Snapshot) {
	if snapshot.URL == "" || s.maxEntries == 0 {
		return
	}

	evicted, err := s.put(snapshot)
	if err != nil {
		s.recordError("SQLiteStore.Put", snapshot.URL, err)
		return
	}
	s.reportEvictions(evicted)
}

func (s *SQLiteStore) put(snapshot Snapshot) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(
		"UPDATE snapshots SET title = ?, content = ? WHERE url = ?",
		snapshot.Title, snapshot.Content, snapshot.URL,
	)
	if err != nil {
		return nil, err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if updated > 0 {
		return nil, tx.Commit()
	}

	_, err = tx.Exec(
		`INSERT INTO snapshots (url, seq, title, content)
		 VALUES (?, COALESCE((SELECT MAX(seq) FROM snapshots), 0) + 1, ?, ?)`,
		snapshot.URL, snapshot.Title, snapshot.Content,
	)
	if err != nil {
		return nil, err
	}

	evicted, err := s.evictOverflow(tx)
	if err != nil {
		return nil, err
	}
	return evicted, tx.Commit()
}

// evictOverflow deletes the oldest rows until the table fits maxEntries.
func (s *SQLiteStore) evictOverflow(tx *sql.Tx) ([]string, error) {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		return nil, err
	}
	overflow := count - s.maxEntries
	if overflow <= 0 {
		return nil, nil
	}

	rows, err := tx.Query("SELECT url FROM snapshots ORDER BY seq ASC LIMIT ?", overflow)
	if err != nil {
		return nil, err
	}
	var evicted []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			rows.Close()
			return nil, err
		}
		evicted = append(evicted, url)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, url := range evicted {
		if _, err := tx.Exec("DELETE FROM snapshots WHERE url = ?", url); err != nil {
			return nil, err
		}
	}
	return evicted, nil
}

func (s *SQLiteStore) reportEvictions(evicted []string) {
	if len(evicted) == 0 {
		return
	}
	remaining := s.Len()
	for _, key := range evicted {
		s.metadataSink.RecordEviction(key, remaining)
	}
}

func (s *SQLiteStore) Len() int {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		s.recordError("SQLiteStore.Len", "", err)
		return 0
	}
	return count
}

func (s *SQLiteStore) Capacity() int {
	return s.maxEntries
}

func (s *SQLiteStore) Keys() []string {
	rows, err := s.db.Query("SELECT url FROM snapshots ORDER BY seq ASC")
	if err != nil {
		s.recordError("SQLiteStore.Keys", "", err)
		return nil
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			s.recordError("SQLiteStore.Keys", "", err)
			return nil
		}
		keys = append(keys, url)
	}
	return keys
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) recordError(action string, url string, err error) {
	storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseQueryFailed}
	s.metadataSink.RecordError(
		time.Now(),
		"snapshot",
		action,
		metadata.CauseStorageFailure,
		storeErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrKey, url),
			metadata.NewAttr(metadata.AttrMessage, storeErr.Message),
		},
	)
}
