package snapshot_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/pjax-nav/internal/snapshot"
	"github.com/stretchr/testify/require"
)

// evictionRecorder is a test double collecting eviction notifications.
type evictionRecorder struct {
	evicted   []string
	remaining []int
}

func (e *evictionRecorder) RecordEviction(key string, remaining int) {
	e.evicted = append(e.evicted, key)
	e.remaining = append(e.remaining, remaining)
}

type storeFactory struct {
	name string
	new  func(t *testing.T, maxEntries int) snapshot.Store
}

// storeFactories lists every adapter so the Store contract runs against each.
func storeFactories() []storeFactory {
	return []storeFactory{
		{
			name: "memory",
			new: func(t *testing.T, maxEntries int) snapshot.Store {
				return snapshot.NewMemoryStore(maxEntries, nil)
			},
		},
		{
			name: "sqlite",
			new: func(t *testing.T, maxEntries int) snapshot.Store {
				t.Helper()
				path := filepath.Join(t.TempDir(), "snapshots.db")
				store, err := snapshot.NewSQLiteStore(path, maxEntries, nil)
				require.NoError(t, err)
				t.Cleanup(func() { _ = store.Close() })
				return store
			},
		},
	}
}

func snap(url string) snapshot.Snapshot {
	return snapshot.Snapshot{
		URL:     url,
		Title:   "title " + url,
		Content: fmt.Sprintf("<p>%s</p>", url),
	}
}
