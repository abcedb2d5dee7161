package snapshot

import "sync"

// MemoryStore is an in-memory implementation of the Store port.
// It pairs a map for O(1) lookup with an insertion-ordered key slice
// used as the eviction queue.
//
// The snapshots live only for the lifetime of the owning controller.
type MemoryStore struct {
	mu         sync.RWMutex
	maxEntries int
	entries    map[string]Snapshot
	order      []string
	observer   EvictionObserver
}

// NewMemoryStore creates a store bounded to maxEntries snapshots.
// A negative bound is treated as zero, which disables caching.
func NewMemoryStore(maxEntries int, observer EvictionObserver) *MemoryStore {
	if maxEntries < 0 {
		maxEntries = 0
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]Snapshot),
		order:      make([]string, 0, maxEntries),
		observer:   observer,
	}
}

// Lookup returns the snapshot stored under url.
// It is read-only and never touches eviction order.
func (m *MemoryStore) Lookup(url string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, exists := m.entries[url]
	return snapshot, exists
}

// Put stores a snapshot, replacing an existing entry in its slot or
// appending a new one and evicting the oldest when the bound is exceeded.
func (m *MemoryStore) Put(snapshot Snapshot) {
	if snapshot.URL == "" {
		return
	}

	m.mu.Lock()
	if m.maxEntries == 0 {
		m.mu.Unlock()
		return
	}

	if _, exists := m.entries[snapshot.URL]; exists {
		m.entries[snapshot.URL] = snapshot
		m.mu.Unlock()
		return
	}

	m.entries[snapshot.URL] = snapshot
	m.order = append(m.order, snapshot.URL)

	var evicted []string
	for len(m.order) > m.maxEntries {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
		evicted = append(evicted, oldest)
	}
	remaining := len(m.order)
	m.mu.Unlock()

	for _, key := range evicted {
		m.observer.RecordEviction(key, remaining)
	}
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order)
}

func (m *MemoryStore) Capacity() int {
	return m.maxEntries
}

func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, len(m.order))
	copy(keys, m.order)
	return keys
}
