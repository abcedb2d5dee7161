package snapshot

// Store defines the port for snapshot caching.
// Adapters must keep these guarantees:
//
//   - Len() never exceeds Capacity().
//   - Overflow evicts the entry inserted longest ago (FIFO); lookups
//     never change eviction order.
//   - Put on an existing URL replaces the value in place: size and
//     order are unchanged.
//   - Put with an empty URL, or on a store with zero capacity, is a no-op.
//   - Eviction is the only removal path.
type Store interface {
	Lookup(url string) (Snapshot, bool)
	Put(snapshot Snapshot)
	Len() int
	Capacity() int
	// Keys returns the stored URLs oldest first.
	Keys() []string
}

// EvictionObserver is notified with the evicted key and the size left after eviction.
type EvictionObserver interface {
	RecordEviction(key string, remaining int)
}

type noopObserver struct{}

func (noopObserver) RecordEviction(string, int) {}
