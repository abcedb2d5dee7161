package snapshot

// Snapshot is the unit stored per navigated URL.
// It is treated as immutable once stored; storing the same URL again
// replaces the value, never the slot.
type Snapshot struct {
	// Canonical key: path + query, no fragment.
	URL string
	// Document title captured when the fetch completed.
	Title string
	// Raw markup injected into the container.
	Content string
}

// Servable reports whether the snapshot can answer a navigation without a fetch.
// Entries without content are treated as cache misses.
func (s Snapshot) Servable() bool {
	return s.Content != ""
}
