package history

// EntryState is the state object stored alongside a history entry.
// Key is the snapshot key the entry was created for.
type EntryState struct {
	Key   string
	Title string
}

type Entry struct {
	URL   string
	Title string
	State EntryState
}

// Event is dispatched to subscribers when the active entry changes
// through back/forward traversal.
type Event struct {
	Entry Entry
}

// API is the subset of the browser history surface a session depends on.
type API interface {
	PushEntry(state EntryState, title string, url string)
	ReplaceEntry(state EntryState, title string, url string)
	// Location returns the path and query of the active entry.
	Location() string
	Subscribe(listener func(Event)) (unsubscribe func())
	SupportsPushState() bool
}

type SyncState int

const (
	StateIdle SyncState = iota
	StateAwaitingSignal
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSignal:
		return "awaiting_signal"
	default:
		return "unknown"
	}
}

type Signal int

const (
	// SignalPushOrReplace follows a fresh fetch.
	SignalPushOrReplace Signal = iota
	// SignalReplaceOrConfirm follows a cache hit or a traversal.
	SignalReplaceOrConfirm
)

func (s Signal) String() string {
	switch s {
	case SignalPushOrReplace:
		return "push_or_replace"
	case SignalReplaceOrConfirm:
		return "replace_or_confirm"
	default:
		return "unknown"
	}
}
