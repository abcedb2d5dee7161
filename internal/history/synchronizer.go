package history

import (
	"context"
	"sync"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
)

/*
Responsibilities
- Keep the history stack in lock-step with completed navigations
- Feed back/forward traversal into the navigation layer

Signal Rules
- SignalPushOrReplace pushes when push is configured, otherwise
  replaces when replace is configured, otherwise leaves history alone
- SignalReplaceOrConfirm always replaces and never pushes
- Every signal performs at most one history write

The synchronizer never moves the history pointer itself. On popstate
it re-derives the URL from the active location and hands it to the
PopHandler.
*/

// PopHandler receives the location the browser traversed to.
type PopHandler func(ctx context.Context, url string)

type Synchronizer struct {
	mu           sync.Mutex
	api          API
	push         bool
	replace      bool
	state        SyncState
	pending      string
	unsubscribe  func()
	metadataSink metadata.MetadataSink
}

func NewSynchronizer(
	api API,
	push bool,
	replace bool,
	metadataSink metadata.MetadataSink,
) *Synchronizer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &Synchronizer{
		api:          api,
		push:         push,
		replace:      replace,
		state:        StateIdle,
		metadataSink: metadataSink,
	}
}

// Start records the current location as the first entry and begins
// listening for traversal. Calling Start again is a no-op.
func (s *Synchronizer) Start(ctx context.Context, title string, onPop PopHandler) {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	location := s.api.Location()
	s.api.ReplaceEntry(EntryState{Key: location, Title: title}, title, location)
	s.metadataSink.RecordHistory(metadata.HistoryReplace, location, title)

	s.unsubscribe = s.api.Subscribe(func(Event) {
		if onPop == nil {
			return
		}
		onPop(ctx, s.api.Location())
	})
	s.mu.Unlock()
}

func (s *Synchronizer) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Await marks url as the navigation whose completion is expected next.
func (s *Synchronizer) Await(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateAwaitingSignal
	s.pending = url
}

// Abandon returns to idle without touching history.
func (s *Synchronizer) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.pending = ""
}

// Signal applies the history write for a completed navigation and
// reports which write, if any, took place.
func (s *Synchronizer) Signal(signal Signal, url string, title string) metadata.HistoryAction {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.pending = ""

	entryState := EntryState{Key: url, Title: title}
	action := metadata.HistoryNone
	switch signal {
	case SignalPushOrReplace:
		if s.push {
			s.api.PushEntry(entryState, title, url)
			action = metadata.HistoryPush
		} else if s.replace {
			s.api.ReplaceEntry(entryState, title, url)
			action = metadata.HistoryReplace
		}
	case SignalReplaceOrConfirm:
		s.api.ReplaceEntry(entryState, title, url)
		action = metadata.HistoryReplace
	}

	s.metadataSink.RecordHistory(action, url, title)
	return action
}

func (s *Synchronizer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Pending returns the URL being awaited, or "" when idle.
func (s *Synchronizer) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}
