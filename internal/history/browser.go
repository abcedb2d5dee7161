package history

import (
	"sync"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
)

/*
MemoryBrowser is an in-memory stand-in for window.history.

- Entries are position indexed; pushing truncates every forward entry
- Replacing overwrites the active entry in place
- Back, Forward and Go move the pointer and then dispatch a popstate
  Event to subscribers, outside the lock so listeners may write back
- A browser built WithoutPushState reports no push support and
  ignores every write
*/
type MemoryBrowser struct {
	mu            sync.Mutex
	entries       []Entry
	pos           int
	pushSupported bool
	listeners     map[int]func(Event)
	nextListener  int
	metadataSink  metadata.MetadataSink
}

type BrowserOption func(*MemoryBrowser)

func WithoutPushState() BrowserOption {
	return func(b *MemoryBrowser) {
		b.pushSupported = false
	}
}

func WithMetadataSink(sink metadata.MetadataSink) BrowserOption {
	return func(b *MemoryBrowser) {
		if sink != nil {
			b.metadataSink = sink
		}
	}
}

// NewMemoryBrowser opens a browser whose single entry is the page at initialURL.
func NewMemoryBrowser(initialURL string, initialTitle string, opts ...BrowserOption) *MemoryBrowser {
	b := &MemoryBrowser{
		entries: []Entry{{
			URL:   initialURL,
			Title: initialTitle,
		}},
		pos:           0,
		pushSupported: true,
		listeners:     make(map[int]func(Event)),
		metadataSink:  &metadata.NoopSink{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MemoryBrowser) PushEntry(state EntryState, title string, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pushSupported {
		return
	}
	if b.pos < len(b.entries)-1 {
		b.entries = b.entries[:b.pos+1]
	}
	b.entries = append(b.entries, Entry{URL: url, Title: title, State: state})
	b.pos = len(b.entries) - 1
}

func (b *MemoryBrowser) ReplaceEntry(state EntryState, title string, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pushSupported {
		return
	}
	b.entries[b.pos] = Entry{URL: url, Title: title, State: state}
}

func (b *MemoryBrowser) Location() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries[b.pos].URL
}

func (b *MemoryBrowser) Current() Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries[b.pos]
}

func (b *MemoryBrowser) SupportsPushState() bool {
	return b.pushSupported
}

func (b *MemoryBrowser) Subscribe(listener func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextListener
	b.nextListener++
	b.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Back moves one entry back. It reports false when already at the first entry.
func (b *MemoryBrowser) Back() bool {
	return b.Go(-1)
}

// Forward moves one entry forward. It reports false when already at the last entry.
func (b *MemoryBrowser) Forward() bool {
	return b.Go(1)
}

// Go moves the pointer by delta and dispatches popstate.
// Out of range moves and a zero delta are ignored.
func (b *MemoryBrowser) Go(delta int) bool {
	b.mu.Lock()
	target := b.pos + delta
	if delta == 0 || target < 0 || target >= len(b.entries) {
		b.mu.Unlock()
		return false
	}
	b.pos = target
	event := Event{Entry: b.entries[b.pos]}
	listeners := make([]func(Event), 0, len(b.listeners))
	for id := 0; id < b.nextListener; id++ {
		if listener, ok := b.listeners[id]; ok {
			listeners = append(listeners, listener)
		}
	}
	b.mu.Unlock()

	b.metadataSink.RecordHistory(metadata.HistoryPop, event.Entry.URL, event.Entry.Title)
	for _, listener := range listeners {
		listener(event)
	}
	return true
}

func (b *MemoryBrowser) CanGoBack() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pos > 0
}

func (b *MemoryBrowser) CanGoForward() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pos < len(b.entries)-1
}

// Entries returns a copy of the stack and the index of the active entry.
func (b *MemoryBrowser) Entries() ([]Entry, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return entries, b.pos
}
