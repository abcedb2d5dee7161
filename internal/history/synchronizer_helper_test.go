package history_test

import (
	"github.com/rohmanhakim/pjax-nav/internal/history"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
)

type historyWrite struct {
	kind  string
	url   string
	title string
}

// spyAPI records every write so tests can count history mutations.
type spyAPI struct {
	*history.MemoryBrowser
	writes []historyWrite
}

func newSpyAPI(initial string) *spyAPI {
	return &spyAPI{MemoryBrowser: history.NewMemoryBrowser(initial, "initial")}
}

func (s *spyAPI) PushEntry(state history.EntryState, title string, url string) {
	s.writes = append(s.writes, historyWrite{kind: "push", url: url, title: title})
	s.MemoryBrowser.PushEntry(state, title, url)
}

func (s *spyAPI) ReplaceEntry(state history.EntryState, title string, url string) {
	s.writes = append(s.writes, historyWrite{kind: "replace", url: url, title: title})
	s.MemoryBrowser.ReplaceEntry(state, title, url)
}

type historySink struct {
	metadata.NoopSink
	actions []metadata.HistoryAction
}

func (h *historySink) RecordHistory(action metadata.HistoryAction, url string, title string) {
	h.actions = append(h.actions, action)
}
