package navigation

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/fetcher"
	"github.com/rohmanhakim/pjax-nav/internal/history"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/internal/snapshot"
)

type Mode int

const (
	// ModeClick is a navigation started by a link activation.
	ModeClick Mode = iota
	// ModePopState is a navigation started by back/forward traversal.
	ModePopState
)

func (m Mode) String() string {
	switch m {
	case ModeClick:
		return "click"
	case ModePopState:
		return "popstate"
	default:
		return "unknown"
	}
}

type Outcome int

const (
	OutcomeCacheHit Outcome = iota
	OutcomeFetched
	OutcomeSuperseded
	OutcomeFailed
	OutcomeInert
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCacheHit:
		return metadata.OutcomeCacheHit
	case OutcomeFetched:
		return "fetched"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeFailed:
		return "failed"
	case OutcomeInert:
		return "inert"
	default:
		return "unknown"
	}
}

// Result describes how a navigation ended.
type Result struct {
	URL      string
	Title    string
	Mode     Mode
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the container now shows URL's content.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeCacheHit || r.Outcome == OutcomeFetched
}

// Document is the page surface a controller renders into.
type Document interface {
	ReplaceContent(markup string) error
	Title() string
	ScrollToTop()
}

type Options struct {
	// BaseURL supplies the origin fetches are sent to.
	BaseURL      url.URL
	MaxEntries   int
	CacheEnabled bool
	Push         bool
	Replace      bool
	CacheBust    bool
	// Before runs with the snapshot key before lookup.
	Before func(url string)
	// After runs once a navigation has settled, successful or failed.
	// It never runs for superseded navigations.
	After func(result Result)
}

func DefaultOptions(baseURL url.URL) Options {
	return Options{
		BaseURL:      baseURL,
		MaxEntries:   20,
		CacheEnabled: true,
		Push:         true,
		Replace:      false,
		CacheBust:    true,
	}
}

// Deps are the collaborators a controller drives.
// Store is optional; a MemoryStore sized by Options.MaxEntries is used when nil.
type Deps struct {
	Document     Document
	Transport    fetcher.Transport
	History      history.API
	Store        snapshot.Store
	MetadataSink metadata.MetadataSink
}
