package metadata

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Navigation outcomes (cache hit, fetched, superseded, failed)
- Fetch timings and HTTP status codes
- Snapshot evictions
- History mutations
- Saved page artifacts

Metadata is write-only.
No component may read metadata to influence navigation, caching or history.
*/

/*
Recorder captures structured navigation events and writes them through zerolog.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are written in the order they are received.
- Events of a superseded navigation may interleave with the newer one.
*/
type Recorder struct {
	logger zerolog.Logger

	mu    sync.Mutex
	stats sessionStats
}

func NewRecorder(logger zerolog.Logger, sessionId string) *Recorder {
	return &Recorder{
		logger: logger.With().Str("session", sessionId).Logger(),
	}
}

func (r *Recorder) RecordNavigation(
	url string,
	mode string,
	outcome string,
	duration time.Duration,
) {
	r.mu.Lock()
	r.stats.navigations++
	if outcome == OutcomeCacheHit {
		r.stats.cacheHits++
	}
	r.mu.Unlock()

	r.logger.Debug().
		Str("url", url).
		Str("mode", mode).
		Str("outcome", outcome).
		Dur("duration", duration).
		Msg("navigation settled")
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte int,
) {
	r.mu.Lock()
	r.stats.fetches++
	r.mu.Unlock()

	r.logger.Debug().
		Str("url", fetchUrl).
		Int("status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("size", sizeByte).
		Msg("fetch completed")
}

func (r *Recorder) RecordEviction(key string, remaining int) {
	r.logger.Trace().
		Str("key", key).
		Int("remaining", remaining).
		Msg("snapshot evicted")
}

func (r *Recorder) RecordHistory(action HistoryAction, url string, title string) {
	r.logger.Trace().
		Str("action", string(action)).
		Str("url", url).
		Str("title", title).
		Msg("history updated")
}

func (r *Recorder) RecordArtifact(path string, attrs []Attribute) {
	r.mu.Lock()
	r.stats.artifacts++
	r.mu.Unlock()

	event := r.logger.Info().Str("path", path)
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	event.Msg("artifact written")
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.mu.Lock()
	r.stats.errors++
	r.mu.Unlock()

	event := r.logger.Error().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String())
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	event.Msg(errorString)
}

/*
RecordFinalSessionStats records a terminal summary of a session.

Contract:
  - MUST be called at most once, after the session ended.
  - The summary is derived from the counters of this recorder
    and MUST NOT influence any control flow.
*/
func (r *Recorder) RecordFinalSessionStats(duration time.Duration) {
	r.mu.Lock()
	stats := r.stats
	r.mu.Unlock()
	stats.durationMs = duration.Milliseconds()

	r.logger.Info().
		Int("navigations", stats.navigations).
		Int("cache_hits", stats.cacheHits).
		Int("fetches", stats.fetches).
		Int("errors", stats.errors).
		Int("artifacts", stats.artifacts).
		Int64("duration_ms", stats.durationMs).
		Msg("session finished")
}

type MetadataSink interface {
	RecordNavigation(
		url string,
		mode string,
		outcome string,
		duration time.Duration,
	)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		sizeByte int,
	)
	RecordEviction(key string, remaining int)
	RecordHistory(action HistoryAction, url string, title string)
	RecordArtifact(path string, attrs []Attribute)
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
}

type SessionFinalizer interface {
	RecordFinalSessionStats(duration time.Duration)
}

// NoopSink, struct that implements metadata.MetadataSink but does nothing.
// Components and tests decide whether to inject a Recorder or NoopSink.

type NoopSink struct{}

func (n *NoopSink) RecordNavigation(url string, mode string, outcome string, duration time.Duration) {
}

func (n *NoopSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, sizeByte int) {
}

func (n *NoopSink) RecordEviction(key string, remaining int) {}

func (n *NoopSink) RecordHistory(action HistoryAction, url string, title string) {}

func (n *NoopSink) RecordArtifact(path string, attrs []Attribute) {}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}
