package navigation_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/document"
	"github.com/rohmanhakim/pjax-nav/internal/fetcher"
	"github.com/rohmanhakim/pjax-nav/internal/history"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/internal/navigation"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const initialPage = `<!DOCTYPE html>
<html>
<head><title>Home</title></head>
<body>
<div id="pjax-container"><p>home</p></div>
</body>
</html>`

func baseURL() url.URL {
	u, _ := url.Parse("https://example.com")
	return *u
}

func fragment(title string, body string) string {
	return "<title>" + title + "</title><p>" + body + "</p>"
}

// transportMock is a testify mock for fetcher.Transport keyed by request path.
type transportMock struct {
	mock.Mock
}

func (m *transportMock) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	target := fetchParam.URL()
	args := m.Called(ctx, target.RequestURI())
	result := args.Get(0).(fetcher.FetchResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

func (m *transportMock) onPath(path string, body string) {
	target, _ := url.Parse("https://example.com" + path)
	m.On("Fetch", mock.Anything, path).Return(
		fetcher.NewFetchResultForTest(*target, []byte(body), 200, "text/html", nil),
		nil,
	)
}

func (m *transportMock) onPathError(path string, err failure.ClassifiedError) {
	m.On("Fetch", mock.Anything, path).Return(fetcher.FetchResult{}, err)
}

// gatedTransport holds each fetch until its path is released.
// When stubborn, it ignores cancellation and answers anyway.
type gatedTransport struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	bodies   map[string]string
	started  chan string
	stubborn bool
}

func newGatedTransport(stubborn bool) *gatedTransport {
	return &gatedTransport{
		gates:    make(map[string]chan struct{}),
		bodies:   make(map[string]string),
		started:  make(chan string, 16),
		stubborn: stubborn,
	}
}

func (g *gatedTransport) serve(path string, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gates[path] = make(chan struct{})
	g.bodies[path] = body
}

func (g *gatedTransport) release(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[path])
}

func (g *gatedTransport) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	target := fetchParam.URL()
	path := target.RequestURI()

	g.mu.Lock()
	gate := g.gates[path]
	body := g.bodies[path]
	g.mu.Unlock()

	g.started <- path
	if g.stubborn {
		<-gate
	} else {
		select {
		case <-gate:
		case <-ctx.Done():
			return fetcher.FetchResult{}, &fetcher.FetchError{Message: "aborted", Cause: fetcher.ErrCauseCancelled}
		}
	}
	return fetcher.NewFetchResultForTest(target, []byte(body), 200, "text/html", nil), nil
}

// trackedDocument is a real document that counts writes and scroll resets.
type trackedDocument struct {
	*document.Document
	mu           sync.Mutex
	replaceCalls int
	scrollResets int
}

func newTrackedDocument(t *testing.T) *trackedDocument {
	t.Helper()
	doc, err := document.Parse([]byte(initialPage), "#pjax-container", nil)
	require.Nil(t, err)
	return &trackedDocument{Document: doc}
}

func (d *trackedDocument) ReplaceContent(markup string) error {
	d.mu.Lock()
	d.replaceCalls++
	d.mu.Unlock()
	return d.Document.ReplaceContent(markup)
}

func (d *trackedDocument) ScrollToTop() {
	d.mu.Lock()
	d.scrollResets++
	d.mu.Unlock()
	d.Document.ScrollToTop()
}

func (d *trackedDocument) replaces() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.replaceCalls
}

func (d *trackedDocument) resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrollResets
}

func (d *trackedDocument) inner(t *testing.T) string {
	t.Helper()
	inner, err := d.ContainerHTML()
	require.NoError(t, err)
	return inner
}

type afterRecorder struct {
	mu      sync.Mutex
	results []navigation.Result
}

func (a *afterRecorder) record(result navigation.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, result)
}

func (a *afterRecorder) all() []navigation.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]navigation.Result, len(a.results))
	copy(out, a.results)
	return out
}

// errorSink keeps the errors reported to the metadata sink.
type errorSink struct {
	metadata.NoopSink
	mu     sync.Mutex
	events []errorEvent
}

type errorEvent struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

func (s *errorSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, errorEvent{action: action, cause: cause, attrs: attrs})
}

func (s *errorSink) all() []errorEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]errorEvent, len(s.events))
	copy(out, s.events)
	return out
}

type harness struct {
	controller *navigation.Controller
	document   *trackedDocument
	browser    *history.MemoryBrowser
	after      *afterRecorder
	errors     *errorSink
}

func newHarness(
	t *testing.T,
	transport fetcher.Transport,
	configure func(*navigation.Options),
) *harness {
	t.Helper()

	doc := newTrackedDocument(t)
	browser := history.NewMemoryBrowser("/", "Home")
	after := &afterRecorder{}
	sink := &errorSink{}

	options := navigation.DefaultOptions(baseURL())
	options.After = after.record
	if configure != nil {
		configure(&options)
	}

	nav := navigation.Setup(options, navigation.Deps{
		Document:     doc,
		Transport:    transport,
		History:      browser,
		MetadataSink: sink,
	})
	controller, ok := nav.(*navigation.Controller)
	require.True(t, ok)
	t.Cleanup(controller.Close)

	return &harness{
		controller: controller,
		document:   doc,
		browser:    browser,
		after:      after,
		errors:     sink,
	}
}

func (h *harness) navigate(t *testing.T, target string, mode navigation.Mode) (navigation.Result, error) {
	t.Helper()
	req := h.controller.Navigate(context.Background(), target, mode)
	return req.Wait(context.Background())
}

func historyURLs(b *history.MemoryBrowser) ([]string, int) {
	entries, pos := b.Entries()
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, e.URL)
	}
	return urls, pos
}
