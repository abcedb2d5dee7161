package navigation

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/fetcher"
	"github.com/rohmanhakim/pjax-nav/internal/history"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/internal/snapshot"
	"github.com/rohmanhakim/pjax-nav/pkg/urlutil"
)

/*
Responsibilities
- Resolve a navigation target to its snapshot key
- Serve cached snapshots synchronously, fetch everything else
- Keep at most one navigation outstanding, cancelling the older one
- Store fetched snapshots and signal the history synchronizer

Write Discipline
- Container, store and history writes happen only under mu
- A fetch result is applied only while its request is still current
  and its context is live; anything else is dropped
- Callbacks run outside mu
*/

type Navigator interface {
	Navigate(ctx context.Context, target string, mode Mode) *Request
	Current() *Request
	Close()
}

type Controller struct {
	mu      sync.Mutex
	current *Request
	closed  bool

	options      Options
	document     Document
	transport    fetcher.Transport
	api          history.API
	store        snapshot.Store
	synchronizer *history.Synchronizer
	metadataSink metadata.MetadataSink

	baseCtx    context.Context
	baseCancel context.CancelFunc
	inflight   sync.WaitGroup
	now        func() time.Time
}

func newController(options Options, deps Deps) *Controller {
	sink := deps.MetadataSink
	if sink == nil {
		sink = &metadata.NoopSink{}
	}
	store := deps.Store
	if store == nil {
		store = snapshot.NewMemoryStore(options.MaxEntries, sink)
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &Controller{
		options:      options,
		document:     deps.Document,
		transport:    deps.Transport,
		api:          deps.History,
		store:        store,
		synchronizer: history.NewSynchronizer(deps.History, options.Push, options.Replace, sink),
		metadataSink: sink,
		baseCtx:      baseCtx,
		baseCancel:   baseCancel,
		now:          time.Now,
	}
}

func (c *Controller) start() {
	c.synchronizer.Start(c.baseCtx, c.document.Title(), func(ctx context.Context, location string) {
		c.Navigate(ctx, location, ModePopState)
	})
}

// Navigate starts a navigation to target. An empty target means the
// current location. The returned request is already complete on a cache hit.
func (c *Controller) Navigate(ctx context.Context, target string, mode Mode) *Request {
	startedAt := c.now()

	key, navErr := c.resolve(target)
	if navErr != nil {
		c.recordError("Navigate", target, navErr)
		return completedRequest(Result{
			URL:     target,
			Mode:    mode,
			Outcome: OutcomeFailed,
			Err:     navErr,
		}, navErr)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		closedErr := &NavigationError{Message: "navigate after close", Cause: ErrCauseClosed}
		return completedRequest(Result{URL: key, Mode: mode, Outcome: OutcomeFailed, Err: closedErr}, closedErr)
	}
	c.supersedeLocked()
	reqCtx, cancel := context.WithCancel(ctx)
	req := newRequest(key, mode, cancel)
	c.current = req
	c.mu.Unlock()

	if c.options.Before != nil {
		c.options.Before(key)
	}

	c.mu.Lock()
	if c.current != req {
		// superseded while the before callback ran
		c.mu.Unlock()
		return req
	}

	if snap, ok := c.lookupLocked(key); ok {
		result, err := c.renderSnapshotLocked(req, snap, startedAt)
		c.mu.Unlock()
		cancel()
		c.finish(req, result, err)
		return req
	}

	c.synchronizer.Await(key)
	c.inflight.Add(1)
	c.mu.Unlock()

	go c.fetch(reqCtx, req, startedAt)
	return req
}

// supersedeLocked cancels the outstanding request, if any.
func (c *Controller) supersedeLocked() {
	prev := c.current
	if prev == nil || prev.settled {
		return
	}
	prev.cancel()
	prev.settle(Result{URL: prev.url, Mode: prev.mode, Outcome: OutcomeSuperseded}, nil)
	prev.finish()
	c.synchronizer.Abandon()
	c.metadataSink.RecordNavigation(prev.url, prev.mode.String(), OutcomeSuperseded.String(), 0)
}

func (c *Controller) lookupLocked(key string) (snapshot.Snapshot, bool) {
	if !c.options.CacheEnabled {
		return snapshot.Snapshot{}, false
	}
	snap, ok := c.store.Lookup(key)
	if !ok || !snap.Servable() {
		return snapshot.Snapshot{}, false
	}
	return snap, true
}

func (c *Controller) renderSnapshotLocked(req *Request, snap snapshot.Snapshot, startedAt time.Time) (Result, error) {
	if err := c.document.ReplaceContent(snap.Content); err != nil {
		navErr := &NavigationError{Message: "cached content could not be rendered", Cause: ErrCauseRender, Err: err}
		result := Result{URL: req.url, Mode: req.mode, Outcome: OutcomeFailed, Err: navErr, Duration: c.now().Sub(startedAt)}
		req.settle(result, navErr)
		c.recordError("renderSnapshot", req.url, navErr)
		return result, navErr
	}

	title := snap.Title
	if title == "" {
		title = c.document.Title()
	}
	c.synchronizer.Signal(history.SignalReplaceOrConfirm, req.url, title)

	result := Result{
		URL:      req.url,
		Title:    title,
		Mode:     req.mode,
		Outcome:  OutcomeCacheHit,
		Duration: c.now().Sub(startedAt),
	}
	req.settle(result, nil)
	return result, nil
}

func (c *Controller) fetch(ctx context.Context, req *Request, startedAt time.Time) {
	defer c.inflight.Done()
	defer req.cancel()

	target := c.options.BaseURL
	if ref, err := url.Parse(req.url); err == nil {
		target = *c.options.BaseURL.ResolveReference(ref)
	}

	fetched, fetchErr := c.transport.Fetch(ctx, fetcher.NewFetchParam(target, c.options.CacheBust))

	c.mu.Lock()
	if c.current != req || req.settled {
		// the superseding navigation already completed req
		c.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		c.synchronizer.Abandon()
		req.settle(Result{URL: req.url, Mode: req.mode, Outcome: OutcomeSuperseded}, nil)
		c.mu.Unlock()
		c.metadataSink.RecordNavigation(req.url, req.mode.String(), OutcomeSuperseded.String(), c.now().Sub(startedAt))
		req.finish()
		return
	}

	if fetchErr != nil {
		c.synchronizer.Abandon()
		navErr := &NavigationError{Message: fetchErr.Error(), Cause: ErrCauseTransport, Err: fetchErr}
		result := Result{URL: req.url, Mode: req.mode, Outcome: OutcomeFailed, Err: navErr, Duration: c.now().Sub(startedAt)}
		req.settle(result, navErr)
		c.mu.Unlock()
		c.recordError("fetch", req.url, navErr)
		c.finish(req, result, navErr)
		return
	}

	content := string(fetched.Body())
	if err := c.document.ReplaceContent(content); err != nil {
		c.synchronizer.Abandon()
		navErr := &NavigationError{Message: "fetched content could not be rendered", Cause: ErrCauseRender, Err: err}
		result := Result{URL: req.url, Mode: req.mode, Outcome: OutcomeFailed, Err: navErr, Duration: c.now().Sub(startedAt)}
		req.settle(result, navErr)
		c.mu.Unlock()
		c.recordError("fetch", req.url, navErr)
		c.finish(req, result, navErr)
		return
	}

	title := c.document.Title()
	if c.options.CacheEnabled && c.store.Capacity() > 0 {
		c.store.Put(snapshot.Snapshot{URL: req.url, Title: title, Content: content})
	}

	// traversal already moved the history pointer; pushing would drop the forward stack
	signal := history.SignalPushOrReplace
	if req.mode == ModePopState {
		signal = history.SignalReplaceOrConfirm
	}
	c.synchronizer.Signal(signal, req.url, title)

	result := Result{
		URL:      req.url,
		Title:    title,
		Mode:     req.mode,
		Outcome:  OutcomeFetched,
		Duration: c.now().Sub(startedAt),
	}
	req.settle(result, nil)
	c.mu.Unlock()

	c.finish(req, result, nil)
}

// finish runs the settle callbacks and then marks req done.
func (c *Controller) finish(req *Request, result Result, err error) {
	defer req.finish()

	c.metadataSink.RecordNavigation(result.URL, result.Mode.String(), result.Outcome.String(), result.Duration)

	if c.options.After != nil {
		c.options.After(result)
	}
	if err == nil && result.Mode == ModeClick {
		c.document.ScrollToTop()
	}
}

func (c *Controller) resolve(target string) (string, *NavigationError) {
	location := c.api.Location()
	if target == "" {
		return location, nil
	}

	base := c.options.BaseURL
	if current, err := url.Parse(location); err == nil {
		base = *c.options.BaseURL.ResolveReference(current)
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", &NavigationError{Message: err.Error(), Cause: ErrCauseInvalidTarget, Err: err}
	}
	resolved := base.ResolveReference(ref)
	if !urlutil.SameOrigin(*resolved, c.options.BaseURL) {
		return "", &NavigationError{
			Message: "target " + resolved.String() + " is not on " + c.options.BaseURL.Host,
			Cause:   ErrCauseCrossOrigin,
		}
	}
	return urlutil.SnapshotKey(*resolved), nil
}

// Current returns the most recent request, settled or not.
func (c *Controller) Current() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

func (c *Controller) Store() snapshot.Store {
	return c.store
}

func (c *Controller) Synchronizer() *history.Synchronizer {
	return c.synchronizer
}

// Close cancels the outstanding request, stops listening to traversal
// and waits for in-flight fetches to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.supersedeLocked()
	c.mu.Unlock()

	c.synchronizer.Stop()
	c.baseCancel()
	c.inflight.Wait()
}

func (c *Controller) recordError(action string, target string, err *NavigationError) {
	c.metadataSink.RecordError(
		c.now(),
		"navigation",
		"Controller."+action,
		mapNavigationErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, target),
			metadata.NewAttr(metadata.AttrMessage, err.Message),
		},
	)
}
