package navigation

import (
	"context"
	"sync"
)

// Request is the handle for one navigation. At most one request per
// controller is unsettled at a time.
type Request struct {
	url    string
	mode   Mode
	cancel context.CancelFunc

	// guarded by the owning controller's mutex
	settled bool

	result    Result
	err       error
	done      chan struct{}
	closeOnce sync.Once
}

func newRequest(url string, mode Mode, cancel context.CancelFunc) *Request {
	if cancel == nil {
		cancel = func() {}
	}
	return &Request{
		url:    url,
		mode:   mode,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// completedRequest returns a request that is already settled and done.
func completedRequest(result Result, err error) *Request {
	r := newRequest(result.URL, result.Mode, nil)
	r.settle(result, err)
	r.finish()
	return r
}

func (r *Request) URL() string {
	return r.url
}

func (r *Request) Mode() Mode {
	return r.mode
}

// Done is closed once the navigation has settled and its callbacks have run.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

func (r *Request) Completed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the request completes or ctx ends.
// A superseded request completes with OutcomeSuperseded and a nil error.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Request) settle(result Result, err error) {
	r.settled = true
	r.result = result
	r.err = err
}

func (r *Request) finish() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}
