package navigation

import (
	"context"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
)

// Setup wires a controller to its collaborators and captures the
// current location as the first history entry. When the history API
// cannot push entries the returned navigator is inert.
func Setup(options Options, deps Deps) Navigator {
	sink := deps.MetadataSink
	if sink == nil {
		sink = &metadata.NoopSink{}
	}

	if deps.History == nil || !deps.History.SupportsPushState() {
		sink.RecordError(
			time.Now(),
			"navigation",
			"Setup",
			metadata.CauseUnsupported,
			ErrUnsupportedHistory.Error(),
			nil,
		)
		return inertNavigator{}
	}

	deps.MetadataSink = sink
	controller := newController(options, deps)
	controller.start()
	return controller
}

// inertNavigator leaves every navigation to the browser.
type inertNavigator struct{}

func (inertNavigator) Navigate(ctx context.Context, target string, mode Mode) *Request {
	return completedRequest(Result{URL: target, Mode: mode, Outcome: OutcomeInert}, nil)
}

func (inertNavigator) Current() *Request {
	return nil
}

func (inertNavigator) Close() {}
