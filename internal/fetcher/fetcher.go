package fetcher

import (
	"context"

	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

// Transport is the asynchronous fetch boundary of a navigation.
// Implementations must abort promptly when ctx is cancelled and must
// report that as a FetchError with ErrCauseCancelled.
type Transport interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
	) (FetchResult, failure.ClassifiedError)
}
