package navigation

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/pjax-nav/internal/fetcher"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

var ErrUnsupportedHistory = errors.New("history api does not support pushState")

type NavigationErrorCause string

const (
	ErrCauseInvalidTarget NavigationErrorCause = "invalid target"
	ErrCauseCrossOrigin   NavigationErrorCause = "cross origin target"
	ErrCauseTransport     NavigationErrorCause = "transport failure"
	ErrCauseRender        NavigationErrorCause = "render failure"
	ErrCauseClosed        NavigationErrorCause = "controller closed"
)

type NavigationError struct {
	Message string
	Cause   NavigationErrorCause
	Err     error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navigation error: %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("navigation error: %s", e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Severity is recoverable when the caller can retry the same navigation.
func (e *NavigationError) Severity() failure.Severity {
	if e.Cause == ErrCauseTransport && failure.IsRecoverable(e.Err) {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func mapNavigationErrorToMetadataCause(err *NavigationError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTransport:
		var fetchErr *fetcher.FetchError
		if errors.As(err.Err, &fetchErr) && fetchErr.StatusCode != 0 {
			return metadata.CauseHTTPStatus
		}
		return metadata.CauseNetworkFailure
	case ErrCauseRender:
		return metadata.CauseContentInvalid
	case ErrCauseInvalidTarget, ErrCauseCrossOrigin, ErrCauseClosed:
		return metadata.CauseUnsupported
	default:
		return metadata.CauseUnknown
	}
}
