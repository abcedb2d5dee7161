package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseCancelled             FetchErrorCause = "cancelled"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseInvalidRequest        FetchErrorCause = "invalid request"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequest4xx            FetchErrorCause = "4xx"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
)

type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether a caller-level retry could succeed.
// The fetcher itself never retries.
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// IsCancelled reports whether the fetch was aborted by its context,
// which is how a superseded navigation ends.
func (e *FetchError) IsCancelled() bool {
	return e.Cause == ErrCauseCancelled
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseRequest4xx, ErrCauseRequest5xx, ErrCauseRedirectLimitExceeded:
		return metadata.CauseHTTPStatus
	default:
		return metadata.CauseUnknown
	}
}
