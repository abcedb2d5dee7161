package retry

import (
	"fmt"

	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt       RetryErrorCause = "zero attempt"
	ErrExhaustedAttempts RetryErrorCause = "exhausted attempt"
)

type RetryError struct {
	Message string
	Cause   RetryErrorCause
	// Last is the error returned by the final attempt.
	Last failure.ClassifiedError
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry error: %s, %s", e.Cause, e.Message)
}

func (e *RetryError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}

// Severity is fatal: the caller has already spent its attempts.
func (e *RetryError) Severity() failure.Severity {
	return failure.SeverityFatal
}
