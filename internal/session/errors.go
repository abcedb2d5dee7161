package session

import (
	"fmt"

	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

type SessionErrorCause string

const (
	ErrCauseInitialLoad SessionErrorCause = "initial load failed"
	ErrCauseStore       SessionErrorCause = "store unavailable"
)

type SessionError struct {
	Message string
	Cause   SessionErrorCause
	Err     error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("session error: %s", e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Severity is always fatal: a session that cannot open has nothing to navigate.
func (e *SessionError) Severity() failure.Severity {
	return failure.SeverityFatal
}
