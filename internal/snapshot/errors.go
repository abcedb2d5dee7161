package snapshot

import (
	"fmt"

	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseOpenFailed  StoreErrorCause = "failed to open snapshot database"
	ErrCauseQueryFailed StoreErrorCause = "snapshot query failed"
)

type StoreError struct {
	Message string
	Cause   StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("snapshot store error: %s", e.Cause)
}

func (e *StoreError) Severity() failure.Severity {
	return failure.SeverityFatal
}
