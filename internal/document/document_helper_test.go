package document_test

import (
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
)

type errorCapture struct {
	metadata.NoopSink
	errors []string
}

func (e *errorCapture) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	errorString string,
	attrs []metadata.Attribute,
) {
	e.errors = append(e.errors, errorString)
}
