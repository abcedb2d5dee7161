package render

import (
	"fmt"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

type RenderErrorCause string

const (
	ErrCauseUnparseable       RenderErrorCause = "unparseable markup"
	ErrCauseConversionFailure RenderErrorCause = "conversion failed"
)

type RenderError struct {
	Message string
	Cause   RenderErrorCause
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error: %s", e.Cause)
}

func (e *RenderError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func mapRenderErrorToMetadataCause(err *RenderError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseUnparseable, ErrCauseConversionFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
