package document

import (
	"fmt"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
)

type DocumentErrorCause string

const (
	ErrCauseUnparseable       DocumentErrorCause = "unparseable markup"
	ErrCauseContainerNotFound DocumentErrorCause = "container not found"
)

type DocumentError struct {
	Message string
	Cause   DocumentErrorCause
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document error: %s", e.Cause)
}

func (e *DocumentError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func mapDocumentErrorToMetadataCause(err *DocumentError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseUnparseable, ErrCauseContainerNotFound:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
