package storage_test

import (
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
)

type artifactCapture struct {
	metadata.NoopSink
	artifactPaths []string
	artifactAttrs [][]metadata.Attribute
	errorCauses   []metadata.ErrorCause
}

func (c *artifactCapture) RecordArtifact(path string, attrs []metadata.Attribute) {
	c.artifactPaths = append(c.artifactPaths, path)
	c.artifactAttrs = append(c.artifactAttrs, attrs)
}

func (c *artifactCapture) RecordError(
	_ time.Time,
	_ string,
	_ string,
	cause metadata.ErrorCause,
	_ string,
	_ []metadata.Attribute,
) {
	c.errorCauses = append(c.errorCauses, cause)
}
