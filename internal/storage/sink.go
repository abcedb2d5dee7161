package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
	"github.com/rohmanhakim/pjax-nav/pkg/fileutil"
	"github.com/rohmanhakim/pjax-nav/pkg/hashutil"
	"gopkg.in/yaml.v3"
)

/*
Responsibilities
- Persist rendered pages as Markdown files with YAML frontmatter
- Ensure deterministic filenames

Output Characteristics
- One file per source URL: <outputDir>/<url hash>.md
- Idempotent writes
- Overwrite-safe reruns
*/

// urlHashLength is the number of hex characters of the URL digest used as filename.
const urlHashLength = 12

type Sink interface {
	Write(outputDir string, page Page) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) *LocalSink {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	outputDir string,
	page Page,
) (WriteResult, failure.ClassifiedError) {
	writeResult, storageError := write(outputDir, page)
	if storageError != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			storageError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, page.SourceURL),
				metadata.NewAttr(metadata.AttrPath, storageError.Path),
				metadata.NewAttr(metadata.AttrMessage, storageError.Message),
			},
		)
		return WriteResult{}, storageError
	}

	s.metadataSink.RecordArtifact(
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, page.SourceURL),
			metadata.NewAttr(metadata.AttrDigest, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func write(outputDir string, page Page) (WriteResult, *StorageError) {
	if page.SourceURL == "" {
		return WriteResult{}, &StorageError{
			Message: "page has no source url",
			Cause:   ErrCauseEmptySource,
		}
	}

	urlHash := hashutil.DigestString(page.SourceURL)[:urlHashLength]
	contentHash := hashutil.Digest(page.Markdown)

	if err := fileutil.EnsureDir(outputDir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: failure.IsRecoverable(err),
			Cause:     ErrCausePathError,
			Path:      outputDir,
		}
	}

	header, err := yaml.Marshal(frontmatter{
		Source:      page.SourceURL,
		Title:       page.Title,
		ContentHash: contentHash,
	})
	if err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailed,
		}
	}

	var content bytes.Buffer
	content.WriteString("---\n")
	content.Write(header)
	content.WriteString("---\n\n")
	content.Write(page.Markdown)
	if len(page.Markdown) > 0 && page.Markdown[len(page.Markdown)-1] != '\n' {
		content.WriteByte('\n')
	}

	fullPath := filepath.Join(outputDir, urlHash+".md")
	if err := fileutil.WriteFileAtomic(fullPath, content.Bytes()); err != nil {
		cause := ErrCauseWriteFailure
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) && fileErr.Cause == fileutil.ErrCauseDiskFull {
			cause = ErrCauseDiskFull
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: failure.IsRecoverable(err),
			Cause:     cause,
			Path:      fullPath,
		}
	}

	return NewWriteResult(urlHash, fullPath, contentHash), nil
}
