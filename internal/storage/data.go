package storage

// Page is a rendered navigation result ready to be persisted.
type Page struct {
	// Absolute URL the page was navigated to.
	SourceURL string
	Title     string
	Markdown  []byte
}

// frontmatter heads every written file.
type frontmatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title,omitempty"`
	ContentHash string `yaml:"content_hash"`
}

// Persistence
type WriteResult struct {
	urlHash     string // identity (filename without extension)
	path        string
	contentHash string
}

func NewWriteResult(
	urlHash string,
	path string,
	contentHash string,
) WriteResult {
	return WriteResult{
		urlHash:     urlHash,
		path:        path,
		contentHash: contentHash,
	}
}

func (w *WriteResult) URLHash() string {
	return w.urlHash
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
