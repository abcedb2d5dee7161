package session

import (
	"context"
	"io"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/config"
	"github.com/rohmanhakim/pjax-nav/internal/document"
	"github.com/rohmanhakim/pjax-nav/internal/fetcher"
	"github.com/rohmanhakim/pjax-nav/internal/history"
	"github.com/rohmanhakim/pjax-nav/internal/interceptor"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/internal/navigation"
	"github.com/rohmanhakim/pjax-nav/internal/render"
	"github.com/rohmanhakim/pjax-nav/internal/snapshot"
	"github.com/rohmanhakim/pjax-nav/internal/storage"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
	"github.com/rohmanhakim/pjax-nav/pkg/retry"
	"github.com/rohmanhakim/pjax-nav/pkg/timeutil"
	"github.com/rohmanhakim/pjax-nav/pkg/urlutil"
)

/*
Session is a headless pjax client bound to one site.

Open
- Loads the first page as a full document (no pjax header), retrying
  recoverable failures with backoff
- Builds the document, history stack, snapshot store and navigator around it

Run
- Reads one command per line and drives navigations through the interceptor
  or the history stack, exactly as link clicks and back/forward buttons would
- Prints the container as Markdown with numbered links after every settled navigation
- Saves the current view as a Markdown file on request

The session owns its store and navigator; Close releases both.
*/
type Session struct {
	cfg          config.Config
	document     *document.Document
	browser      *history.MemoryBrowser
	store        snapshot.Store
	navigator    navigation.Navigator
	interceptor  *interceptor.Interceptor
	renderer     *render.Renderer
	sink         storage.Sink
	metadataSink metadata.MetadataSink

	page render.Page
}

// initialLoadRetry applies to the first page only; navigations are never retried.
func initialLoadRetry() retry.RetryParam {
	return retry.NewRetryParam(
		100*time.Millisecond,
		time.Now().UnixNano(),
		3,
		timeutil.NewBackoffParam(250*time.Millisecond, 2.0, 2*time.Second),
	)
}

// Open loads cfg.BaseURL() and prepares the session around it.
func Open(
	ctx context.Context,
	cfg config.Config,
	metadataSink metadata.MetadataSink,
) (*Session, error) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}

	transport := fetcher.NewPjaxFetcher(metadataSink, cfg.Timeout(), cfg.UserAgent())
	initial, fetchErr := retry.Retry(ctx, initialLoadRetry(), func(ctx context.Context) (fetcher.FetchResult, failure.ClassifiedError) {
		return transport.Fetch(ctx, fetcher.NewPageFetchParam(cfg.BaseURL()))
	})
	if fetchErr != nil {
		return nil, &SessionError{
			Message: "initial load failed",
			Cause:   ErrCauseInitialLoad,
			Err:     fetchErr,
		}
	}

	doc, docErr := document.Parse(initial.Body(), cfg.Container(), metadataSink)
	if docErr != nil {
		return nil, &SessionError{
			Message: "initial page is unusable",
			Cause:   ErrCauseInitialLoad,
			Err:     docErr,
		}
	}

	store, err := openStore(cfg, metadataSink)
	if err != nil {
		return nil, err
	}

	browser := history.NewMemoryBrowser(
		urlutil.SnapshotKey(cfg.BaseURL()),
		doc.Title(),
		history.WithMetadataSink(metadataSink),
	)

	navigator := navigation.Setup(cfg.NavigationOptions(), navigation.Deps{
		Document:     doc,
		Transport:    transport,
		History:      browser,
		Store:        store,
		MetadataSink: metadataSink,
	})

	session := &Session{
		cfg:          cfg,
		document:     doc,
		browser:      browser,
		store:        store,
		navigator:    navigator,
		interceptor:  interceptor.New(cfg.BaseURL(), browser.Location, navigator),
		renderer:     render.NewRenderer(metadataSink),
		sink:         storage.NewLocalSink(metadataSink),
		metadataSink: metadataSink,
	}
	if err := session.refresh(); err != nil {
		session.Close()
		return nil, &SessionError{
			Message: "initial page is unusable",
			Cause:   ErrCauseInitialLoad,
			Err:     err,
		}
	}
	return session, nil
}

func openStore(cfg config.Config, metadataSink metadata.MetadataSink) (snapshot.Store, error) {
	if cfg.CacheDB() == "" {
		return snapshot.NewMemoryStore(cfg.MaxEntries(), metadataSink), nil
	}
	store, err := snapshot.NewSQLiteStore(cfg.CacheDB(), cfg.MaxEntries(), metadataSink)
	if err != nil {
		return nil, &SessionError{
			Message: "snapshot store unavailable",
			Cause:   ErrCauseStore,
			Err:     err,
		}
	}
	return store, nil
}

func (s *Session) Location() string {
	return s.browser.Location()
}

func (s *Session) Title() string {
	return s.document.Title()
}

// Page is the last rendered view of the container.
func (s *Session) Page() render.Page {
	return s.page
}

func (s *Session) Store() snapshot.Store {
	return s.store
}

func (s *Session) History() *history.MemoryBrowser {
	return s.browser
}

// Close stops the navigator and releases the snapshot store.
func (s *Session) Close() error {
	s.navigator.Close()
	if closer, ok := s.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
