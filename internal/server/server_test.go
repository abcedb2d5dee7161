package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/config"
	"github.com/rohmanhakim/pjax-nav/internal/server"
	"github.com/rohmanhakim/pjax-nav/pkg/hashutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	older = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func TestPage_PjaxRequestGetsFragmentOnly(t *testing.T) {
	s := newSite(t)
	s.write(t, "header.html", "<html><body>", older)
	s.write(t, "footer.html", "</body></html>", older)
	s.write(t, "docs/intro", "<title>Intro</title><p>intro</p>", newer)

	rec := do(s.handler(t, nil), http.MethodGet, "/docs/intro", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<title>Intro</title><p>intro</p>", rec.Body.String())
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "X-PJAX", rec.Header().Get("Vary"))
	assert.Equal(t, newer.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))
	assert.Equal(t, hashutil.StrongETag(rec.Body.Bytes()), rec.Header().Get("ETag"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))
}

func TestPage_FullRequestWrapsHeaderAndFooter(t *testing.T) {
	s := newSite(t)
	s.write(t, "header.html", "<html><body>", newer)
	s.write(t, "footer.html", "</body></html>", older)
	s.write(t, "docs/intro", "<p>intro</p>", older)

	rec := do(s.handler(t, nil), http.MethodGet, "/docs/intro", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html><body><p>intro</p></body></html>", rec.Body.String())
	assert.Equal(t, newer.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))
}

func TestPage_EmptyPartsAreSkipped(t *testing.T) {
	s := newSite(t)
	s.write(t, "header.html", "", newer)
	s.write(t, "footer.html", "<footer/>", older)
	s.write(t, "page", "<p>page</p>", older)

	rec := do(s.handler(t, nil), http.MethodGet, "/page", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>page</p><footer/>", rec.Body.String())
	// the empty header does not contribute its mtime
	assert.Equal(t, older.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))
}

func TestPage_HeadSendsHeadersOnly(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>page</p>", older)

	rec := do(s.handler(t, nil), http.MethodHead, "/page", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "11", rec.Header().Get("Content-Length"))
}

func TestPage_MethodNotAllowed(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>page</p>", older)
	handler := s.handler(t, nil)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := do(handler, method, "/page", true)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	}
}

func TestPage_Missing(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>page</p>", older)
	handler := s.handler(t, nil)

	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodGet, "/nope", true).Code)
	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodGet, "/page/child", true).Code)

	// header.html and footer.html do not exist
	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodGet, "/page", false).Code)
}

func TestPage_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	s := newSite(t)
	s.write(t, "secret", "<p>secret</p>", older)
	require.NoError(t, os.Chmod(filepath.Join(s.root, "secret"), 0o000))

	rec := do(s.handler(t, nil), http.MethodGet, "/secret", true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPage_TrailingSlashAndDirectoriesFallThrough(t *testing.T) {
	s := newSite(t)
	s.write(t, "docs/index.html", "<p>index</p>", older)
	handler := s.handler(t, nil)

	rec := do(handler, http.MethodGet, "/docs/", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>index</p>", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Vary"))

	// directory without slash is declined; the file server redirects
	rec = do(handler, http.MethodGet, "/docs", true)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
}

func TestPage_PathTraversalStaysInRoot(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>page</p>", older)

	rec := do(s.handler(t, nil), http.MethodGet, "/../../page", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>page</p>", rec.Body.String())
}

func TestPage_ConditionalRequest(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>page</p>", older)
	handler := s.handler(t, nil)

	first := do(handler, http.MethodGet, "/page", true)
	require.Equal(t, http.StatusOK, first.Code)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.Header.Set("X-PJAX", "true")
	req.Header.Set("If-None-Match", first.Header().Get("ETag"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestPage_Minify(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>\n    spaced    out\n</p>\n\n", older)

	rec := do(s.handler(t, func(c *config.Config) { c.WithMinify(true) }), http.MethodGet, "/page", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, rec.Body.Len(), len("<p>\n    spaced    out\n</p>\n\n"))
	assert.Contains(t, rec.Body.String(), "spaced out")
	assert.Equal(t, hashutil.StrongETag(rec.Body.Bytes()), rec.Header().Get("ETag"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newSite(t)
	s.write(t, "page", "<p>page</p>", older)
	cfg, err := config.WithDefault(url.URL{Scheme: "http", Host: "localhost"}).WithRoot(s.root).Build()
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.New(cfg, zerolog.Nop()).Serve(ctx, listener)
	}()

	req, err := http.NewRequest(http.MethodGet, "http://"+listener.Addr().String()+"/page", nil)
	require.NoError(t, err)
	req.Header.Set("X-PJAX", "true")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "<p>page</p>", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
