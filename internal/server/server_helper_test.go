package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/config"
	"github.com/rohmanhakim/pjax-nav/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type site struct {
	root string
}

func newSite(t *testing.T) *site {
	t.Helper()
	return &site{root: t.TempDir()}
}

func (s *site) write(t *testing.T, name string, content string, modTime time.Time) {
	t.Helper()
	target := filepath.Join(s.root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte(content), 0o644))
	if !modTime.IsZero() {
		require.NoError(t, os.Chtimes(target, modTime, modTime))
	}
}

func (s *site) handler(t *testing.T, configure func(*config.Config)) http.Handler {
	t.Helper()
	builder := config.WithDefault(url.URL{Scheme: "http", Host: "localhost"}).WithRoot(s.root)
	if configure != nil {
		configure(builder)
	}
	cfg, err := builder.Build()
	require.NoError(t, err)
	return server.New(cfg, zerolog.Nop()).Handler()
}

func do(handler http.Handler, method string, target string, pjax bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if pjax {
		req.Header.Set("X-PJAX", "true")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
