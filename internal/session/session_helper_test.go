package session_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/config"
	"github.com/rohmanhakim/pjax-nav/internal/server"
	"github.com/rohmanhakim/pjax-nav/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	headerHTML = `<html><head><title>Docs</title></head><body><div id="pjax-container">`
	footerHTML = `</div></body></html>`
	pageA      = `<h1>Page A</h1><p><a href="/b.html">to b</a> <a href="https://elsewhere.test/x">out</a> <a href="#top">top</a></p>`
	pageB      = `<title>Page B</title><h1>Page B</h1><p><a href="a.html">back to a</a></p>`
)

// newSite serves a two-page site through the fragment server.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"header.html": headerHTML,
		"footer.html": footerHTML,
		"a.html":      pageA,
		"b.html":      pageB,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	cfg, err := config.WithDefault(url.URL{Scheme: "http", Host: "localhost"}).WithRoot(root).Build()
	require.NoError(t, err)

	srv := httptest.NewServer(server.New(cfg, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func sessionConfig(t *testing.T, srv *httptest.Server, path string, configure func(*config.Config)) config.Config {
	t.Helper()
	base, err := url.Parse(srv.URL + path)
	require.NoError(t, err)

	builder := config.WithDefault(*base).WithTimeout(2 * time.Second)
	if configure != nil {
		configure(builder)
	}
	cfg, err := builder.Build()
	require.NoError(t, err)
	return cfg
}

func openSession(t *testing.T, cfg config.Config) *session.Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := session.Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// execute runs one command line and returns what it printed.
func execute(t *testing.T, s *session.Session, line string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out strings.Builder
	quit, err := s.Execute(ctx, line, &out)
	require.NoError(t, err)
	require.False(t, quit)
	return out.String()
}
