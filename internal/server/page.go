package server

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/fetcher"
	"github.com/rohmanhakim/pjax-nav/pkg/hashutil"
)

// errDeclined hands the request to the static file server.
var errDeclined = errors.New("declined")

type pageError struct {
	status int
	err    error
}

func (e *pageError) Error() string {
	return http.StatusText(e.status) + ": " + e.err.Error()
}

func (e *pageError) Unwrap() error {
	return e.err
}

type assembledPage struct {
	body         []byte
	lastModified time.Time
}

func isPjax(r *http.Request) bool {
	_, ok := r.Header[http.CanonicalHeaderKey(fetcher.HeaderPJAX)]
	return ok
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if strings.HasSuffix(r.URL.Path, "/") {
		s.static.ServeHTTP(w, r)
		return
	}

	page, err := s.assemble(r.URL.Path, isPjax(r))
	if errors.Is(err, errDeclined) {
		s.static.ServeHTTP(w, r)
		return
	}
	var pageErr *pageError
	if errors.As(err, &pageErr) {
		if pageErr.status != http.StatusNotFound {
			s.logger.Error().Err(pageErr.err).Str("path", r.URL.Path).Int("status", pageErr.status).Msg("page")
		}
		http.Error(w, http.StatusText(pageErr.status), pageErr.status)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	body := page.body
	if s.minifier != nil {
		minified, err := s.minifier.Bytes("text/html", body)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("minify")
		} else {
			body = minified
		}
	}

	header := w.Header()
	header.Set("Content-Type", "text/html")
	header.Set("Vary", fetcher.HeaderPJAX)
	header.Set("ETag", hashutil.StrongETag(body))
	http.ServeContent(w, r, "", page.lastModified, bytes.NewReader(body))
}

// assemble reads the files making up the response for urlPath.
func (s *Server) assemble(urlPath string, pjax bool) (assembledPage, error) {
	clean := path.Clean("/" + urlPath)
	pagePath := filepath.Join(s.cfg.Root(), filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	parts := []string{pagePath}
	if !pjax {
		parts = []string{s.cfg.HeaderPath(), pagePath, s.cfg.FooterPath()}
	}

	var (
		buf          bytes.Buffer
		lastModified time.Time
	)
	for _, part := range parts {
		if part == "" {
			continue
		}
		info, err := os.Stat(part)
		if err != nil {
			return assembledPage{}, classifyFileError(err)
		}
		if !info.Mode().IsRegular() {
			return assembledPage{}, errDeclined
		}
		if info.Size() == 0 {
			continue
		}
		content, err := os.ReadFile(part)
		if err != nil {
			return assembledPage{}, classifyFileError(err)
		}
		buf.Write(content)
		if info.ModTime().After(lastModified) {
			lastModified = info.ModTime()
		}
	}

	return assembledPage{body: buf.Bytes(), lastModified: lastModified}, nil
}

func classifyFileError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.ENAMETOOLONG):
		return &pageError{status: http.StatusNotFound, err: err}
	case errors.Is(err, fs.ErrPermission):
		return &pageError{status: http.StatusForbidden, err: err}
	default:
		return &pageError{status: http.StatusInternalServerError, err: err}
	}
}
