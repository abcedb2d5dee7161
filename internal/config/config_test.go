package config_test

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/build"
	"github.com/rohmanhakim/pjax-nav/internal/config"
)

func baseURL() url.URL {
	return url.URL{Scheme: "https", Host: "example.org"}
}

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath
}

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault(baseURL())

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	gotURL := builtCfg.BaseURL()
	if gotURL.String() != "https://example.org" {
		t.Errorf("expected BaseURL 'https://example.org', got '%s'", gotURL.String())
	}
	if builtCfg.Container() != "#pjax-container" {
		t.Errorf("expected Container '#pjax-container', got '%s'", builtCfg.Container())
	}
	if builtCfg.MaxEntries() != 20 {
		t.Errorf("expected MaxEntries 20, got %d", builtCfg.MaxEntries())
	}
	if !builtCfg.CacheEnabled() {
		t.Error("expected CacheEnabled true")
	}
	if builtCfg.CacheDB() != "" {
		t.Errorf("expected empty CacheDB, got '%s'", builtCfg.CacheDB())
	}
	if !builtCfg.Push() {
		t.Error("expected Push true")
	}
	if builtCfg.Replace() {
		t.Error("expected Replace false")
	}
	if builtCfg.Timeout() != 3*time.Second {
		t.Errorf("expected Timeout 3s, got %v", builtCfg.Timeout())
	}
	if !builtCfg.CacheBust() {
		t.Error("expected CacheBust true")
	}
	if builtCfg.UserAgent() != build.UserAgent() {
		t.Errorf("expected UserAgent '%s', got '%s'", build.UserAgent(), builtCfg.UserAgent())
	}
	if builtCfg.HeaderPath() != "header.html" {
		t.Errorf("expected HeaderPath 'header.html', got '%s'", builtCfg.HeaderPath())
	}
	if builtCfg.FooterPath() != "footer.html" {
		t.Errorf("expected FooterPath 'footer.html', got '%s'", builtCfg.FooterPath())
	}
	if builtCfg.Listen() != ":8080" {
		t.Errorf("expected Listen ':8080', got '%s'", builtCfg.Listen())
	}
	if builtCfg.Minify() {
		t.Error("expected Minify false")
	}
	if builtCfg.OutputDir() != "output" {
		t.Errorf("expected OutputDir 'output', got '%s'", builtCfg.OutputDir())
	}
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (config.Config, error)
	}{
		{
			name: "relative base url",
			build: func() (config.Config, error) {
				return config.WithDefault(url.URL{Path: "/docs"}).Build()
			},
		},
		{
			name: "non http scheme",
			build: func() (config.Config, error) {
				return config.WithDefault(url.URL{Scheme: "ftp", Host: "example.org"}).Build()
			},
		},
		{
			name: "empty container",
			build: func() (config.Config, error) {
				return config.WithDefault(baseURL()).WithContainer("  ").Build()
			},
		},
		{
			name: "negative max entries",
			build: func() (config.Config, error) {
				return config.WithDefault(baseURL()).WithMaxEntries(-1).Build()
			},
		},
		{
			name: "zero timeout",
			build: func() (config.Config, error) {
				return config.WithDefault(baseURL()).WithTimeout(0).Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBuilder_Overrides(t *testing.T) {
	cfg, err := config.WithDefault(baseURL()).
		WithContainer("main").
		WithMaxEntries(0).
		WithCacheEnabled(false).
		WithCacheDB("/tmp/snapshots.db").
		WithPush(false).
		WithReplace(true).
		WithTimeout(time.Second).
		WithCacheBust(false).
		WithUserAgent("TestBot/1.0").
		WithRoot("/srv/site").
		WithHeader("parts/head.html").
		WithFooter("/etc/pjax/foot.html").
		WithListen("127.0.0.1:9000").
		WithMinify(true).
		WithOutputDir("/tmp/pages").
		Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.Container() != "main" {
		t.Errorf("expected Container 'main', got '%s'", cfg.Container())
	}
	if cfg.MaxEntries() != 0 {
		t.Errorf("expected MaxEntries 0, got %d", cfg.MaxEntries())
	}
	if cfg.CacheEnabled() || cfg.Push() || !cfg.Replace() || cfg.CacheBust() || !cfg.Minify() {
		t.Errorf("unexpected flags: cache=%v push=%v replace=%v bust=%v minify=%v",
			cfg.CacheEnabled(), cfg.Push(), cfg.Replace(), cfg.CacheBust(), cfg.Minify())
	}
	if cfg.CacheDB() != "/tmp/snapshots.db" {
		t.Errorf("expected CacheDB '/tmp/snapshots.db', got '%s'", cfg.CacheDB())
	}
	if cfg.Timeout() != time.Second {
		t.Errorf("expected Timeout 1s, got %v", cfg.Timeout())
	}
	if cfg.UserAgent() != "TestBot/1.0" {
		t.Errorf("expected UserAgent 'TestBot/1.0', got '%s'", cfg.UserAgent())
	}
	if cfg.HeaderPath() != filepath.Join("/srv/site", "parts/head.html") {
		t.Errorf("unexpected HeaderPath '%s'", cfg.HeaderPath())
	}
	if cfg.FooterPath() != "/etc/pjax/foot.html" {
		t.Errorf("expected absolute FooterPath kept, got '%s'", cfg.FooterPath())
	}
	if cfg.Listen() != "127.0.0.1:9000" {
		t.Errorf("expected Listen '127.0.0.1:9000', got '%s'", cfg.Listen())
	}
	if cfg.OutputDir() != "/tmp/pages" {
		t.Errorf("expected OutputDir '/tmp/pages', got '%s'", cfg.OutputDir())
	}
}

func TestBuild_ReturnsValue(t *testing.T) {
	builder := config.WithDefault(baseURL())
	built, err := builder.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	builder.WithMaxEntries(99)

	if built.MaxEntries() != 20 {
		t.Error("Build() appears to return reference, not value")
	}
}

func TestNavigationOptions(t *testing.T) {
	cfg, err := config.WithDefault(baseURL()).
		WithMaxEntries(5).
		WithPush(false).
		WithReplace(true).
		WithCacheBust(false).
		Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	options := cfg.NavigationOptions()

	if options.BaseURL.String() != "https://example.org" {
		t.Errorf("unexpected BaseURL %s", options.BaseURL.String())
	}
	if options.MaxEntries != 5 || !options.CacheEnabled || options.Push || !options.Replace || options.CacheBust {
		t.Errorf("unexpected options: %+v", options)
	}
	if options.Before != nil || options.After != nil {
		t.Error("expected callbacks to be left unset")
	}
}

func TestWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile("/nonexistent/path/config.json")

	if err == nil {
		t.Fatal("expected error for non-existent file, got nil")
	}
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got: %v", err)
	}
}

func TestWithConfigFile_InvalidJSON(t *testing.T) {
	configPath := writeConfig(t, "invalid.json", "{invalid json content}")

	_, err := config.WithConfigFile(configPath)

	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got: %v", err)
	}
}

func TestWithConfigFile_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", "baseUrl: [unterminated")

	_, err := config.WithConfigFile(configPath)

	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got: %v", err)
	}
}

func TestWithConfigFile_ValidJSON(t *testing.T) {
	configPath := writeConfig(t, "config.json", `{
  "baseUrl": "https://docs.example.com/start",
  "container": "#main",
  "maxEntries": 0,
  "cacheEnabled": false,
  "push": false,
  "replace": true,
  "timeout": 5000000000,
  "cacheBust": false,
  "userAgent": "TestBot/1.0",
  "root": "site",
  "listen": ":9090",
  "minify": true
}`)

	cfg, err := config.WithConfigFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error loading valid config: %v", err)
	}

	gotURL := cfg.BaseURL()
	if gotURL.String() != "https://docs.example.com/start" {
		t.Errorf("unexpected BaseURL %s", gotURL.String())
	}
	if cfg.Container() != "#main" {
		t.Errorf("expected Container '#main', got '%s'", cfg.Container())
	}
	if cfg.MaxEntries() != 0 {
		t.Errorf("expected explicit MaxEntries 0, got %d", cfg.MaxEntries())
	}
	if cfg.CacheEnabled() || cfg.Push() || !cfg.Replace() || cfg.CacheBust() || !cfg.Minify() {
		t.Error("explicit booleans were not applied")
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected Timeout 5s, got %v", cfg.Timeout())
	}
	if cfg.HeaderPath() != filepath.Join("site", "header.html") {
		t.Errorf("unexpected HeaderPath '%s'", cfg.HeaderPath())
	}
	if cfg.Listen() != ":9090" {
		t.Errorf("expected Listen ':9090', got '%s'", cfg.Listen())
	}
}

func TestWithConfigFile_ValidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yml", `
baseUrl: http://localhost:8080/
container: "#content"
timeout: 750ms
cacheDb: snapshots.db
header: top.html
footer: bottom.html
outputDir: saved
`)

	cfg, err := config.WithConfigFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error loading valid config: %v", err)
	}

	if cfg.BaseURL().Host != "localhost:8080" {
		t.Errorf("unexpected BaseURL host %s", cfg.BaseURL().Host)
	}
	if cfg.Container() != "#content" {
		t.Errorf("expected Container '#content', got '%s'", cfg.Container())
	}
	if cfg.Timeout() != 750*time.Millisecond {
		t.Errorf("expected Timeout 750ms, got %v", cfg.Timeout())
	}
	if cfg.CacheDB() != "snapshots.db" {
		t.Errorf("expected CacheDB 'snapshots.db', got '%s'", cfg.CacheDB())
	}
	if cfg.HeaderPath() != "top.html" || cfg.FooterPath() != "bottom.html" {
		t.Errorf("unexpected header/footer %s %s", cfg.HeaderPath(), cfg.FooterPath())
	}
	if cfg.OutputDir() != "saved" {
		t.Errorf("expected OutputDir 'saved', got '%s'", cfg.OutputDir())
	}

	// omitted keys keep their defaults
	if cfg.MaxEntries() != 20 || !cfg.CacheEnabled() || !cfg.Push() || cfg.Replace() || !cfg.CacheBust() {
		t.Error("omitted keys should keep defaults")
	}
}

func TestWithConfigFile_MissingBaseURL(t *testing.T) {
	configPath := writeConfig(t, "config.json", `{"container": "#main"}`)

	_, err := config.WithConfigFile(configPath)

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got: %v", err)
	}
}
