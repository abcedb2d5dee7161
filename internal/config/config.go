package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/build"
	"github.com/rohmanhakim/pjax-nav/internal/navigation"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//===============
	// Session
	//===============
	// Page the session opens first. Its scheme and host are the navigation origin.
	baseURL url.URL
	// CSS selector of the element whose children are swapped on navigation
	container string

	//===============
	// Snapshot cache
	//===============
	// Maximum number of snapshots kept; 0 disables caching
	maxEntries int
	// Whether fetched fragments are stored at all
	cacheEnabled bool
	// SQLite file snapshots are persisted to. Empty keeps them in memory
	cacheDB string

	//===============
	// History
	//===============
	// Push a new entry after a fetched navigation
	push bool
	// Replace the active entry after a fetched navigation when push is off
	replace bool

	//===============
	// Fetch
	//===============
	// Maximum time of a single fragment request
	timeout time.Duration
	// Append a timestamp parameter so intermediaries never serve a cached full page
	cacheBust bool
	// User agent sent with every request
	userAgent string

	//===============
	// Fragment server
	//===============
	// Directory pages are served from
	root string
	// Markup prepended to non-pjax responses, relative to root
	header string
	// Markup appended to non-pjax responses, relative to root
	footer string
	// Address the server listens on
	listen string
	// Minify html responses
	minify bool
	// Directory saved pages are written to
	outputDir string
}

type configDTO struct {
	BaseURL      string        `json:"baseUrl" yaml:"baseUrl"`
	Container    string        `json:"container,omitempty" yaml:"container,omitempty"`
	MaxEntries   *int          `json:"maxEntries,omitempty" yaml:"maxEntries,omitempty"`
	CacheEnabled *bool         `json:"cacheEnabled,omitempty" yaml:"cacheEnabled,omitempty"`
	CacheDB      string        `json:"cacheDb,omitempty" yaml:"cacheDb,omitempty"`
	Push         *bool         `json:"push,omitempty" yaml:"push,omitempty"`
	Replace      *bool         `json:"replace,omitempty" yaml:"replace,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	CacheBust    *bool         `json:"cacheBust,omitempty" yaml:"cacheBust,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Root         string        `json:"root,omitempty" yaml:"root,omitempty"`
	Header       string        `json:"header,omitempty" yaml:"header,omitempty"`
	Footer       string        `json:"footer,omitempty" yaml:"footer,omitempty"`
	Listen       string        `json:"listen,omitempty" yaml:"listen,omitempty"`
	Minify       bool          `json:"minify,omitempty" yaml:"minify,omitempty"`
	OutputDir    string        `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	baseURL, err := url.Parse(dto.BaseURL)
	if err != nil {
		return Config{}, fmt.Errorf("%w: baseUrl: %s", ErrInvalidConfig, err.Error())
	}

	// Start with default config
	builder := WithDefault(*baseURL)

	if dto.Container != "" {
		builder.container = dto.Container
	}
	// Pointer fields distinguish an explicit zero or false from an omitted key
	if dto.MaxEntries != nil {
		builder.maxEntries = *dto.MaxEntries
	}
	if dto.CacheEnabled != nil {
		builder.cacheEnabled = *dto.CacheEnabled
	}
	builder.cacheDB = dto.CacheDB
	if dto.Push != nil {
		builder.push = *dto.Push
	}
	if dto.Replace != nil {
		builder.replace = *dto.Replace
	}
	if dto.Timeout != 0 {
		builder.timeout = dto.Timeout
	}
	if dto.CacheBust != nil {
		builder.cacheBust = *dto.CacheBust
	}
	if dto.UserAgent != "" {
		builder.userAgent = dto.UserAgent
	}
	if dto.Root != "" {
		builder.root = dto.Root
	}
	if dto.Header != "" {
		builder.header = dto.Header
	}
	if dto.Footer != "" {
		builder.footer = dto.Footer
	}
	if dto.Listen != "" {
		builder.listen = dto.Listen
	}
	builder.minify = dto.Minify
	if dto.OutputDir != "" {
		builder.outputDir = dto.OutputDir
	}

	return builder.Build()
}

// WithConfigFile loads a config file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		err = json.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config for a session opened at baseURL with default values for all other fields.
// baseURL is mandatory and must be an absolute http(s) URL; Build reports an error otherwise.
func WithDefault(baseURL url.URL) *Config {
	defaultConfig := Config{
		baseURL:      baseURL,
		container:    "#pjax-container",
		maxEntries:   20,
		cacheEnabled: true,
		cacheDB:      "",
		push:         true,
		replace:      false,
		timeout:      3 * time.Second,
		cacheBust:    true,
		userAgent:    build.UserAgent(),
		root:         ".",
		header:       "header.html",
		footer:       "footer.html",
		listen:       ":8080",
		minify:       false,
		outputDir:    "output",
	}
	return &defaultConfig
}

func (c *Config) WithBaseURL(baseURL url.URL) *Config {
	c.baseURL = baseURL
	return c
}

func (c *Config) WithContainer(selector string) *Config {
	c.container = selector
	return c
}

func (c *Config) WithMaxEntries(maxEntries int) *Config {
	c.maxEntries = maxEntries
	return c
}

func (c *Config) WithCacheEnabled(enabled bool) *Config {
	c.cacheEnabled = enabled
	return c
}

func (c *Config) WithCacheDB(path string) *Config {
	c.cacheDB = path
	return c
}

func (c *Config) WithPush(push bool) *Config {
	c.push = push
	return c
}

func (c *Config) WithReplace(replace bool) *Config {
	c.replace = replace
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithCacheBust(cacheBust bool) *Config {
	c.cacheBust = cacheBust
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithRoot(root string) *Config {
	c.root = root
	return c
}

func (c *Config) WithHeader(header string) *Config {
	c.header = header
	return c
}

func (c *Config) WithFooter(footer string) *Config {
	c.footer = footer
	return c
}

func (c *Config) WithListen(listen string) *Config {
	c.listen = listen
	return c
}

func (c *Config) WithOutputDir(dir string) *Config {
	c.outputDir = dir
	return c
}

func (c *Config) WithMinify(minify bool) *Config {
	c.minify = minify
	return c
}

func (c *Config) Build() (Config, error) {
	if c.baseURL.Scheme != "http" && c.baseURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: baseUrl must be an http or https URL, got %q", ErrInvalidConfig, c.baseURL.String())
	}
	if c.baseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: baseUrl has no host", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.container) == "" {
		return Config{}, fmt.Errorf("%w: container selector cannot be empty", ErrInvalidConfig)
	}
	if c.maxEntries < 0 {
		return Config{}, fmt.Errorf("%w: maxEntries cannot be negative", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	return *c, nil
}

// NavigationOptions maps the config onto controller options.
// Callbacks are left for the caller to set.
func (c Config) NavigationOptions() navigation.Options {
	options := navigation.DefaultOptions(c.baseURL)
	options.MaxEntries = c.maxEntries
	options.CacheEnabled = c.cacheEnabled
	options.Push = c.push
	options.Replace = c.replace
	options.CacheBust = c.cacheBust
	return options
}

func (c Config) BaseURL() url.URL {
	return c.baseURL
}

func (c Config) Container() string {
	return c.container
}

func (c Config) MaxEntries() int {
	return c.maxEntries
}

func (c Config) CacheEnabled() bool {
	return c.cacheEnabled
}

func (c Config) CacheDB() string {
	return c.cacheDB
}

func (c Config) Push() bool {
	return c.push
}

func (c Config) Replace() bool {
	return c.replace
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) CacheBust() bool {
	return c.cacheBust
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Root() string {
	return c.root
}

// HeaderPath resolves the header file against the root directory.
func (c Config) HeaderPath() string {
	return resolveAgainstRoot(c.root, c.header)
}

// FooterPath resolves the footer file against the root directory.
func (c Config) FooterPath() string {
	return resolveAgainstRoot(c.root, c.footer)
}

func (c Config) Listen() string {
	return c.listen
}

func (c Config) Minify() bool {
	return c.minify
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func resolveAgainstRoot(root string, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(root, file)
}
