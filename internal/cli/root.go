package cmd

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	logLevel    string
	logFile     string
	container   string
	maxEntries  int
	noCache     bool
	cacheDB     string
	noPush      bool
	replace     bool
	timeout     time.Duration
	noCacheBust bool
	userAgent   string
	root        string
	header      string
	footer      string
	listen      string
	minify      bool
	outputDir   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pjax",
	Short: "Partial page navigation client and fragment server.",
	Long: `pjax swaps the content of a single container on navigation instead of
loading whole pages. Fetched fragments are cached per URL and browser history
is kept in step with every navigation.

Use "pjax serve" to answer fragment requests from a directory of page files,
and "pjax browse" to navigate a site from the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /home/myuser/pjax.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file to use in addition to stderr")
	rootCmd.PersistentFlags().StringVar(&container, "container", "", "CSS selector of the element whose content is swapped")
	rootCmd.PersistentFlags().IntVar(&maxEntries, "max-entries", -1, "maximum number of cached snapshots (0 disables storing)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "never serve navigations from the snapshot cache")
	rootCmd.PersistentFlags().StringVar(&cacheDB, "cache-db", "", "SQLite file to persist snapshots in (in-memory when empty)")
	rootCmd.PersistentFlags().BoolVar(&noPush, "no-push", false, "do not push history entries for fetched pages")
	rootCmd.PersistentFlags().BoolVar(&replace, "replace", false, "replace the current history entry instead of pushing")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for fragment requests")
	rootCmd.PersistentFlags().BoolVar(&noCacheBust, "no-cache-bust", false, "do not append the cache-busting query parameter")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "directory holding page files")
	rootCmd.PersistentFlags().StringVar(&header, "header", "", "file prepended to full page responses, relative to root")
	rootCmd.PersistentFlags().StringVar(&footer, "footer", "", "file appended to full page responses, relative to root")
	rootCmd.PersistentFlags().StringVar(&listen, "listen", "", "address the server listens on")
	rootCmd.PersistentFlags().BoolVar(&minify, "minify", false, "minify html responses")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory the browse save command writes Markdown to")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfig builds the config and exits on error.
func InitConfig(baseURL url.URL) config.Config {
	cfg, err := InitConfigWithError(baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the config from the config file when one is
// given, otherwise from baseURL and the flag values.
// This makes it easier to test error cases.
func InitConfigWithError(baseURL url.URL) (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if baseURL.Host == "" {
		return config.Config{}, fmt.Errorf("%w: base URL must be absolute, got %q", config.ErrInvalidConfig, baseURL.String())
	}

	configBuilder := config.WithDefault(baseURL)

	if container != "" {
		configBuilder = configBuilder.WithContainer(container)
	}

	if maxEntries >= 0 {
		configBuilder = configBuilder.WithMaxEntries(maxEntries)
	}

	if noCache {
		configBuilder = configBuilder.WithCacheEnabled(false)
	}

	if cacheDB != "" {
		configBuilder = configBuilder.WithCacheDB(cacheDB)
	}

	if noPush {
		configBuilder = configBuilder.WithPush(false)
	}

	if replace {
		configBuilder = configBuilder.WithReplace(true)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if noCacheBust {
		configBuilder = configBuilder.WithCacheBust(false)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if root != "" {
		configBuilder = configBuilder.WithRoot(root)
	}

	if header != "" {
		configBuilder = configBuilder.WithHeader(header)
	}

	if footer != "" {
		configBuilder = configBuilder.WithFooter(footer)
	}

	if listen != "" {
		configBuilder = configBuilder.WithListen(listen)
	}

	if minify {
		configBuilder = configBuilder.WithMinify(true)
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// NewLogger writes human readable logs to stderr and, when path is set,
// to the log file as well.
func NewLogger(level string, path string) (zerolog.Logger, io.Closer, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	outputs := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}}
	var closer io.Closer = nopCloser{}
	if path != "" {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("cannot open log file: %w", err)
		}
		outputs = append(outputs, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(outputs...)).
		Level(parsed).
		With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func ResetFlags() {
	cfgFile = ""
	logLevel = "info"
	logFile = ""
	container = ""
	maxEntries = -1
	noCache = false
	cacheDB = ""
	noPush = false
	replace = false
	timeout = 0
	noCacheBust = false
	userAgent = ""
	root = ""
	header = ""
	footer = ""
	listen = ""
	minify = false
	outputDir = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetContainerForTest(selector string) {
	container = selector
}

func SetMaxEntriesForTest(entries int) {
	maxEntries = entries
}

func SetNoCacheForTest(disabled bool) {
	noCache = disabled
}

func SetCacheDBForTest(path string) {
	cacheDB = path
}

func SetNoPushForTest(disabled bool) {
	noPush = disabled
}

func SetReplaceForTest(enabled bool) {
	replace = enabled
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetNoCacheBustForTest(disabled bool) {
	noCacheBust = disabled
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetRootForTest(dir string) {
	root = dir
}

func SetHeaderForTest(file string) {
	header = file
}

func SetFooterForTest(file string) {
	footer = file
}

func SetListenForTest(address string) {
	listen = address
}

func SetMinifyForTest(enabled bool) {
	minify = enabled
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}
