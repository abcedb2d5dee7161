package cmd

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/pjax-nav/internal/server"
	"github.com/spf13/cobra"
)

// serveBaseURL stands in for the session base URL, which serving does not use.
var serveBaseURL = url.URL{Scheme: "http", Host: "localhost"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve page files as full pages or pjax fragments.",
	Long: `serve answers GET and HEAD requests from the root directory. Requests
carrying the X-PJAX header receive the page file alone; all others receive the
header, page and footer files concatenated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError(serveBaseURL)
		if err != nil {
			return err
		}

		logger, logCloser, err := NewLogger(logLevel, logFile)
		if err != nil {
			return err
		}
		defer logCloser.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info().
			Str("listen", cfg.Listen()).
			Str("root", cfg.Root()).
			Bool("minify", cfg.Minify()).
			Msg("serving pages")
		return server.New(cfg, logger).Start(ctx)
	},
}
