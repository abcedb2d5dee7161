package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/internal/session"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [url]",
	Short: "Navigate a pjax site from the terminal.",
	Long: `browse loads the page at url, renders its container as Markdown and
follows numbered links with pjax navigations. The url may be omitted when the
config file sets baseUrl.

Type "help" at the prompt for the list of commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var baseURL url.URL
		if len(args) == 1 {
			parsed, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("error parsing url %s: %w", args[0], err)
			}
			baseURL = *parsed
		}

		cfg, err := InitConfigWithError(baseURL)
		if err != nil {
			return err
		}

		logger, logCloser, err := NewLogger(logLevel, logFile)
		if err != nil {
			return err
		}
		defer logCloser.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startedAt := time.Now()
		recorder := metadata.NewRecorder(logger, uuid.NewString())
		defer func() { recorder.RecordFinalSessionStats(time.Since(startedAt)) }()

		s, err := session.Open(ctx, cfg, recorder)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}
