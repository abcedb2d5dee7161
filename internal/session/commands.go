package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/pjax-nav/internal/interceptor"
	"github.com/rohmanhakim/pjax-nav/internal/navigation"
	"github.com/rohmanhakim/pjax-nav/internal/storage"
)

const prompt = "> "

const usage = `commands:
  <n>          follow link n
  go <href>    follow href as if it were a link on the page
  back         history back
  forward      history forward
  reload       navigate to the current location
  history      list history entries
  cache        list cached snapshots
  save [dir]   write the current page as Markdown
  help         show this help
  quit         end the session
`

// Run prints the current page, then executes commands read from in
// until quit, end of input, or ctx cancellation.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := s.show(out); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		quit, err := s.Execute(ctx, scanner.Text(), out)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Execute runs a single command line. It reports true when the session should end.
func (s *Session) Execute(ctx context.Context, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch command := fields[0]; command {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprint(out, usage)
	case "go":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: go <href>")
			return false, nil
		}
		return false, s.activate(ctx, fields[1], out)
	case "back":
		if !s.browser.Back() {
			fmt.Fprintln(out, "no previous entry")
			return false, nil
		}
		return false, s.settle(ctx, s.navigator.Current(), out)
	case "forward":
		if !s.browser.Forward() {
			fmt.Fprintln(out, "no next entry")
			return false, nil
		}
		return false, s.settle(ctx, s.navigator.Current(), out)
	case "reload":
		return false, s.settle(ctx, s.navigator.Navigate(ctx, "", navigation.ModeClick), out)
	case "history":
		s.printHistory(out)
	case "cache":
		s.printCache(out)
	case "save":
		dir := s.cfg.OutputDir()
		if len(fields) > 1 {
			dir = fields[1]
		}
		s.save(dir, out)
	default:
		index, err := strconv.Atoi(command)
		if err != nil {
			fmt.Fprintf(out, "unknown command %q, try help\n", command)
			return false, nil
		}
		link, ok := s.page.Link(index)
		if !ok {
			fmt.Fprintf(out, "no link %d on this page\n", index)
			return false, nil
		}
		return false, s.activate(ctx, link.Href, out)
	}
	return false, nil
}

// activate treats href as a primary-button click on an anchor.
func (s *Session) activate(ctx context.Context, href string, out io.Writer) error {
	activation := interceptor.Activation{TagName: "a", Href: href}
	if _, rejection := s.interceptor.Filter(activation); rejection != interceptor.RejectNone {
		fmt.Fprintf(out, "not followed (%s): %s\n", rejection, href)
		return nil
	}
	req, _ := s.interceptor.Handle(ctx, activation)
	return s.settle(ctx, req, out)
}

// settle waits for req and prints the outcome.
func (s *Session) settle(ctx context.Context, req *navigation.Request, out io.Writer) error {
	if req == nil {
		return nil
	}
	result, err := req.Wait(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	switch result.Outcome {
	case navigation.OutcomeFailed:
		fmt.Fprintf(out, "navigation to %s failed: %v\n", result.URL, err)
		return nil
	case navigation.OutcomeSuperseded:
		return nil
	case navigation.OutcomeInert:
		fmt.Fprintf(out, "history unavailable, load %s directly\n", result.URL)
		return nil
	}

	fmt.Fprintf(out, "[%s in %s]\n", result.Outcome, result.Duration.Round(time.Microsecond))
	return s.show(out)
}

// refresh renders the container of the current document into the page view.
func (s *Session) refresh() error {
	markup, err := s.document.ContainerHTML()
	if err != nil {
		return err
	}
	page, renderErr := s.renderer.Render(markup)
	if renderErr != nil {
		return renderErr
	}
	s.page = page
	return nil
}

func (s *Session) show(out io.Writer) error {
	if err := s.refresh(); err != nil {
		fmt.Fprintf(out, "cannot render %s: %v\n", s.Location(), err)
		return nil
	}

	fmt.Fprintf(out, "# %s\n%s\n\n", s.document.Title(), s.Location())
	if len(s.page.Markdown) > 0 {
		out.Write(s.page.Markdown)
		fmt.Fprintln(out)
	}
	if len(s.page.Links) > 0 {
		fmt.Fprintln(out, "\nlinks:")
		for _, link := range s.page.Links {
			fmt.Fprintf(out, "  [%d] %s -> %s\n", link.Index, link.Text, link.Href)
		}
	}
	return nil
}

func (s *Session) save(dir string, out io.Writer) {
	base := s.cfg.BaseURL()
	source, err := base.Parse(s.Location())
	if err != nil {
		fmt.Fprintf(out, "cannot save %s: %v\n", s.Location(), err)
		return
	}

	result, writeErr := s.sink.Write(dir, storage.Page{
		SourceURL: source.String(),
		Title:     s.document.Title(),
		Markdown:  s.page.Markdown,
	})
	if writeErr != nil {
		fmt.Fprintf(out, "cannot save %s: %v\n", s.Location(), writeErr)
		return
	}
	fmt.Fprintf(out, "saved %s\n", result.Path())
}

func (s *Session) printHistory(out io.Writer) {
	entries, current := s.browser.Entries()
	for i, entry := range entries {
		marker := " "
		if i == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d %s  %s\n", marker, i, entry.URL, entry.Title)
	}
}

func (s *Session) printCache(out io.Writer) {
	keys := s.store.Keys()
	fmt.Fprintf(out, "%d/%d snapshots\n", s.store.Len(), s.store.Capacity())
	for _, key := range keys {
		fmt.Fprintf(out, "  %s\n", key)
	}
}
