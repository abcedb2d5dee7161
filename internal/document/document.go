package document

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

/*
Responsibilities
- Hold the parsed page a navigation session works on
- Resolve the pjax container by selector
- Replace the container's children with fetched markup
- Track the document title and the viewport scroll offset

Replacement Rules
- A <title> carried by the fragment becomes the document title
  and is not inserted into the container
- Everything else in the fragment is inserted verbatim, in order
- Nothing outside the container is touched, apart from the title
*/

type Document struct {
	mu           sync.RWMutex
	doc          *goquery.Document
	selector     string
	container    *html.Node
	scrollTop    int
	metadataSink metadata.MetadataSink
}

// Parse builds a Document from a full HTML page and resolves the container selector.
func Parse(
	page []byte,
	selector string,
	metadataSink metadata.MetadataSink,
) (*Document, failure.ClassifiedError) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, recordDocumentError(metadataSink, "Parse", selector, &DocumentError{
			Message: fmt.Sprintf("failed to parse page: %v", err),
			Cause:   ErrCauseUnparseable,
		})
	}

	container, findErr := findContainer(doc, selector)
	if findErr != nil {
		return nil, recordDocumentError(metadataSink, "Parse", selector, findErr)
	}

	return &Document{
		doc:          doc,
		selector:     selector,
		container:    container,
		metadataSink: metadataSink,
	}, nil
}

func findContainer(doc *goquery.Document, selector string) (*html.Node, *DocumentError) {
	if strings.TrimSpace(selector) == "" {
		return nil, &DocumentError{
			Message: "empty container selector",
			Cause:   ErrCauseContainerNotFound,
		}
	}

	var selection *goquery.Selection
	matcherErr := func() (err error) {
		// goquery panics on selectors cascadia cannot compile
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		selection = doc.Find(selector).First()
		return nil
	}()
	if matcherErr != nil {
		return nil, &DocumentError{
			Message: fmt.Sprintf("invalid selector %q: %v", selector, matcherErr),
			Cause:   ErrCauseContainerNotFound,
		}
	}
	if selection.Length() == 0 {
		return nil, &DocumentError{
			Message: fmt.Sprintf("no element matches %q", selector),
			Cause:   ErrCauseContainerNotFound,
		}
	}
	return selection.Nodes[0], nil
}

// ReplaceContent swaps the container's rendered content for markup.
func (d *Document) ReplaceContent(markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	nodes, err := html.ParseFragment(strings.NewReader(markup), d.container)
	if err != nil {
		return recordDocumentError(d.metadataSink, "ReplaceContent", d.selector, &DocumentError{
			Message: fmt.Sprintf("failed to parse fragment: %v", err),
			Cause:   ErrCauseUnparseable,
		})
	}

	title, hasTitle := "", false
	kept := make([]*html.Node, 0, len(nodes))
	for _, node := range nodes {
		if node.Type == html.ElementNode && node.DataAtom == atom.Title {
			if !hasTitle {
				title, hasTitle = textOf(node), true
			}
			continue
		}
		if t, found := extractTitle(node); found && !hasTitle {
			title, hasTitle = t, true
		}
		kept = append(kept, node)
	}

	for child := d.container.FirstChild; child != nil; {
		next := child.NextSibling
		d.container.RemoveChild(child)
		child = next
	}
	for _, node := range kept {
		d.container.AppendChild(node)
	}

	if hasTitle {
		d.setTitleLocked(strings.TrimSpace(title))
	}
	return nil
}

// extractTitle removes the first <title> nested inside node and returns its text.
func extractTitle(node *html.Node) (string, bool) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == atom.Title {
			title := textOf(child)
			node.RemoveChild(child)
			return title, true
		}
		if title, found := extractTitle(child); found {
			return title, true
		}
	}
	return "", false
}

func textOf(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return sb.String()
}

func (d *Document) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return strings.TrimSpace(d.titleSelection().Text())
}

func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.setTitleLocked(title)
}

func (d *Document) setTitleLocked(title string) {
	selection := d.titleSelection()
	if selection.Length() == 0 {
		d.doc.Find("head").First().AppendHtml("<title></title>")
		selection = d.titleSelection()
	}
	selection.SetText(title)
}

func (d *Document) titleSelection() *goquery.Selection {
	return d.doc.Find("head > title").First()
}

// ContainerHTML renders the container's current inner markup.
func (d *Document) ContainerHTML() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return goquery.NewDocumentFromNode(d.container).Html()
}

// HTML renders the whole page.
func (d *Document) HTML() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc.Nodes[0]); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Document) Selector() string {
	return d.selector
}

func (d *Document) ScrollTop() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.scrollTop
}

func (d *Document) ScrollTo(offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	d.scrollTop = offset
}

func (d *Document) ScrollToTop() {
	d.ScrollTo(0)
}

func recordDocumentError(
	metadataSink metadata.MetadataSink,
	action string,
	selector string,
	err *DocumentError,
) *DocumentError {
	metadataSink.RecordError(
		time.Now(),
		"document",
		"Document."+action,
		mapDocumentErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSelector, selector),
			metadata.NewAttr(metadata.AttrMessage, err.Message),
		},
	)
	return err
}
