package render

import (
	"errors"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/pjax-nav/internal/metadata"
	"github.com/rohmanhakim/pjax-nav/pkg/failure"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

/*
Renderer turns container markup into a terminal view.

- Markdown follows the markup's DOM order; nothing is inferred
- Links are numbered in document order so a session can follow them
- Hrefs are kept verbatim; resolution belongs to the interceptor
*/
type Renderer struct {
	converter    *converter.Converter
	metadataSink metadata.MetadataSink
}

func NewRenderer(metadataSink metadata.MetadataSink) *Renderer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &Renderer{
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		metadataSink: metadataSink,
	}
}

func (r *Renderer) Render(markup string) (Page, failure.ClassifiedError) {
	page, err := r.render(markup)
	if err != nil {
		var renderError *RenderError
		errors.As(err, &renderError)

		r.metadataSink.RecordError(
			time.Now(),
			"render",
			"Renderer.Render",
			mapRenderErrorToMetadataCause(renderError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, renderError.Message),
			},
		)
		return Page{}, renderError
	}
	return page, nil
}

func (r *Renderer) render(markup string) (Page, *RenderError) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return Page{}, &RenderError{
			Message: err.Error(),
			Cause:   ErrCauseUnparseable,
		}
	}
	for _, node := range nodes {
		root.AppendChild(node)
	}

	markdown, err := r.converter.ConvertNode(root)
	if err != nil {
		return Page{}, &RenderError{
			Message: err.Error(),
			Cause:   ErrCauseConversionFailure,
		}
	}

	return Page{
		Markdown: markdown,
		Links:    extractLinks(root),
	}, nil
}

// extractLinks collects anchors with an href in document order.
func extractLinks(root *html.Node) []Link {
	var links []Link
	goquery.NewDocumentFromNode(root).Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, Link{
			Index: len(links) + 1,
			Href:  href,
			Text:  strings.Join(strings.Fields(s.Text()), " "),
			Kind:  classify(href),
		})
	})
	return links
}

func classify(href string) LinkKind {
	trimmed := strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(trimmed, "#"):
		return KindAnchor
	case strings.Contains(trimmed, "://"), strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "mailto:"):
		return KindExternal
	default:
		return KindNavigation
	}
}
