package render_test

import (
	"testing"

	"github.com/rohmanhakim/pjax-nav/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Markdown(t *testing.T) {
	r := render.NewRenderer(nil)

	page, err := r.Render(`<h1>Guide</h1><p>Read <strong>this</strong> first.</p><pre><code>go run .</code></pre>`)
	require.Nil(t, err)

	md := string(page.Markdown)
	assert.Contains(t, md, "# Guide")
	assert.Contains(t, md, "**this**")
	assert.Contains(t, md, "go run .")
}

func TestRender_Deterministic(t *testing.T) {
	r := render.NewRenderer(nil)
	markup := `<h2>Table</h2><table><tr><th>a</th></tr><tr><td>1</td></tr></table>`

	first, err := r.Render(markup)
	require.Nil(t, err)
	second, err := r.Render(markup)
	require.Nil(t, err)

	assert.Equal(t, first.Markdown, second.Markdown)
}

func TestRender_LinksNumberedInDocumentOrder(t *testing.T) {
	r := render.NewRenderer(nil)

	page, err := r.Render(`
<p><a href="/docs/a">First
  link</a></p>
<a name="no-href">skipped</a>
<a href="#top">Top</a>
<a href="https://other.org/">Elsewhere</a>
<a href="../b">Relative</a>`)
	require.Nil(t, err)

	require.Len(t, page.Links, 4)
	assert.Equal(t, render.Link{Index: 1, Href: "/docs/a", Text: "First link", Kind: render.KindNavigation}, page.Links[0])
	assert.Equal(t, render.KindAnchor, page.Links[1].Kind)
	assert.Equal(t, render.KindExternal, page.Links[2].Kind)
	assert.Equal(t, "../b", page.Links[3].Href)
	assert.Equal(t, 4, page.Links[3].Index)

	link, ok := page.Link(2)
	assert.True(t, ok)
	assert.Equal(t, "#top", link.Href)
	_, ok = page.Link(0)
	assert.False(t, ok)
	_, ok = page.Link(5)
	assert.False(t, ok)
}

func TestRender_EmptyMarkup(t *testing.T) {
	r := render.NewRenderer(nil)

	page, err := r.Render("")
	require.Nil(t, err)

	assert.Empty(t, page.Links)
}

func TestRender_FragmentsParseAgainstContainerContext(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		markdown string
		links    int
	}{
		{name: "paragraph", markup: "<p>hello</p>", markdown: "hello"},
		{name: "bare anchor", markup: `<a href="/b">b</a>`, markdown: "[b](/b)", links: 1},
		{name: "empty", markup: ""},
	}

	r := render.NewRenderer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := r.Render(tt.markup)

			require.Nil(t, err)
			assert.Contains(t, string(page.Markdown), tt.markdown)
			assert.Len(t, page.Links, tt.links)
		})
	}
}
