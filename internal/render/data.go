package render

type Page struct {
	Markdown []byte
	Links    []Link
}

type LinkKind string

const (
	KindNavigation LinkKind = "navigation"
	KindExternal   LinkKind = "external"
	KindAnchor     LinkKind = "anchor"
)

type Link struct {
	// Index is 1-based.
	Index int
	Href  string
	Text  string
	Kind  LinkKind
}

// Link returns the link with the given 1-based index.
func (p Page) Link(index int) (Link, bool) {
	if index < 1 || index > len(p.Links) {
		return Link{}, false
	}
	return p.Links[index-1], true
}
