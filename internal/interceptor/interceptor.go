package interceptor

import (
	"context"
	"net/url"
	"strings"

	"github.com/rohmanhakim/pjax-nav/internal/navigation"
	"github.com/rohmanhakim/pjax-nav/pkg/urlutil"
)

/*
Interceptor decides which link activations become pjax navigations.

An activation is handed to the navigator only when all hold:
  - primary button, no meta/ctrl/shift/alt modifier
  - the activated element is an anchor
  - the href resolves to the page's scheme and hostname
  - the href is not a bare fragment

Everything else is left to the browser's default handling.
*/

// Activation is a click on an element inside the delegated region.
type Activation struct {
	// Button follows MouseEvent.button: 0 is the primary button.
	Button  int
	Meta    bool
	Ctrl    bool
	Shift   bool
	Alt     bool
	TagName string
	// Href is the raw href attribute.
	Href string
}

type Rejection string

const (
	RejectNone        Rejection = ""
	RejectButton      Rejection = "non-primary button"
	RejectModifier    Rejection = "modifier key"
	RejectNotAnchor   Rejection = "not an anchor"
	RejectCrossOrigin Rejection = "cross origin"
	RejectFragment    Rejection = "fragment only"
	RejectInvalidHref Rejection = "invalid href"
)

type Interceptor struct {
	origin    url.URL
	location  func() string
	navigator navigation.Navigator
}

// New builds an interceptor for pages served from origin. location
// returns the path of the active page and is used to resolve relative hrefs.
func New(origin url.URL, location func() string, navigator navigation.Navigator) *Interceptor {
	return &Interceptor{
		origin:    urlutil.CanonicalOrigin(origin),
		location:  location,
		navigator: navigator,
	}
}

// Filter returns the snapshot key the activation should navigate to,
// or the reason it is left to the browser.
func (i *Interceptor) Filter(a Activation) (string, Rejection) {
	if a.Button > 0 {
		return "", RejectButton
	}
	if a.Meta || a.Ctrl || a.Shift || a.Alt {
		return "", RejectModifier
	}
	if !strings.EqualFold(a.TagName, "a") {
		return "", RejectNotAnchor
	}
	if urlutil.IsFragmentOnly(a.Href) {
		return "", RejectFragment
	}

	page := i.origin
	if i.location != nil {
		if current, err := url.Parse(i.location()); err == nil {
			page = *i.origin.ResolveReference(current)
		}
	}
	ref, err := url.Parse(strings.TrimSpace(a.Href))
	if err != nil {
		return "", RejectInvalidHref
	}
	resolved := page.ResolveReference(ref)
	if !urlutil.SameOrigin(*resolved, i.origin) {
		return "", RejectCrossOrigin
	}
	return urlutil.SnapshotKey(*resolved), RejectNone
}

// Handle navigates for an accepted activation. It reports false when
// the activation was left to the browser.
func (i *Interceptor) Handle(ctx context.Context, a Activation) (*navigation.Request, bool) {
	key, rejection := i.Filter(a)
	if rejection != RejectNone {
		return nil, false
	}
	return i.navigator.Navigate(ctx, key, navigation.ModeClick), true
}
