package pages

import (
	"errors"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/riskpanes/internal/dom"
)

// ErrMissingApp is returned when a shell has no #app mount point.
var ErrMissingApp = errors.New("missing #app root")

const (
	defaultTitle = "Risk Analysis"
	navHome      = "home"
	navBack      = "back"
)

// ShellOptions configures BuildAppShell.
type ShellOptions struct {
	PageTitle    string
	ActiveNavKey string
}

// Shell holds the elements of a built app shell.
type Shell struct {
	AppRoot     *html.Node
	Header      *html.Node
	Heading     *html.Node
	Main        *html.Node
	Nav         *html.Node
	ThemeHost   *html.Node
	ContentHost *html.Node
}

// BuildAppShell replaces the children of #app with the header and the
// main content area shared by all pages.
func BuildAppShell(doc *dom.Document, opts ShellOptions) (*Shell, error) {
	root := doc.GetElementByID("app")
	if root == nil {
		return nil, ErrMissingApp
	}

	heading := dom.El("h1", "", firstNonEmpty(opts.PageTitle, defaultTitle))
	dom.SetAttr(heading, "id", "pageTitle")
	themeHost := themeToggle()
	nav := navBar(opts.ActiveNavKey)

	header := dom.Append(dom.El("header", "header-centered", ""), heading, themeHost)
	if nav != nil {
		dom.Append(header, nav)
	}

	main := dom.El("main", "split", "")
	dom.SetAttr(main, "id", "root")

	app := dom.Append(dom.El("div", "app", ""), header, main)
	dom.ReplaceChildren(root, app)

	return &Shell{
		AppRoot:     app,
		Header:      header,
		Heading:     heading,
		Main:        main,
		Nav:         nav,
		ThemeHost:   themeHost,
		ContentHost: main,
	}, nil
}

func themeToggle() *html.Node {
	button := dom.El("button", "theme-toggle", "")
	dom.SetAttr(button, "type", "button")
	dom.SetAttr(button, "aria-label", "Toggle light/dark mode")
	dom.SetAttr(button, "aria-pressed", "false")
	dom.SetAttr(button, "title", "Toggle light/dark mode")

	icon := dom.El("span", "theme-toggle-icon", "☾")
	dom.SetAttr(icon, "aria-hidden", "true")
	dom.Append(button, icon, dom.El("span", "theme-toggle-text", "Theme"))

	return dom.Append(dom.El("div", "theme-toggle-wrapper", ""), button)
}

func navBar(active string) *html.Node {
	if active == "" {
		return nil
	}
	link := dom.El("a", "", "Back to Main Menu")
	dom.SetAttr(link, "href", "index.html")
	if active == navHome {
		dom.SetAttr(link, "aria-current", "page")
	}
	links := dom.Append(dom.El("div", "nav-links", ""), link)
	return dom.Append(dom.El("nav", "nav", ""), links)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
