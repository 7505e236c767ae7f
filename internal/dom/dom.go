// Package dom is a small in-memory document model for server-side pane
// rendering. It wraps golang.org/x/net/html nodes with the handful of
// browser conveniences panes rely on: element construction, class lists,
// data attributes, text content, queries and event listeners.
//
// A Document is not safe for concurrent use; each page owns one.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const blankPage = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title></title></head><body><div id="app"></div></body></html>`

// Document is a parsed HTML document plus the event listeners attached to
// its elements.
type Document struct {
	Root      *html.Node
	listeners map[*html.Node]map[string][]*listener
	autoDone  bool
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &Document{Root: root}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// New returns an empty page with a single #app mount point.
func New() *Document {
	doc, err := ParseString(blankPage)
	if err != nil {
		panic(err)
	}
	return doc
}

// MarkAutoBootstrapped records that automatic bootstrap ran for this
// document and reports whether it had already run.
func (d *Document) MarkAutoBootstrapped() (already bool) {
	already = d.autoDone
	d.autoDone = true
	return already
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *html.Node {
	return Find(d.Root, func(n *html.Node) bool { return isTag(n, "html") })
}

// Head returns the <head> element.
func (d *Document) Head() *html.Node {
	return Find(d.Root, func(n *html.Node) bool { return isTag(n, "head") })
}

// Body returns the <body> element.
func (d *Document) Body() *html.Node {
	return Find(d.Root, func(n *html.Node) bool { return isTag(n, "body") })
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *html.Node {
	return Find(d.Root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// Title returns the document title.
func (d *Document) Title() string {
	t := Find(d.Root, func(n *html.Node) bool { return isTag(n, "title") })
	if t == nil {
		return ""
	}
	return TextContent(t)
}

// SetTitle sets the document title, creating <title> when missing.
func (d *Document) SetTitle(title string) {
	t := Find(d.Root, func(n *html.Node) bool { return isTag(n, "title") })
	if t == nil {
		head := d.Head()
		if head == nil {
			return
		}
		t = El("title", "", "")
		head.AppendChild(t)
	}
	SetText(t, title)
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// String renders the whole document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// El creates an element with an optional class and text content.
func El(tag, class, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if class != "" {
		SetAttr(n, "class", class)
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// Append appends children to n and returns n.
func Append(n *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		n.AppendChild(c)
	}
	return n
}

// Clear removes all children of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// ReplaceChildren clears n and appends children.
func ReplaceChildren(n *html.Node, children ...*html.Node) {
	Clear(n)
	Append(n, children...)
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	Clear(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
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
	walk(n)
	return sb.String()
}

// SetInnerHTML parses fragment in the context of n and replaces its children.
func SetInnerHTML(n *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     n.Data,
		DataAtom: n.DataAtom,
	})
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	ReplaceChildren(n, nodes...)
	return nil
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders n itself.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

func isTag(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}
