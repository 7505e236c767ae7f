package dom

import "golang.org/x/net/html"

// Find returns the first node under root (root included) matching pred, in
// document order.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := Find(c, pred); n != nil {
			return n
		}
	}
	return nil
}

// FindAll returns every descendant of root (root excluded) matching pred, in
// document order.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if root == nil {
		return out
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// QueryAttr returns descendant elements carrying attribute key.
func QueryAttr(root *html.Node, key string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasAttr(n, key)
	})
}

// QueryClass returns descendant elements with class cls.
func QueryClass(root *html.Node, cls string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, cls)
	})
}

// QueryTag returns descendant elements named tag.
func QueryTag(root *html.Node, tag string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool { return isTag(n, tag) })
}

// FirstByClass returns the first descendant with class cls, or nil.
func FirstByClass(root *html.Node, cls string) *html.Node {
	if list := QueryClass(root, cls); len(list) > 0 {
		return list[0]
	}
	return nil
}
