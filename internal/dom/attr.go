package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or replaces attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

// Data reads a data attribute: Data(n, "risk-key") reads data-risk-key.
func Data(n *html.Node, name string) string {
	v, _ := Attr(n, "data-"+name)
	return v
}

// SetData writes a data attribute.
func SetData(n *html.Node, name, val string) {
	SetAttr(n, "data-"+name, val)
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n has class cls.
func HasClass(n *html.Node, cls string) bool {
	return slices.Contains(Classes(n), cls)
}

// AddClass adds classes not already present.
func AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	for _, c := range classes {
		if c != "" && !slices.Contains(list, c) {
			list = append(list, c)
		}
	}
	SetAttr(n, "class", strings.Join(list, " "))
}

// RemoveClass removes cls from n.
func RemoveClass(n *html.Node, cls string) {
	list := slices.DeleteFunc(Classes(n), func(c string) bool { return c == cls })
	if len(list) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(list, " "))
}

// ToggleClass adds cls when on is true and removes it otherwise.
func ToggleClass(n *html.Node, cls string, on bool) {
	if n == nil {
		return
	}
	if on {
		AddClass(n, cls)
		return
	}
	RemoveClass(n, cls)
}

// Checked reports whether an input carries the checked attribute.
func Checked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// SetChecked sets or clears the checked attribute.
func SetChecked(n *html.Node, on bool) {
	if on {
		SetAttr(n, "checked", "")
		return
	}
	RemoveAttr(n, "checked")
}
