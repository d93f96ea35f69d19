// Package dom provides the small set of document queries the page
// utilities need: CSS selector lookups, sibling filtering, class and
// attribute helpers, element wrapping, and offset arithmetic over a host
// supplied Layout.
package dom

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoParent is returned when an operation needs a detached node's parent.
var ErrNoParent = errors.New("dom: node has no parent")

// Parse parses an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// QueryAll returns every element under root matching selector, in
// document order.
func QueryAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel.MatchAll(root), nil
}

// Query returns the first element under root matching selector, or nil.
func Query(root *html.Node, selector string) (*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel.MatchFirst(root), nil
}

// ByID returns the first element under root with the given id, or nil.
func ByID(root *html.Node, id string) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode {
		if v, ok := Attr(root, "id"); ok && v == id {
			return root
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := ByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Siblings returns the element siblings of n, excluding n itself. When
// selector is non-empty only matching siblings are returned.
func Siblings(n *html.Node, selector string) ([]*html.Node, error) {
	if n.Parent == nil {
		return nil, ErrNoParent
	}
	var match cascadia.Selector
	if selector != "" {
		sel, err := cascadia.Compile(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
		}
		match = sel
	}

	var out []*html.Node
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n || c.Type != html.ElementNode {
			continue
		}
		if match != nil && !match.Match(c) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key to val, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	if n == nil {
		return false
	}
	v, _ := Attr(n, "class")
	return slices.Contains(strings.Fields(v), class)
}

// AddClass adds class to n if missing.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	v, _ := Attr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(v+" "+class))
}

// RemoveClass removes class from n.
func RemoveClass(n *html.Node, class string) {
	v, ok := Attr(n, "class")
	if !ok {
		return
	}
	fields := slices.DeleteFunc(strings.Fields(v), func(c string) bool { return c == class })
	SetAttr(n, "class", strings.Join(fields, " "))
}

// Wrap replaces n with a new tag element and moves n inside it. Attributes
// are written in key order.
func Wrap(n *html.Node, tag string, attrs map[string]string) (*html.Node, error) {
	parent := n.Parent
	if parent == nil {
		return nil, ErrNoParent
	}

	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		wrapper.Attr = append(wrapper.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}

	parent.InsertBefore(wrapper, n)
	parent.RemoveChild(n)
	wrapper.AppendChild(n)
	return wrapper, nil
}
