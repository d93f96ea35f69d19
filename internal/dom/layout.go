package dom

import (
	"strconv"

	"golang.org/x/net/html"
)

// Box is an element's layout box relative to its offset parent.
type Box struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Layout exposes the host's computed layout.
type Layout interface {
	Box(n *html.Node) Box
	OffsetParent(n *html.Node) *html.Node
}

// ElementTop returns n's distance from the top of the document by summing
// offset tops along the offset-parent chain.
func ElementTop(l Layout, n *html.Node) float64 {
	top := 0.0
	for n != nil {
		top += l.Box(n).Top
		n = l.OffsetParent(n)
	}
	return top
}

// IsHidden reports whether n has no rendered area.
func IsHidden(l Layout, n *html.Node) bool {
	b := l.Box(n)
	return b.Width == 0 && b.Height == 0
}

// AttrLayout reads layout boxes from data-top, data-left, data-width and
// data-height attributes. The offset parent is the nearest ancestor with a
// data-top attribute. Headless renderers annotate documents this way.
type AttrLayout struct{}

// Box returns n's annotated box; missing or malformed values are zero.
func (AttrLayout) Box(n *html.Node) Box {
	return Box{
		Top:    attrFloat(n, "data-top"),
		Left:   attrFloat(n, "data-left"),
		Width:  attrFloat(n, "data-width"),
		Height: attrFloat(n, "data-height"),
	}
}

// OffsetParent returns the nearest positioned ancestor.
func (AttrLayout) OffsetParent(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if _, ok := Attr(p, "data-top"); ok {
			return p
		}
	}
	return nil
}

func attrFloat(n *html.Node, key string) float64 {
	v, ok := Attr(n, key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
