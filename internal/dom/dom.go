// Package dom is a small in-memory document tree that satisfies the
// narration engine's document adapter. Trees are built from HTML or
// Markdown, or assembled directly with NewElement and NewText.
package dom

import (
	"errors"
	"strings"

	"github.com/dgnsrekt/readalong/tts/document"
)

var (
	// ErrNoBody is returned when a parsed document has no body to narrate.
	ErrNoBody = errors.New("document has no body")

	// ErrForeignPoint is returned when a point belongs to another tree.
	ErrForeignPoint = errors.New("point does not belong to this document")
)

// Attrs holds element attributes.
type Attrs map[string]string

// Node is either an *Element or a *Text.
type Node interface {
	ParentElement() *Element
	setParent(*Element)
}

// Element is an element node.
type Element struct {
	tag      string
	attrs    Attrs
	parent   *Element
	children []Node
}

// NewElement builds an element with the given children.
func NewElement(tag string, attrs Attrs, children ...Node) *Element {
	e := &Element{tag: strings.ToLower(tag), attrs: attrs}
	for _, c := range children {
		e.Append(c)
	}
	return e
}

// Append adds a child at the end.
func (e *Element) Append(child Node) {
	child.setParent(e)
	e.children = append(e.children, child)
}

// Tag implements document.Element.
func (e *Element) Tag() string { return e.tag }

// Attr implements document.Element.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Parent implements document.Element.
func (e *Element) Parent() document.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// ParentElement returns the parent as a concrete element.
func (e *Element) ParentElement() *Element { return e.parent }

// Children returns the element's children in order.
func (e *Element) Children() []Node { return e.children }

// IndexOf returns the position of child among e's children, or -1.
func (e *Element) IndexOf(child Node) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

// TextContent concatenates all text under e.
func (e *Element) TextContent() string {
	var b strings.Builder
	var walk func(*Element)
	walk = func(el *Element) {
		for _, c := range el.children {
			switch n := c.(type) {
			case *Text:
				b.WriteString(n.data)
			case *Element:
				walk(n)
			}
		}
	}
	walk(e)
	return b.String()
}

func (e *Element) setParent(p *Element) { e.parent = p }

// Text is a text node.
type Text struct {
	data   string
	parent *Element
	order  int
}

// NewText builds a text node.
func NewText(data string) *Text {
	return &Text{data: data, order: -1}
}

// Data implements document.TextNode.
func (t *Text) Data() string { return t.data }

// Parent implements document.TextNode.
func (t *Text) Parent() document.Element {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

// ParentElement returns the parent as a concrete element.
func (t *Text) ParentElement() *Element { return t.parent }

// Order returns the node's position among the document's text nodes.
func (t *Text) Order() int { return t.order }

func (t *Text) setParent(p *Element) { t.parent = p }

// Document is a tree rooted at a body element.
type Document struct {
	root  *Element
	texts []*Text
}

// New indexes the text nodes under root and returns the document.
func New(root *Element) *Document {
	d := &Document{root: root}
	var walk func(*Element)
	walk = func(el *Element) {
		for _, c := range el.children {
			switch n := c.(type) {
			case *Text:
				n.order = len(d.texts)
				d.texts = append(d.texts, n)
			case *Element:
				walk(n)
			}
		}
	}
	walk(root)
	return d
}

// Root implements document.Document.
func (d *Document) Root() document.Element { return d.root }

// Body returns the root as a concrete element.
func (d *Document) Body() *Element { return d.root }

// Walk implements document.Document.
func (d *Document) Walk() document.TextWalker {
	return &walker{texts: d.texts}
}

// Compare implements document.Document. Points are ordered by text node
// then offset; a point without a node sorts first.
func (d *Document) Compare(a, b document.Point) int {
	ao, bo := d.order(a.Node), d.order(b.Node)
	switch {
	case ao < bo:
		return -1
	case ao > bo:
		return 1
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

// TextNodes returns the text nodes in document order.
func (d *Document) TextNodes() []*Text { return d.texts }

// PointAt returns a point in the i-th text node.
func (d *Document) PointAt(i, offset int) (document.Point, error) {
	if i < 0 || i >= len(d.texts) {
		return document.Point{}, ErrForeignPoint
	}
	return document.Point{Node: d.texts[i], Offset: offset}, nil
}

// Text renders the text of the whole document.
func (d *Document) Text() string {
	return d.root.TextContent()
}

func (d *Document) order(n document.TextNode) int {
	t, ok := n.(*Text)
	if !ok || t == nil || t.order < 0 || t.order >= len(d.texts) || d.texts[t.order] != t {
		return -1
	}
	return t.order
}

type walker struct {
	texts []*Text
	i     int
}

func (w *walker) Next() (document.TextNode, bool) {
	if w.i >= len(w.texts) {
		return nil, false
	}
	w.i++
	return w.texts[w.i-1], true
}
