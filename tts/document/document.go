// Package document defines the tree adapter the narration engine reads
// from. Any tree that can list its text nodes in document order, answer
// ancestor queries and order two boundary points can be narrated.
package document

// Element is an element node of the tree.
type Element interface {
	// Tag returns the lower-case tag name.
	Tag() string

	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)

	// Parent returns the parent element, or nil at the root.
	Parent() Element
}

// TextNode is a leaf carrying character data.
type TextNode interface {
	// Data returns the node's text content.
	Data() string

	// Parent returns the enclosing element.
	Parent() Element
}

// TextWalker yields text nodes in document order. It is single-pass.
type TextWalker interface {
	Next() (TextNode, bool)
}

// Document is the root of a narratable tree.
type Document interface {
	// Root returns the element that bounds narration (e.g. <body>).
	Root() Element

	// Walk returns a fresh walker over every text node under Root.
	Walk() TextWalker

	// Compare orders two boundary points: -1 if a is before b, 0 if they
	// are equal and 1 if a is after b.
	Compare(a, b Point) int
}

// Point is a boundary point: a byte offset inside a text node.
type Point struct {
	Node   TextNode
	Offset int
}

// IsZero reports whether the point has no node.
func (p Point) IsZero() bool {
	return p.Node == nil
}

// Range spans two boundary points in document order.
type Range struct {
	Start Point
	End   Point
}

// NewRange builds a range from two points.
func NewRange(start, end Point) Range {
	return Range{Start: start, End: end}
}

// Clone returns a copy of the range. Ranges are values, so the copy never
// aliases the original.
func (r Range) Clone() Range {
	return r
}

// Collapsed reports whether start and end are the same point.
func (r Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset == r.End.Offset
}

// IsZero reports whether the range was never set.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// EndToStart orders the end of b against the start of a. It is <= 0 when b
// ends at or after a starts.
func EndToStart(doc Document, a, b Range) int {
	return doc.Compare(a.Start, b.End)
}
