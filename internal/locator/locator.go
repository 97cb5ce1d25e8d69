// Package locator encodes document ranges as stable location ids and
// decodes them back. An id lists the child-index path from the body to
// each boundary's text node plus the byte offset, e.g. "/1/0:4,/1/2:19".
package locator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgnsrekt/readalong/internal/dom"
	"github.com/dgnsrekt/readalong/tts"
	"github.com/dgnsrekt/readalong/tts/document"
)

var (
	// ErrMalformed is returned for ids that do not parse.
	ErrMalformed = errors.New("malformed location id")

	// ErrNotFound is returned when an id's path does not exist in the document.
	ErrNotFound = errors.New("location does not exist in document")
)

// Locator maps ranges of one document to location ids.
type Locator struct {
	doc *dom.Document
}

// New creates a locator for doc.
func New(doc *dom.Document) *Locator {
	return &Locator{doc: doc}
}

// Locate returns the id of r, or "" when r does not belong to the document.
// It satisfies tts.LocationFunc.
func (l *Locator) Locate(r document.Range) tts.LocationID {
	start, ok := l.encodePoint(r.Start)
	if !ok {
		return ""
	}
	end, ok := l.encodePoint(r.End)
	if !ok {
		return ""
	}
	return tts.LocationID(start + "," + end)
}

// Resolve decodes id back into a range of the document.
func (l *Locator) Resolve(id tts.LocationID) (document.Range, error) {
	parts := strings.Split(string(id), ",")
	if len(parts) != 2 {
		return document.Range{}, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	start, err := l.decodePoint(parts[0])
	if err != nil {
		return document.Range{}, err
	}
	end, err := l.decodePoint(parts[1])
	if err != nil {
		return document.Range{}, err
	}
	if l.doc.Compare(start, end) > 0 {
		return document.Range{}, fmt.Errorf("%w: start after end in %q", ErrMalformed, id)
	}
	return document.NewRange(start, end), nil
}

func (l *Locator) encodePoint(p document.Point) (string, bool) {
	t, ok := p.Node.(*dom.Text)
	if !ok || t == nil || t.Order() < 0 {
		return "", false
	}

	var steps []int
	var child dom.Node = t
	for parent := t.ParentElement(); parent != nil; parent = parent.ParentElement() {
		steps = append(steps, parent.IndexOf(child))
		if parent == l.doc.Body() {
			break
		}
		child = parent
	}

	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(steps[i]))
	}
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.Offset))
	return b.String(), true
}

func (l *Locator) decodePoint(s string) (document.Point, error) {
	path, off, found := strings.Cut(s, ":")
	if !found || !strings.HasPrefix(path, "/") {
		return document.Point{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	offset, err := strconv.Atoi(off)
	if err != nil || offset < 0 {
		return document.Point{}, fmt.Errorf("%w: bad offset in %q", ErrMalformed, s)
	}

	var node dom.Node = l.doc.Body()
	for _, step := range strings.Split(path[1:], "/") {
		i, err := strconv.Atoi(step)
		if err != nil {
			return document.Point{}, fmt.Errorf("%w: bad step in %q", ErrMalformed, s)
		}
		el, ok := node.(*dom.Element)
		if !ok || i < 0 || i >= len(el.Children()) {
			return document.Point{}, fmt.Errorf("%w: %q", ErrNotFound, s)
		}
		node = el.Children()[i]
	}

	t, ok := node.(*dom.Text)
	if !ok || offset > len(t.Data()) {
		return document.Point{}, fmt.Errorf("%w: %q", ErrNotFound, s)
	}
	return document.Point{Node: t, Offset: offset}, nil
}
