package sentence

import (
	"strings"
	"unicode/utf8"

	"github.com/dgnsrekt/readalong/tts/document"
)

// Marker is a private-use character reserved for marking positions inside
// span text. Span text never contains it.
const Marker = "\uE000"

// Span is one narration unit: a document range and the text it renders.
type Span struct {
	Index int            // Position in the segmenter's output
	Range document.Range // Boundary points in the document
	Text  string         // Narratable text, excluded links omitted
}

// Segmenter walks a document's text nodes and yields sentence spans on
// demand. It is single-pass: once Next reports false it stays exhausted,
// and a new Segmenter must be created to walk the document again.
type Segmenter struct {
	root   document.Element
	walker document.TextWalker

	// Pending span
	open  bool
	start document.Point
	scope document.Element
	last  document.Point
	text  strings.Builder

	// Text node being scanned
	node   document.TextNode
	data   string
	pos    int // next byte to examine
	copied int // bytes of data already appended to text

	done  bool
	count int
}

// Segment starts a lazy segmentation of doc. Nothing is read from the
// document until Next is called.
func Segment(doc document.Document) *Segmenter {
	return &Segmenter{
		root:   doc.Root(),
		walker: doc.Walk(),
	}
}

// All drains a fresh segmentation of doc.
func All(doc document.Document) []Span {
	var spans []Span
	s := Segment(doc)
	for {
		span, ok := s.Next()
		if !ok {
			return spans
		}
		spans = append(spans, span)
	}
}

// Count returns how many spans have been yielded so far.
func (s *Segmenter) Count() int {
	return s.count
}

// Next yields the next non-empty span, or false once the document is
// exhausted.
func (s *Segmenter) Next() (Span, bool) {
	for !s.done {
		if s.node == nil {
			node, ok := s.walker.Next()
			if !ok {
				s.done = true
				return s.flush()
			}
			if span, ok := s.enter(node); ok {
				return span, true
			}
			continue
		}
		if span, ok := s.scan(); ok {
			return span, true
		}
	}
	return Span{}, false
}

// enter makes node the node being scanned. A change of block scope closes
// the pending span, which is returned if it is not empty.
func (s *Segmenter) enter(node document.TextNode) (Span, bool) {
	data := node.Data()
	if data == "" || IsExcludedTextNode(node) {
		return Span{}, false
	}

	var (
		span    Span
		emitted bool
	)
	block := BlockScope(node, s.root)
	if !s.open {
		s.reopen(document.Point{Node: node}, block)
	} else if block != s.scope {
		span, emitted = s.flush()
		s.reopen(document.Point{Node: node}, block)
	}

	s.node = node
	s.data = data
	s.pos = 0
	s.copied = 0
	return span, emitted
}

// scan advances through the current node until a sentence closes or the
// node ends.
func (s *Segmenter) scan() (Span, bool) {
	for s.pos < len(s.data) {
		r, size := utf8.DecodeRuneInString(s.data[s.pos:])
		next, hasNext := utf8.RuneError, false
		if s.pos+size < len(s.data) {
			next, _ = utf8.DecodeRuneInString(s.data[s.pos+size:])
			hasNext = true
		}

		if !IsSentenceTerminator(r, next, hasNext) {
			s.pos += size
			continue
		}

		end := advancePastQuotes(s.data, s.pos+size)
		s.text.WriteString(s.data[s.copied:end])
		boundary := document.Point{Node: s.node, Offset: end}
		rng := document.NewRange(s.start, boundary)
		text := s.text.String()

		s.reopen(boundary, s.scope)
		s.last = boundary
		s.copied = end
		s.pos = end

		if span, ok := s.emit(rng, text); ok {
			return span, true
		}
	}

	s.text.WriteString(s.data[s.copied:])
	s.last = document.Point{Node: s.node, Offset: len(s.data)}
	if s.start.Node == s.node && s.start.Offset == len(s.data) {
		s.close()
	}
	s.node = nil
	return Span{}, false
}

// flush closes the pending span at the end of the last scanned node.
func (s *Segmenter) flush() (Span, bool) {
	if !s.open {
		return Span{}, false
	}
	rng := document.NewRange(s.start, s.last)
	text := s.text.String()
	s.close()
	return s.emit(rng, text)
}

func (s *Segmenter) reopen(start document.Point, scope document.Element) {
	s.open = true
	s.start = start
	s.scope = scope
	s.text.Reset()
}

func (s *Segmenter) close() {
	s.open = false
	s.start = document.Point{}
	s.scope = nil
	s.text.Reset()
}

// emit numbers a span, dropping collapsed or blank ones.
func (s *Segmenter) emit(rng document.Range, text string) (Span, bool) {
	text = strings.ReplaceAll(text, Marker, "")
	if rng.Collapsed() || strings.TrimSpace(text) == "" {
		return Span{}, false
	}
	span := Span{Index: s.count, Range: rng, Text: text}
	s.count++
	return span, true
}
