// Package tts navigates a document sentence by sentence for text-to-speech
// playback: it segments the document lazily, keeps a cursor over the
// segments and reports each one's text and location to the host.
package tts

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readalong/tts/cursor"
	"github.com/dgnsrekt/readalong/tts/document"
	"github.com/dgnsrekt/readalong/tts/sentence"
)

// ResumeMarker marks where interrupted speech stopped inside a span's
// text. ExtractText drops everything before it. Span text never carries it.
const ResumeMarker = sentence.Marker

// DefaultOffset is the CollectOptions.Offset of the span right after the
// current one.
const DefaultOffset = 1

// entry is a realized span as the controller sees it.
type entry struct {
	text string
	rng  document.Range
}

// resumeMark records where speech of a span was interrupted.
type resumeMark struct {
	index  int // cursor index of the span
	offset int // byte offset into the span's extracted text
}

// Controller is the navigation surface over one document snapshot. It owns
// a segmenter and a cursor over its output; both are discarded with the
// controller. A Controller is not safe for concurrent use.
type Controller struct {
	doc       document.Document
	segmenter *sentence.Segmenter
	list      *cursor.Cursor[sentence.Span, entry]

	highlight HighlightFunc
	locate    LocationFunc

	mark   *resumeMark
	logger *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller for doc. highlight and locate may be
// nil, in which case no highlighting happens and locations are empty.
func NewController(doc document.Document, highlight HighlightFunc, locate LocationFunc, opts ...Option) *Controller {
	c := &Controller{
		doc:       doc,
		segmenter: sentence.Segment(doc),
		highlight: highlight,
		locate:    locate,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.list = cursor.New[sentence.Span](c.segmenter, func(s sentence.Span) entry {
		return entry{text: s.Text, rng: s.Range}
	})
	return c
}

// Start moves to the first span, highlights it and returns its text.
func (c *Controller) Start() (string, bool) {
	c.mark = nil
	e, ok := c.list.First()
	if !ok {
		return c.Next(false)
	}
	return c.textOf(e, true, true)
}

// End moves to the last span, highlights it and returns its text. It
// segments the whole document.
func (c *Controller) End() (string, bool) {
	c.mark = nil
	e, ok := c.list.Last()
	if !ok {
		return c.Next(false)
	}
	return c.textOf(e, true, true)
}

// Resume returns the text of the current span without moving. If speech
// of the span was interrupted, only the unspoken remainder is returned; when
// nothing of it remains, Resume moves on to the next span.
func (c *Controller) Resume() (string, bool) {
	e, ok := c.list.Current()
	if !ok {
		return c.Next(false)
	}
	if m := c.mark; m != nil && m.index == c.list.Index() {
		text := ExtractText(insertMarker(strings.TrimSpace(e.text), m.offset))
		if text == "" {
			return c.Next(false)
		}
		return text, true
	}
	return c.textOf(e, true, false)
}

// Next moves to the following span. When paused the span is highlighted,
// since nothing else will show the user where they are.
func (c *Controller) Next(paused bool) (string, bool) {
	c.mark = nil
	e, ok := c.list.Next()
	if ok && paused {
		c.invokeHighlight(e.rng)
	}
	return c.textOf(e, ok, false)
}

// Prev moves to the preceding span, highlighting it when paused.
func (c *Controller) Prev(paused bool) (string, bool) {
	c.mark = nil
	e, ok := c.list.Prev()
	if ok && paused {
		c.invokeHighlight(e.rng)
	}
	return c.textOf(e, ok, false)
}

// Prepare returns the text of the next span without moving, so its audio
// can be synthesized while the current span plays.
func (c *Controller) Prepare() (string, bool) {
	e, ok := c.list.Prepare()
	return c.textOf(e, ok, false)
}

// From moves to the first span that ends at or after the start of r,
// highlights it and returns its text.
func (c *Controller) From(r document.Range) (string, bool) {
	c.mark = nil
	e, ok := c.list.Find(func(s sentence.Span) bool {
		return document.EndToStart(c.doc, r, s.Range) <= 0
	})
	if !ok {
		c.logger.Debug("No span at or after range", "realized", c.list.Len())
		return "", false
	}
	c.invokeHighlight(e.rng)
	return c.textOf(e, true, false)
}

// CurrentDetail returns the current span's text and location. With no
// current span it moves to the first one.
func (c *Controller) CurrentDetail() (Detail, bool) {
	e, ok := c.ensureCurrent()
	if !ok {
		return Detail{}, false
	}
	return c.detailOf(e, false)
}

// CollectDetails returns up to count details of upcoming spans without
// moving, optionally starting with the current one.
func (c *Controller) CollectDetails(count int, opts CollectOptions) []Detail {
	if count <= 0 {
		return nil
	}
	details := make([]Detail, 0, count)
	if opts.IncludeCurrent {
		if e, ok := c.ensureCurrent(); ok {
			if d, ok := c.detailOf(e, false); ok {
				details = append(details, d)
			}
		}
	}
	needed := count - len(details)
	if needed <= 0 {
		return details
	}
	for _, e := range c.list.Peek(needed, opts.Offset) {
		if d, ok := c.detailOf(e, false); ok {
			details = append(details, d)
		}
	}
	return details
}

// HighlightCFI moves to the span whose location is id, highlights it and
// returns its detail. It is used to restore a saved position.
func (c *Controller) HighlightCFI(id LocationID) (Detail, bool) {
	if id == "" || c.locate == nil {
		return Detail{}, false
	}
	e, ok := c.list.Find(func(s sentence.Span) bool {
		return c.locate(s.Range.Clone()) == id
	})
	if !ok {
		c.logger.Debug("Location not found", "id", id, "realized", c.list.Len())
		return Detail{}, false
	}
	return c.detailOf(e, true)
}

// MarkResume records that speech of the current span stopped offset bytes
// into the text last returned for it. It reports false when there is no
// current span.
func (c *Controller) MarkResume(offset int) bool {
	e, ok := c.list.Current()
	if !ok {
		return false
	}
	index := c.list.Index()
	base := 0
	if m := c.mark; m != nil && m.index == index {
		// The last text returned was the remainder after the previous mark.
		text := strings.TrimSpace(e.text)
		rest := text[clampOffset(text, m.offset):]
		base = len(text) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
	}
	c.mark = &resumeMark{index: index, offset: base + max(offset, 0)}
	return true
}

// Position returns the cursor index (-1 before the first span) and the
// number of spans segmented so far.
func (c *Controller) Position() (index, realized int) {
	return c.list.Index(), c.list.Len()
}

// Exhausted reports whether the whole document has been segmented.
func (c *Controller) Exhausted() bool {
	return c.list.Exhausted()
}

// CurrentRange returns the range of the current span.
func (c *Controller) CurrentRange() (document.Range, bool) {
	e, ok := c.list.Current()
	if !ok {
		return document.Range{}, false
	}
	return e.rng.Clone(), true
}

// ExtractText returns the speakable text of a span. If raw carries a
// ResumeMarker, everything up to and including the first marker is dropped.
func ExtractText(raw string) string {
	if i := strings.Index(raw, ResumeMarker); i >= 0 {
		raw = raw[i+len(ResumeMarker):]
	}
	raw = strings.ReplaceAll(raw, ResumeMarker, "")
	return strings.TrimSpace(raw)
}

func (c *Controller) ensureCurrent() (entry, bool) {
	if e, ok := c.list.Current(); ok {
		return e, true
	}
	if e, ok := c.list.First(); ok {
		return e, true
	}
	return c.list.Next()
}

// textOf resolves an entry to its text only; the location callback is not
// consulted.
func (c *Controller) textOf(e entry, ok, highlight bool) (string, bool) {
	if !ok || e.text == "" || e.rng.IsZero() {
		return "", false
	}
	text := strings.TrimSpace(e.text)
	if highlight {
		c.invokeHighlight(e.rng)
	}
	return text, true
}

// detailOf resolves an entry. The highlight callback runs only after the
// span is fully resolved.
func (c *Controller) detailOf(e entry, highlight bool) (Detail, bool) {
	if e.text == "" || e.rng.IsZero() {
		return Detail{}, false
	}
	d := Detail{Text: strings.TrimSpace(e.text)}
	if highlight {
		d.LocationID = c.invokeHighlight(e.rng)
	}
	if d.LocationID == "" && c.locate != nil {
		d.LocationID = c.locate(e.rng.Clone())
	}
	return d, true
}

func (c *Controller) invokeHighlight(r document.Range) LocationID {
	if c.highlight == nil {
		return ""
	}
	return c.highlight(r.Clone())
}

// insertMarker places ResumeMarker into text at offset, moved back to a
// rune boundary.
func insertMarker(text string, offset int) string {
	i := clampOffset(text, offset)
	return text[:i] + ResumeMarker + text[i:]
}

func clampOffset(text string, offset int) int {
	i := min(max(offset, 0), len(text))
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
