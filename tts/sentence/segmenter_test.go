package sentence

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/readalong/internal/dom"
	"github.com/dgnsrekt/readalong/tts/document"
)

func texts(spans []Span) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = strings.TrimSpace(s.Text)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSegmentSingleParagraph(t *testing.T) {
	text := dom.NewText("Hello Mr. Smith. Are you there?")
	doc := dom.New(dom.NewElement("body", nil, dom.NewElement("p", nil, text)))

	spans := All(doc)
	want := []string{"Hello Mr.", "Smith.", "Are you there?"}
	if got := texts(spans); !equalStrings(got, want) {
		t.Fatalf("spans = %q, want %q", got, want)
	}

	offsets := [][2]int{{0, 9}, {9, 16}, {16, 31}}
	for i, s := range spans {
		if s.Index != i {
			t.Errorf("span %d has Index %d", i, s.Index)
		}
		if s.Range.Start.Node != text || s.Range.End.Node != text {
			t.Errorf("span %d does not lie in the paragraph's text node", i)
		}
		if s.Range.Start.Offset != offsets[i][0] || s.Range.End.Offset != offsets[i][1] {
			t.Errorf("span %d offsets = [%d, %d), want [%d, %d)", i,
				s.Range.Start.Offset, s.Range.End.Offset, offsets[i][0], offsets[i][1])
		}
	}
}

func TestSegmentAbsorbsClosingQuotes(t *testing.T) {
	doc, err := dom.ParseHTMLString(`<p>He said "Stop!" then left.</p>`)
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}

	want := []string{`He said "Stop!"`, "then left."}
	if got := texts(All(doc)); !equalStrings(got, want) {
		t.Errorf("spans = %q, want %q", got, want)
	}
}

func TestSegmentAbbreviationHeuristic(t *testing.T) {
	doc, err := dom.ParseHTMLString(`<p>The U.S. Army arrived. It was e.g.fine.</p>`)
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}

	want := []string{"The U.S.", "Army arrived.", "It was e.g.fine."}
	if got := texts(All(doc)); !equalStrings(got, want) {
		t.Errorf("spans = %q, want %q", got, want)
	}
}

func TestSegmentExcludesLocalLinks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "footnote marker",
			html: `<p>See note<a href="#note1">1</a>. Then more.</p>`,
			want: []string{"See note.", "Then more."},
		},
		{
			name: "relative cross reference",
			html: `<p>As shown<sup><a href="ch2.xhtml#f3">[3]</a></sup> before.</p>`,
			want: []string{"As shown before."},
		},
		{
			name: "external link is read",
			html: `<p>Visit <a href="https://example.com">our site</a> today.</p>`,
			want: []string{"Visit our site today."},
		},
		{
			name: "anchor target is read",
			html: `<p><a id="top">Welcome</a> home.</p>`,
			want: []string{"Welcome home."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := dom.ParseHTMLString(tt.html)
			if err != nil {
				t.Fatalf("ParseHTMLString() error = %v", err)
			}
			if got := texts(All(doc)); !equalStrings(got, tt.want) {
				t.Errorf("spans = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSegmentExcludedNodeStillBoundsRange(t *testing.T) {
	before := dom.NewText("See note")
	marker := dom.NewText("1")
	after := dom.NewText(". Then more.")
	doc := dom.New(dom.NewElement("body", nil,
		dom.NewElement("p", nil,
			before,
			dom.NewElement("a", dom.Attrs{"href": "#n1"}, marker),
			after,
		),
	))

	spans := All(doc)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	first := spans[0].Range
	if first.Start.Node != before || first.Start.Offset != 0 {
		t.Errorf("first span starts at %v, want start of first text", first.Start)
	}
	if first.End.Node != after || first.End.Offset != 1 {
		t.Errorf("first span ends at %v, want offset 1 of last text", first.End)
	}
	if spans[0].Text != "See note." {
		t.Errorf("first span text = %q, want the link text left out", spans[0].Text)
	}
}

func TestSegmentDropsReservedMarker(t *testing.T) {
	doc := dom.New(dom.NewElement("body", nil,
		dom.NewElement("p", nil, dom.NewText("Press the "+Marker+" icon to continue.")),
		dom.NewElement("p", nil, dom.NewText(Marker)),
		dom.NewElement("p", nil, dom.NewText("Done.")),
	))

	want := []string{"Press the  icon to continue.", "Done."}
	if got := texts(All(doc)); !equalStrings(got, want) {
		t.Errorf("spans = %q, want %q", got, want)
	}
}

func TestSegmentBlockScopes(t *testing.T) {
	doc := dom.New(dom.NewElement("body", nil,
		dom.NewElement("h1", nil, dom.NewText("Chapter One")),
		dom.NewElement("p", nil, dom.NewText("It was dark")),
		dom.NewElement("ul", nil,
			dom.NewElement("li", nil, dom.NewText("first item")),
			dom.NewElement("li", nil, dom.NewText("second item")),
		),
		dom.NewElement("p", nil,
			dom.NewText("One "),
			dom.NewElement("em", nil, dom.NewText("two")),
			dom.NewText(" three. Four"),
		),
	))

	want := []string{"Chapter One", "It was dark", "first item", "second item", "One two three.", "Four"}
	if got := texts(All(doc)); !equalStrings(got, want) {
		t.Errorf("spans = %q, want %q", got, want)
	}
}

func TestSegmentHTMLWhitespaceBetweenBlocks(t *testing.T) {
	doc, err := dom.ParseHTMLString("<html><body>\n  <p>Alpha.</p>\n  <p>Beta</p>\n</body></html>")
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}

	want := []string{"Alpha.", "Beta"}
	if got := texts(All(doc)); !equalStrings(got, want) {
		t.Errorf("spans = %q, want %q", got, want)
	}
}

func TestSegmentEmptyDocuments(t *testing.T) {
	tests := []struct {
		name string
		root *dom.Element
	}{
		{"no text", dom.NewElement("body", nil, dom.NewElement("p", nil))},
		{"whitespace only", dom.NewElement("body", nil, dom.NewElement("p", nil, dom.NewText("  \n\t ")))},
		{"only local links", dom.NewElement("body", nil,
			dom.NewElement("p", nil, dom.NewElement("a", dom.Attrs{"href": "#x"}, dom.NewText("1"))))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if spans := All(dom.New(tt.root)); len(spans) != 0 {
				t.Errorf("got %d spans, want none: %q", len(spans), texts(spans))
			}
		})
	}
}

func TestSegmentMultibyteText(t *testing.T) {
	doc := dom.New(dom.NewElement("body", nil,
		dom.NewElement("p", nil, dom.NewText("你好。世界！Café? Done")),
	))

	want := []string{"你好。", "世界！", "Café?", "Done"}
	if got := texts(All(doc)); !equalStrings(got, want) {
		t.Errorf("spans = %q, want %q", got, want)
	}
}

// countingDoc counts how many text nodes the segmenter pulls.
type countingDoc struct {
	*dom.Document
	pulled int
}

func (d *countingDoc) Walk() document.TextWalker {
	return &countingWalker{inner: d.Document.Walk(), doc: d}
}

type countingWalker struct {
	inner document.TextWalker
	doc   *countingDoc
}

func (w *countingWalker) Next() (document.TextNode, bool) {
	n, ok := w.inner.Next()
	if ok {
		w.doc.pulled++
	}
	return n, ok
}

func TestSegmentIsLazy(t *testing.T) {
	var paras []dom.Node
	for i := 0; i < 50; i++ {
		paras = append(paras, dom.NewElement("p", nil, dom.NewText("A sentence. Another one.")))
	}
	doc := &countingDoc{Document: dom.New(dom.NewElement("body", nil, paras...))}

	s := Segment(doc)
	if doc.pulled != 0 {
		t.Fatalf("Segment read %d nodes before Next", doc.pulled)
	}

	if _, ok := s.Next(); !ok {
		t.Fatal("Next() = false on a non-empty document")
	}
	if doc.pulled != 1 {
		t.Errorf("first Next pulled %d nodes, want 1", doc.pulled)
	}

	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	if s.Count() != 100 {
		t.Errorf("Count() = %d, want 100", s.Count())
	}
	if _, ok := s.Next(); ok {
		t.Error("Next() after exhaustion returned a span")
	}
}
