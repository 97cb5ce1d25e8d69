package dom

import (
	"errors"
	"strings"
	"testing"
)

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTMLString(`<!DOCTYPE html>
<html><head><title>Skip me</title><style>p{}</style></head>
<body class="chapter"><h1>Title</h1>
<p>First <a href="#n1">1</a> line.</p>
<script>var x = 1;</script>
<!-- a comment -->
</body></html>`)
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}

	body := doc.Body()
	if class, _ := body.Attr("class"); class != "chapter" {
		t.Errorf("body class = %q, want chapter", class)
	}

	text := doc.Text()
	for _, skipped := range []string{"Skip me", "p{}", "var x", "a comment"} {
		if strings.Contains(text, skipped) {
			t.Errorf("Text() contains %q: %q", skipped, text)
		}
	}
	if !strings.Contains(text, "First 1 line.") {
		t.Errorf("Text() = %q, want the paragraph", text)
	}

	var link *Element
	for _, n := range doc.TextNodes() {
		if n.Data() == "1" {
			link = n.ParentElement()
		}
	}
	if link == nil || link.Tag() != "a" {
		t.Fatal("link text node not found under an <a>")
	}
	if href, ok := link.Attr("href"); !ok || href != "#n1" {
		t.Errorf("href = %q, %v", href, ok)
	}
}

func TestParseHTMLFragmentGetsBody(t *testing.T) {
	doc, err := ParseHTMLString("<p>Just a fragment.</p>")
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}
	if doc.Text() != "Just a fragment." {
		t.Errorf("Text() = %q", doc.Text())
	}
}

func TestParseHTMLNormalizesText(t *testing.T) {
	doc, err := ParseHTMLString("<p>Cafe\u0301</p>")
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}
	if doc.Text() != "Caf\u00e9" {
		t.Errorf("Text() = %q, want the composed form", doc.Text())
	}
}

func TestParseMarkdown(t *testing.T) {
	doc, err := ParseMarkdownString(`# Heading

A paragraph with *emphasis* and a [link](https://example.com).
Second line.

- one
- two

> quoted

` + "```go\nfmt.Println(1)\n```\n")
	if err != nil {
		t.Fatalf("ParseMarkdownString() error = %v", err)
	}

	var tags []string
	for _, c := range doc.Body().Children() {
		if el, ok := c.(*Element); ok {
			tags = append(tags, el.Tag())
		}
	}
	if got := strings.Join(tags, " "); got != "h1 p ul blockquote pre" {
		t.Errorf("top-level tags = %q", got)
	}

	text := doc.Text()
	for _, want := range []string{"Heading", "A paragraph with emphasis and a link. Second line.", "one", "quoted", "fmt.Println(1)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() = %q, missing %q", text, want)
		}
	}
}

func TestParseMarkdownFootnotes(t *testing.T) {
	doc, err := ParseMarkdownString("Claim[^1] made.\n\n[^1]: The source.\n")
	if err != nil {
		t.Fatalf("ParseMarkdownString() error = %v", err)
	}

	var ref *Element
	for _, n := range doc.TextNodes() {
		if n.Data() == "1" {
			ref = n.ParentElement()
		}
	}
	if ref == nil || ref.Tag() != "a" {
		t.Fatal("footnote reference is not a link")
	}
	if href, _ := ref.Attr("href"); href != "#fn:1" {
		t.Errorf("footnote href = %q, want #fn:1", href)
	}
	if !strings.Contains(doc.Text(), "The source.") {
		t.Errorf("Text() = %q, missing the footnote body", doc.Text())
	}
}

func TestParseHTMLError(t *testing.T) {
	_, err := ParseHTML(failingReader{})
	if err == nil {
		t.Fatal("ParseHTML() should fail when the reader fails")
	}
	if errors.Is(err, ErrNoBody) {
		t.Error("a read failure is not a missing body")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}
