package dom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
)

// ParseMarkdown converts Markdown source into a document tree shaped like
// the HTML goldmark would render, so footnote references become
// same-document links.
func ParseMarkdown(source []byte) (*Document, error) {
	node := markdown.Parser().Parse(text.NewReader(source))
	b := &mdBuilder{source: source, stack: []*Element{NewElement("body", nil)}}
	if err := ast.Walk(node, b.walk); err != nil {
		return nil, fmt.Errorf("failed to walk markdown AST: %w", err)
	}
	return New(b.stack[0]), nil
}

// ParseMarkdownString is ParseMarkdown over a string.
func ParseMarkdownString(s string) (*Document, error) {
	return ParseMarkdown([]byte(s))
}

type mdBuilder struct {
	source []byte
	stack  []*Element
}

func (b *mdBuilder) top() *Element {
	return b.stack[len(b.stack)-1]
}

func (b *mdBuilder) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Document, *ast.TextBlock:
		return ast.WalkContinue, nil

	case *ast.Text:
		if entering {
			b.text(string(n.Segment.Value(b.source)))
			if n.HardLineBreak() {
				b.text("\n")
			} else if n.SoftLineBreak() {
				b.text(" ")
			}
		}
		return ast.WalkContinue, nil

	case *ast.String:
		if entering {
			b.text(string(n.Value))
		}
		return ast.WalkContinue, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			var code strings.Builder
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				code.Write(seg.Value(b.source))
			}
			pre := NewElement("pre", nil, NewElement("code", nil, NewText(norm.NFC.String(code.String()))))
			b.top().Append(pre)
		}
		return ast.WalkSkipChildren, nil

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(b.source))
			b.top().Append(NewElement("a", Attrs{"href": url}, NewText(string(n.Label(b.source)))))
		}
		return ast.WalkSkipChildren, nil

	case *east.FootnoteLink:
		if entering {
			ref := strconv.Itoa(n.Index)
			a := NewElement("a", Attrs{"href": "#fn:" + ref, "id": "fnref:" + ref}, NewText(ref))
			b.top().Append(NewElement("sup", nil, a))
		}
		return ast.WalkSkipChildren, nil

	case *east.FootnoteBacklink:
		if entering {
			ref := strconv.Itoa(n.Index)
			b.top().Append(NewElement("a", Attrs{"href": "#fnref:" + ref}, NewText("↩︎")))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Image, *ast.RawHTML, *ast.HTMLBlock, *east.TaskCheckBox:
		return ast.WalkSkipChildren, nil
	}

	tag, attrs := b.element(n)
	if tag == "" {
		return ast.WalkContinue, nil
	}
	if entering {
		el := NewElement(tag, attrs)
		b.top().Append(el)
		b.stack = append(b.stack, el)
	} else if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
	return ast.WalkContinue, nil
}

// element maps a container node to its HTML tag.
func (b *mdBuilder) element(n ast.Node) (string, Attrs) {
	switch n := n.(type) {
	case *ast.Paragraph:
		return "p", nil
	case *ast.Heading:
		return fmt.Sprintf("h%d", n.Level), nil
	case *ast.Blockquote:
		return "blockquote", nil
	case *ast.List:
		if n.IsOrdered() {
			return "ol", nil
		}
		return "ul", nil
	case *ast.ListItem:
		return "li", nil
	case *ast.ThematicBreak:
		return "hr", nil
	case *ast.Emphasis:
		if n.Level == 2 {
			return "strong", nil
		}
		return "em", nil
	case *ast.CodeSpan:
		return "code", nil
	case *ast.Link:
		attrs := Attrs{"href": string(n.Destination)}
		if len(n.Title) > 0 {
			attrs["title"] = string(n.Title)
		}
		return "a", attrs
	case *east.Strikethrough:
		return "del", nil
	case *east.Table:
		return "table", nil
	case *east.TableHeader, *east.TableRow:
		return "tr", nil
	case *east.TableCell:
		return "td", nil
	case *east.FootnoteList:
		return "ol", Attrs{"class": "footnotes"}
	case *east.Footnote:
		return "li", Attrs{"id": "fn:" + strconv.Itoa(n.Index)}
	}
	return "", nil
}

// text appends s to the current element, merging with a preceding text
// node so that adjacent inline runs form one node.
func (b *mdBuilder) text(s string) {
	if s == "" {
		return
	}
	s = norm.NFC.String(s)
	parent := b.top()
	if n := len(parent.children); n > 0 {
		if t, ok := parent.children[n-1].(*Text); ok {
			t.data += s
			return
		}
	}
	parent.Append(NewText(s))
}
