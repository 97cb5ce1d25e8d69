package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// unnarrated lists subtrees that never carry readable prose.
const unnarrated = "head, script, style, template, noscript, svg"

// ParseHTML reads an HTML or XHTML document and roots the tree at <body>.
func ParseHTML(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}
	doc.Find(unnarrated).Remove()

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil, ErrNoBody
	}

	root := NewElement("body", attrsOf(body.Nodes[0]))
	convertChildren(root, body.Nodes[0])
	return New(root), nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

func convertChildren(parent *Element, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data == "" {
				continue
			}
			parent.Append(NewText(norm.NFC.String(c.Data)))
		case html.ElementNode:
			el := NewElement(c.Data, attrsOf(c))
			parent.Append(el)
			convertChildren(el, c)
		}
	}
}

func attrsOf(n *html.Node) Attrs {
	if len(n.Attr) == 0 {
		return nil
	}
	attrs := make(Attrs, len(n.Attr))
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		attrs[key] = a.Val
	}
	return attrs
}
