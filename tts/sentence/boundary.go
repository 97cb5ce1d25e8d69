// Package sentence splits a document tree into sentence-sized spans for
// speech synthesis.
package sentence

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgnsrekt/readalong/tts/document"
)

// blockTags is the closed set of elements that scope a sentence.
var blockTags = map[string]bool{
	"article": true, "aside": true, "audio": true, "blockquote": true, "caption": true,
	"details": true, "dialog": true, "div": true, "dl": true, "dt": true, "dd": true,
	"figure": true, "footer": true, "form": true, "figcaption": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hgroup": true, "hr": true, "li": true,
	"main": true, "math": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "tr": true,
}

// schemeRegex matches a URI scheme prefix such as "https:" or "mailto:".
var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// IsQuote reports whether r is a quote that closes a sentence.
func IsQuote(r rune) bool {
	switch r {
	case '"', '\'', '“', '”', '‘', '’':
		return true
	}
	return false
}

// IsBlockTag reports whether tag opens a new sentence scope.
func IsBlockTag(tag string) bool {
	return blockTags[strings.ToLower(tag)]
}

// IsSentenceTerminator reports whether r ends a sentence given the rune
// that follows it. A period only counts when followed by nothing,
// whitespace or a quote, so "e.g." mid-word is not split. Abbreviations
// followed by a space ("Mr. Smith") are split.
func IsSentenceTerminator(r, next rune, hasNext bool) bool {
	switch r {
	case '!', '?', '。', '！', '？':
		return true
	case '.':
		if !hasNext {
			return true
		}
		return IsQuote(next) || unicode.IsSpace(next)
	}
	return false
}

// IsLocalReference reports whether href points inside the same document:
// empty, a fragment, or a relative reference without a scheme.
func IsLocalReference(href string) bool {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	return !schemeRegex.MatchString(trimmed)
}

// IsExcludedTextNode reports whether n sits inside a same-document link
// (a footnote or cross-reference marker). An anchor without an href
// attribute is a link target, not a link, and does not exclude its text.
func IsExcludedTextNode(n document.TextNode) bool {
	anchor := closest(n.Parent(), "a")
	if anchor == nil {
		return false
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return false
	}
	return IsLocalReference(href)
}

// BlockScope returns the nearest block-level ancestor of n, or root when
// there is none.
func BlockScope(n document.TextNode, root document.Element) document.Element {
	for el := n.Parent(); el != nil; el = el.Parent() {
		if IsBlockTag(el.Tag()) {
			return el
		}
	}
	return root
}

// closest walks up from el (inclusive) to the first element named tag.
func closest(el document.Element, tag string) document.Element {
	for ; el != nil; el = el.Parent() {
		if strings.EqualFold(el.Tag(), tag) {
			return el
		}
	}
	return nil
}

// advancePastQuotes returns the offset after any quotes starting at i.
func advancePastQuotes(text string, i int) int {
	for j, r := range text[i:] {
		if !IsQuote(r) {
			return i + j
		}
	}
	return len(text)
}
