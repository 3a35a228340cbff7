// Package htmldoc wraps a parsed HTML page in a read-only, queryable tree.
//
// Parsing follows the HTML5 algorithm of golang.org/x/net/html, so malformed
// markup is repaired rather than rejected. Queries use CSS selectors through
// goquery; a missing element is an empty result, never an error.
package htmldoc

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is an immutable parsed page. It is safe for concurrent reads.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from r. The only possible error is a read error
// from r itself.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// ParseString is Parse for an in-memory body.
func ParseString(body string) (*Document, error) {
	return Parse(strings.NewReader(body))
}

// All returns every element matching the CSS selector, in document order.
func (d *Document) All(selector string) []Element {
	return wrap(d.doc.Find(selector))
}

// ByTag returns every element with the given tag name.
func (d *Document) ByTag(tag string) []Element {
	return d.All(tag)
}

// WithAttr returns every tag element carrying attr, whatever its value.
func (d *Document) WithAttr(tag, attr string) []Element {
	return d.All(tag + "[" + attr + "]")
}

// WithoutAttr returns every tag element lacking attr.
func (d *Document) WithoutAttr(tag, attr string) []Element {
	return d.All(tag + ":not([" + attr + "])")
}

// First returns the first element matching selector.
func (d *Document) First(selector string) (Element, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: sel}, true
}

// Count returns how many elements match selector.
func (d *Document) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

// Has reports whether at least one element matches selector.
func (d *Document) Has(selector string) bool {
	return d.Count(selector) > 0
}

// Element is a single node of a Document.
type Element struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s})
	})
	return out
}

// Tag returns the lower-case tag name.
func (e Element) Tag() string {
	return goquery.NodeName(e.sel)
}

// Attr returns the value of the named attribute and whether it exists.
func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// AttrOr returns the attribute value, or fallback when it is absent.
func (e Element) AttrOr(name, fallback string) string {
	return e.sel.AttrOr(name, fallback)
}

// HasAttr reports whether the attribute is present, even when empty.
func (e Element) HasAttr(name string) bool {
	_, ok := e.sel.Attr(name)
	return ok
}

// Text returns the trimmed text of the element and all its descendants.
func (e Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// OwnText returns the trimmed text of the element's direct text children.
func (e Element) OwnText() string {
	var b strings.Builder
	for _, n := range e.sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Find returns descendants of e matching selector.
func (e Element) Find(selector string) []Element {
	return wrap(e.sel.Find(selector))
}

// Closest returns the nearest ancestor-or-self matching selector.
func (e Element) Closest(selector string) (Element, bool) {
	sel := e.sel.Closest(selector)
	if sel.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: sel}, true
}
