// Package dom is a small element model over golang.org/x/net/html. It gives
// the theme behaviours the handful of operations they need on a storefront
// page: attribute and class manipulation, text replacement, descendant
// queries, wrapping and focus tracking.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var ErrNoDocument = errors.New("document is nil")

// Document owns a parsed page and the element that currently has focus.
type Document struct {
	root    *html.Node
	focused *html.Node
}

// Parse reads a full HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	if d == nil || d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return d.wrap(child)
		}
	}
	return nil
}

func (d *Document) Body() *Element {
	return d.Root().First(Tag("body"))
}

// Find returns every element in document order that satisfies match.
func (d *Document) Find(match Matcher) []*Element {
	root := d.Root()
	if root == nil {
		return nil
	}
	var out []*Element
	if match(root) {
		out = append(out, root)
	}
	return append(out, root.Find(match)...)
}

func (d *Document) First(match Matcher) *Element {
	found := d.Find(match)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// ElementByID mirrors document.getElementById.
func (d *Document) ElementByID(id string) *Element {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return d.First(AttrEquals("id", id))
}

// Focus moves focus to el. A nil element clears focus.
func (d *Document) Focus(el *Element) {
	if d == nil {
		return
	}
	if el == nil {
		d.focused = nil
		return
	}
	d.focused = el.node
}

func (d *Document) Focused() *Element {
	if d == nil || d.focused == nil {
		return nil
	}
	return d.wrap(d.focused)
}

func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return ErrNoDocument
	}
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{node: n, doc: d}
}
