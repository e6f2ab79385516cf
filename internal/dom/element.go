package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on an element node. Handles are cheap; two handles on
// the same node compare equal through Same.
type Element struct {
	node *html.Node
	doc  *Document
}

func (e *Element) Document() *Document {
	if e == nil {
		return nil
	}
	return e.doc
}

func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	return e.node.Data
}

func (e *Element) Same(other *Element) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}
	return e.node == other.node
}

func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func (e *Element) AttrOr(name, fallback string) string {
	if value, ok := e.Attr(name); ok {
		return value
	}
	return fallback
}

func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

func (e *Element) SetAttr(name, value string) {
	if e == nil {
		return
	}
	for i, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) RemoveAttr(name string) {
	if e == nil {
		return
	}
	kept := e.node.Attr[:0]
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			continue
		}
		kept = append(kept, attr)
	}
	e.node.Attr = kept
}

// SetBoolAttr toggles a boolean attribute such as disabled or checked.
func (e *Element) SetBoolAttr(name string, on bool) {
	if on {
		e.SetAttr(name, name)
		return
	}
	e.RemoveAttr(name)
}

func (e *Element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

func (e *Element) HasClass(class string) bool {
	for _, existing := range e.Classes() {
		if existing == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(classes ...string) {
	current := e.Classes()
	changed := false
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class == "" || containsString(current, class) {
			continue
		}
		current = append(current, class)
		changed = true
	}
	if changed {
		e.SetAttr("class", strings.Join(current, " "))
	}
}

func (e *Element) RemoveClass(classes ...string) {
	if !e.HasAttr("class") {
		return
	}
	current := e.Classes()
	kept := current[:0]
	for _, existing := range current {
		if containsString(classes, existing) {
			continue
		}
		kept = append(kept, existing)
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass flips class and reports whether it is now present.
func (e *Element) ToggleClass(class string) bool {
	if e.HasClass(class) {
		e.RemoveClass(class)
		return false
	}
	e.AddClass(class)
	return true
}

// Text returns the concatenated text content of the element.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	collectText(e.node, &sb)
	return sb.String()
}

// SetText replaces every child with a single text node.
func (e *Element) SetText(text string) {
	if e == nil {
		return
	}
	e.clearChildren()
	if text == "" {
		return
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// SetInnerHTML replaces every child with the parsed fragment.
func (e *Element) SetInnerHTML(markup string) error {
	if e == nil {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	e.clearChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) InnerHTML() string {
	if e == nil {
		return ""
	}
	var buf bytes.Buffer
	for child := e.node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return ""
		}
	}
	return buf.String()
}

func (e *Element) Parent() *Element {
	if e == nil || e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(e.node.Parent)
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if e == nil || other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Find returns every descendant in document order that satisfies match.
func (e *Element) Find(match Matcher) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			el := e.doc.wrap(child)
			if match == nil || match(el) {
				out = append(out, el)
			}
			walk(child)
		}
	}
	walk(e.node)
	return out
}

func (e *Element) First(match Matcher) *Element {
	found := e.Find(match)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// Siblings returns the element siblings of e that satisfy match.
func (e *Element) Siblings(match Matcher) []*Element {
	if e == nil || e.node.Parent == nil {
		return nil
	}
	var out []*Element
	for n := e.node.Parent.FirstChild; n != nil; n = n.NextSibling {
		if n == e.node || n.Type != html.ElementNode {
			continue
		}
		el := e.doc.wrap(n)
		if match == nil || match(el) {
			out = append(out, el)
		}
	}
	return out
}

// Wrap inserts a new element with the given class in place of e and moves e
// inside it. It returns the wrapper.
func (e *Element) Wrap(tag, class string) *Element {
	if e == nil || e.node.Parent == nil {
		return nil
	}
	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if class != "" {
		wrapper.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	parent := e.node.Parent
	parent.InsertBefore(wrapper, e.node)
	parent.RemoveChild(e.node)
	wrapper.AppendChild(e.node)
	return e.doc.wrap(wrapper)
}

// Value mirrors the value property of form controls. A select reports its
// selected option, falling back to the first option.
func (e *Element) Value() string {
	if e == nil {
		return ""
	}
	if e.Tag() == "select" {
		options := e.Find(Tag("option"))
		if len(options) == 0 {
			return ""
		}
		chosen := options[0]
		for _, option := range options {
			if option.HasAttr("selected") {
				chosen = option
				break
			}
		}
		if value, ok := chosen.Attr("value"); ok {
			return value
		}
		return strings.TrimSpace(chosen.Text())
	}
	return e.AttrOr("value", "")
}

// SetValue updates a form control. For a select it moves the selected flag to
// the option carrying value and reports false when there is none.
func (e *Element) SetValue(value string) bool {
	if e == nil {
		return false
	}
	if e.Tag() != "select" {
		e.SetAttr("value", value)
		return true
	}
	var target *Element
	options := e.Find(Tag("option"))
	for _, option := range options {
		if option.AttrOr("value", strings.TrimSpace(option.Text())) == value {
			target = option
			break
		}
	}
	if target == nil {
		return false
	}
	for _, option := range options {
		option.SetBoolAttr("selected", option.Same(target))
	}
	return true
}

func (e *Element) clearChildren() {
	for child := e.node.FirstChild; child != nil; {
		next := child.NextSibling
		e.node.RemoveChild(child)
		child = next
	}
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
