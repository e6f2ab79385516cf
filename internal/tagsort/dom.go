package tagsort

import (
	"html"
	"strings"

	"storefront-theme/internal/dom"
)

const (
	AttrItemTags = "data-item-tags"
	AttrTag      = "data-tag"

	ActiveClass = "tagsort-active"
	HiddenClass = "hide"
)

// Board binds a Filter to a tag container and the item elements it filters.
type Board struct {
	filter    *Filter
	container *dom.Element
	items     []*dom.Element
}

// Bind renders one <li data-tag> per tag into container and filters every
// element carrying data-item-tags.
func Bind(doc *dom.Document, container *dom.Element, mode Mode, opts ...Option) (*Board, error) {
	items := doc.Find(dom.HasAttr(AttrItemTags))
	raw := make([]string, len(items))
	for i, item := range items {
		raw[i] = item.AttrOr(AttrItemTags, "")
	}

	b := &Board{filter: New(mode, raw, opts...), container: container, items: items}
	if container != nil {
		var sb strings.Builder
		for _, tag := range b.filter.Tags() {
			sb.WriteString(`<li data-tag="`)
			sb.WriteString(html.EscapeString(tag.Key))
			sb.WriteString(`">`)
			sb.WriteString(html.EscapeString(tag.Label))
			sb.WriteString(`</li>`)
		}
		if err := container.SetInnerHTML(sb.String()); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Board) Filter() *Filter { return b.filter }

// Tag returns the rendered element for tag, or nil.
func (b *Board) Tag(tag string) *dom.Element {
	if b.container == nil {
		return nil
	}
	return b.container.First(dom.AttrEquals(AttrTag, b.filter.Key(tag)))
}

// Click toggles the tag behind a rendered tag element.
func (b *Board) Click(tagElement *dom.Element) {
	key, ok := tagElement.Attr(AttrTag)
	if !ok {
		return
	}
	b.apply(b.filter.Toggle(key))
}

func (b *Board) Reset() {
	b.apply(b.filter.Reset())
}

func (b *Board) apply(visible []bool) {
	for i, item := range b.items {
		if visible[i] {
			item.RemoveClass(HiddenClass)
		} else {
			item.AddClass(HiddenClass)
		}
	}
	if b.container == nil {
		return
	}
	for _, el := range b.container.Find(dom.HasAttr(AttrTag)) {
		key := el.AttrOr(AttrTag, "")
		if b.filter.IsActive(key) {
			el.AddClass(ActiveClass)
		} else {
			el.RemoveClass(ActiveClass)
		}
	}
}
