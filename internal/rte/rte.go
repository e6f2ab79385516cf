// Package rte adjusts rich text editor output so tables scroll and embedded
// videos scale with their container.
package rte

import "storefront-theme/internal/dom"

const (
	TableWrapperClass  = "rte__table-wrapper"
	IframeWrapperClass = "rte__video-wrapper"
)

var (
	rteContent = dom.Class("rte")

	videoIframes = dom.All(
		dom.Tag("iframe"),
		dom.Any(
			dom.AttrContains("src", "youtube.com/embed"),
			dom.AttrContains("src", "player.vimeo"),
		),
	)
)

// WrapTables wraps every table inside .rte content in a div carrying
// wrapperClass and returns how many were wrapped.
func WrapTables(doc *dom.Document, wrapperClass string) int {
	return wrapAll(doc.Find(dom.Within(rteContent, dom.Tag("table"))), wrapperClass)
}

// WrapIframes wraps YouTube and Vimeo embeds inside .rte content.
func WrapIframes(doc *dom.Document, wrapperClass string) int {
	return wrapAll(doc.Find(dom.Within(rteContent, videoIframes)), wrapperClass)
}

func wrapAll(elements []*dom.Element, wrapperClass string) int {
	wrapped := 0
	for _, el := range elements {
		if parent := el.Parent(); parent != nil && wrapperClass != "" && parent.HasClass(wrapperClass) {
			continue
		}
		if el.Wrap("div", wrapperClass) != nil {
			wrapped++
		}
	}
	return wrapped
}
