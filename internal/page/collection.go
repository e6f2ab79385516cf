package page

import (
	"net/url"
	"strings"

	"storefront-theme/internal/dom"
)

// SortByParam is the query parameter carrying the collection sort order.
const SortByParam = "sort_by"

const (
	sortByClass          = "sort-by"
	sortByOptionClass    = "sort-by__option"
	sortByOptionsClass   = "sort-by__options"
	sortByIndicatorClass = "sort-by__indicator"
	filtersClass         = "filters"
	filterItemClass      = "filters__item"
	attrDataValue        = "data-value"
)

// SortBy returns the sort order named by the page URL, falling back to the
// default the sort menu declares.
func SortBy(doc *dom.Document, pageURL string) string {
	if pageURL != "" {
		if parsed, err := url.Parse(pageURL); err == nil {
			if value := parsed.Query().Get(SortByParam); value != "" {
				return value
			}
		}
	}
	if options := doc.First(dom.Class(sortByOptionsClass)); options != nil {
		return options.AttrOr(attrDataValue, "")
	}
	return ""
}

// BootCollection marks the active sort option of a collection page. It
// reports false when the page has no sort options or none matches.
func BootCollection(doc *dom.Document, pageURL string) bool {
	value := SortBy(doc, pageURL)
	if value == "" {
		return false
	}
	return MarkSortBy(doc, value)
}

// MarkSortBy moves the active class to the first sort option carrying value.
// Nothing changes when no option matches.
func MarkSortBy(doc *dom.Document, value string) bool {
	options := doc.Find(dom.Class(sortByOptionClass))
	var match *dom.Element
	for _, option := range options {
		if option.AttrOr(attrDataValue, "") == value {
			match = option
			break
		}
	}
	if match == nil {
		return false
	}
	for _, option := range options {
		option.RemoveClass(activeClass)
	}
	match.AddClass(activeClass)
	return true
}

// ToggleSortMenu opens or closes the sort dropdown.
func ToggleSortMenu(doc *dom.Document) bool {
	indicator := doc.First(dom.Class(sortByIndicatorClass))
	if indicator == nil {
		return false
	}
	open := indicator.ToggleClass(activeClass)
	if parent := indicator.Parent(); parent != nil && parent.HasClass(sortByClass) {
		if open {
			parent.AddClass(activeClass)
		} else {
			parent.RemoveClass(activeClass)
		}
	}
	return true
}

// ToggleFilters opens or closes the filter drawer and pins the body while it
// is open. The first result reports whether the drawer is now open.
func ToggleFilters(doc *dom.Document) (open, ok bool) {
	drawer := doc.First(dom.Class(filtersClass))
	if drawer == nil {
		return false, false
	}
	open = drawer.ToggleClass(activeClass)
	pinBody(doc, open)
	return open, true
}

// ToggleFilterItem flips the filter item carrying value.
func ToggleFilterItem(doc *dom.Document, value string) bool {
	for _, item := range doc.Find(dom.Class(filterItemClass)) {
		if item.AttrOr(attrDataValue, strings.TrimSpace(item.Text())) == value {
			item.ToggleClass(activeClass)
			return true
		}
	}
	return false
}
