// Package page holds the template-level controls that live outside any
// section: the customer login and address forms, the collection sort and
// filter bar and the header menu and search.
package page

import (
	"errors"
	"fmt"
	"strings"

	"storefront-theme/internal/dom"
)

const (
	hideClass   = "hide"
	activeClass = "active"
	openClass   = "open"

	positionFixed  = "position: fixed"
	positionStatic = "position: static"
)

// Control names a page control a host can press.
type Control string

const (
	ControlRecoverPassword Control = "recover_password"
	ControlNewAddress      Control = "address_new"
	ControlEditAddress     Control = "address_edit"
	ControlSortMenu        Control = "sort_menu"
	ControlSortBy          Control = "sort_by"
	ControlFilters         Control = "filters"
	ControlFilterItem      Control = "filter_item"
	ControlMenuOpen        Control = "menu_open"
	ControlMenuClose       Control = "menu_close"
	ControlSearch          Control = "search"
)

var (
	ErrUnknownControl = errors.New("unknown page control")
	ErrNoControl      = errors.New("page has no such control")
)

// ParseControl accepts a control name in any case, with "-" or "_".
func ParseControl(name string) (Control, error) {
	normalized := Control(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	switch normalized {
	case ControlRecoverPassword, ControlNewAddress, ControlEditAddress,
		ControlSortMenu, ControlSortBy, ControlFilters, ControlFilterItem,
		ControlMenuOpen, ControlMenuClose, ControlSearch:
		return normalized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownControl, name)
}

// Press applies control to doc. arg carries the address form id for
// address_edit, the sort value for sort_by and the item value for
// filter_item.
func Press(doc *dom.Document, control Control, arg string) error {
	var ok bool
	switch control {
	case ControlRecoverPassword:
		ok = ToggleRecoverPassword(doc)
	case ControlNewAddress:
		ok = ToggleNewAddress(doc)
	case ControlEditAddress:
		ok = ToggleEditAddress(doc, arg)
	case ControlSortMenu:
		ok = ToggleSortMenu(doc)
	case ControlSortBy:
		ok = MarkSortBy(doc, arg)
	case ControlFilters:
		_, ok = ToggleFilters(doc)
	case ControlFilterItem:
		ok = ToggleFilterItem(doc, arg)
	case ControlMenuOpen:
		ok = OpenMenu(doc)
	case ControlMenuClose:
		ok = CloseMenu(doc)
	case ControlSearch:
		ok = OpenSearch(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, control)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoControl, control)
	}
	return nil
}

// pinBody fixes the body while an overlay is open.
func pinBody(doc *dom.Document, pinned bool) {
	body := doc.Body()
	if body == nil {
		return
	}
	if pinned {
		body.SetAttr("style", positionFixed)
		return
	}
	body.SetAttr("style", positionStatic)
}
