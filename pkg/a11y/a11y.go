// Package a11y keeps keyboard focus where assistive technology expects it
// after in-page navigation and inside modal containers.
package a11y

import (
	"strings"

	"storefront-theme/internal/dom"
)

// FocusHiddenClass hides the focus ring on containers focused by script.
const FocusHiddenClass = "js-focus-hidden"

// FocusPageLink focuses a container reached through an in-page link so the
// next tab stop is inside it. The returned function undoes the temporary
// tabindex and class and should run when the element loses focus.
func FocusPageLink(el *dom.Element) (onBlur func()) {
	if el == nil {
		return func() {}
	}
	el.SetAttr("tabindex", "-1")
	el.AddClass(FocusHiddenClass)
	el.Document().Focus(el)

	return func() {
		el.RemoveClass(FocusHiddenClass)
		el.RemoveAttr("tabindex")
	}
}

// FocusHash focuses the element targeted by a URL fragment such as "#main".
// It returns nil when the fragment points nowhere.
func FocusHash(doc *dom.Document, hash string) (onBlur func()) {
	id := strings.TrimPrefix(strings.TrimSpace(hash), "#")
	if id == "" {
		return nil
	}
	target := doc.ElementByID(id)
	if target == nil {
		return nil
	}
	return FocusPageLink(target)
}

type TrapOptions struct {
	Container *dom.Element
	// ElementToFocus defaults to Container.
	ElementToFocus *dom.Element
}

// Trap keeps focus inside a container until released.
type Trap struct {
	container *dom.Element
	released  bool
}

func TrapFocus(opts TrapOptions) *Trap {
	if opts.Container == nil {
		return &Trap{released: true}
	}
	focus := opts.ElementToFocus
	if focus == nil {
		focus = opts.Container
	}

	opts.Container.SetAttr("tabindex", "-1")
	opts.Container.Document().Focus(focus)
	return &Trap{container: opts.Container}
}

// FocusIn handles a focusin event on target. When target lies outside the
// container, focus is pulled back and FocusIn reports true.
func (t *Trap) FocusIn(target *dom.Element) bool {
	if t == nil || t.released || t.container.Contains(target) {
		return false
	}
	t.container.Document().Focus(t.container)
	return true
}

// Release stops trapping and removes the container's tabindex.
func (t *Trap) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	t.container.RemoveAttr("tabindex")
}

func (t *Trap) Active() bool {
	return t != nil && !t.released
}
