// Package cart drives the cart template's quantity steppers and the cookie
// support flag on the root element.
package cart

import (
	"strconv"
	"strings"

	"storefront-theme/internal/dom"
)

const (
	TemplateClass = "template-cart"

	NoCookiesClass = "supports-no-cookies"
	CookiesClass   = "supports-cookies"

	minusClass = "minus"
	plusClass  = "plus"
)

// Quantity reads an input value as a whole quantity. Anything unparsable or
// below one counts as one.
func Quantity(input *dom.Element) int {
	n, err := strconv.Atoi(strings.TrimSpace(input.Value()))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Increment adds one to the quantity input and returns the new value.
func Increment(input *dom.Element) int {
	next := Quantity(input) + 1
	input.SetValue(strconv.Itoa(next))
	return next
}

// Decrement removes one from the quantity input. It never goes below one.
func Decrement(input *dom.Element) int {
	current := Quantity(input)
	if current > 1 {
		current--
	}
	input.SetValue(strconv.Itoa(current))
	return current
}

// Click handles a press on a .minus or .plus button inside the cart template.
// The quantity input is the button's sibling. It reports false when the
// element is not a stepper or has no input beside it.
func Click(button *dom.Element) (int, bool) {
	if button == nil || !insideCart(button) {
		return 0, false
	}

	var step func(*dom.Element) int
	switch {
	case button.HasClass(minusClass):
		step = Decrement
	case button.HasClass(plusClass):
		step = Increment
	default:
		return 0, false
	}

	inputs := button.Siblings(dom.Tag("input"))
	if len(inputs) == 0 {
		return 0, false
	}
	return step(inputs[0]), true
}

// Steppers lists the stepper buttons of the cart template in document order.
func Steppers(doc *dom.Document) []*dom.Element {
	return doc.Find(dom.Within(dom.Class(TemplateClass), dom.Any(dom.Class(minusClass), dom.Class(plusClass))))
}

// Stepper returns the plus (increase) or minus button of the 1-based cart
// line, or nil when the cart has fewer lines.
func Stepper(doc *dom.Document, line int, increase bool) *dom.Element {
	class := minusClass
	if increase {
		class = plusClass
	}
	if line < 1 {
		return nil
	}
	n := 0
	for _, button := range Steppers(doc) {
		if !button.HasClass(class) {
			continue
		}
		if n++; n == line {
			return button
		}
	}
	return nil
}

// MarkCookieSupport swaps supports-no-cookies for supports-cookies on the
// root element when the browser accepts cookies.
func MarkCookieSupport(doc *dom.Document, enabled bool) bool {
	if !enabled {
		return false
	}
	root := doc.Root()
	if root == nil {
		return false
	}
	root.RemoveClass(NoCookiesClass)
	root.AddClass(CookiesClass)
	return true
}

func insideCart(el *dom.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.HasClass(TemplateClass) {
			return true
		}
	}
	return false
}
