package dom

import "strings"

// Matcher selects elements during a query. Matchers compose with All and Any
// and cover the subset of CSS selectors the theme relies on.
type Matcher func(*Element) bool

func Tag(name string) Matcher {
	name = strings.ToLower(name)
	return func(e *Element) bool { return e.Tag() == name }
}

func HasAttr(name string) Matcher {
	return func(e *Element) bool { return e.HasAttr(name) }
}

func AttrEquals(name, value string) Matcher {
	return func(e *Element) bool {
		got, ok := e.Attr(name)
		return ok && got == value
	}
}

// AttrContains matches [name*=value].
func AttrContains(name, value string) Matcher {
	return func(e *Element) bool {
		got, ok := e.Attr(name)
		return ok && strings.Contains(got, value)
	}
}

func Class(class string) Matcher {
	return func(e *Element) bool { return e.HasClass(class) }
}

func All(matchers ...Matcher) Matcher {
	return func(e *Element) bool {
		for _, m := range matchers {
			if !m(e) {
				return false
			}
		}
		return true
	}
}

func Any(matchers ...Matcher) Matcher {
	return func(e *Element) bool {
		for _, m := range matchers {
			if m(e) {
				return true
			}
		}
		return false
	}
}

// Within matches elements that have an ancestor satisfying outer, the
// equivalent of a descendant combinator such as ".rte table".
func Within(outer Matcher, inner Matcher) Matcher {
	return func(e *Element) bool {
		if !inner(e) {
			return false
		}
		for p := e.Parent(); p != nil; p = p.Parent() {
			if outer(p) {
				return true
			}
		}
		return false
	}
}
