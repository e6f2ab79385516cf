package page

import "storefront-theme/internal/dom"

const (
	mainMenuClass     = "header__main-menu"
	mainMenuOpenClass = "header__main-menu--open"
	navClass          = "header__nav"
	searchClass       = "header__search"
	searchButtonClass = "header__search-button"
	mediumUpHideClass = "medium-up--hide"
)

// OpenMenu opens the main menu drawer and pins the body.
func OpenMenu(doc *dom.Document) bool {
	menu := doc.First(dom.Class(mainMenuClass))
	if menu == nil {
		return false
	}
	menu.AddClass(mainMenuOpenClass)
	pinBody(doc, true)
	return true
}

func CloseMenu(doc *dom.Document) bool {
	menu := doc.First(dom.Class(mainMenuClass))
	if menu == nil {
		return false
	}
	menu.RemoveClass(mainMenuOpenClass)
	pinBody(doc, false)
	return true
}

// OpenSearch reveals the header search form and hides its button on wide
// screens.
func OpenSearch(doc *dom.Document) bool {
	form := doc.First(dom.Within(dom.Class(navClass), dom.Class(searchClass)))
	if form == nil {
		return false
	}
	form.AddClass(openClass)
	if button := doc.First(dom.Class(searchButtonClass)); button != nil {
		button.AddClass(mediumUpHideClass)
	}
	return true
}
