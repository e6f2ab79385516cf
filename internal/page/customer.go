package page

import (
	"strings"

	"storefront-theme/internal/dom"
)

// RecoverHash deep links to the recover password form.
const RecoverHash = "#recover"

const (
	recoverLinkID       = "RecoverPassword"
	recoverFormID       = "RecoverPasswordForm"
	loginFormID         = "CustomerLoginForm"
	resetSuccessID      = "ResetSuccess"
	resetSuccessClass   = "reset-password-success"
	newAddressFormID    = "AddressNewForm"
	editAddressIDPrefix = "EditAddress_"
)

// BootLogin prepares the customer login template. The recover password form
// replaces the login form when hash is RecoverHash, and a successful reset is
// announced. It reports false when the page is not a login page.
func BootLogin(doc *dom.Document, hash string) bool {
	if doc.ElementByID(recoverLinkID) == nil {
		return false
	}
	if "#"+strings.TrimPrefix(strings.TrimSpace(hash), "#") == RecoverHash {
		ToggleRecoverPassword(doc)
	}
	if doc.First(dom.Class(resetSuccessClass)) != nil {
		if notice := doc.ElementByID(resetSuccessID); notice != nil {
			notice.RemoveClass(hideClass)
		}
	}
	return true
}

// ToggleRecoverPassword swaps the login form for the recover password form,
// or back.
func ToggleRecoverPassword(doc *dom.Document) bool {
	if doc.ElementByID(recoverLinkID) == nil {
		return false
	}
	for _, id := range []string{recoverFormID, loginFormID} {
		if el := doc.ElementByID(id); el != nil {
			el.ToggleClass(hideClass)
		}
	}
	return true
}

// ToggleNewAddress shows or hides the new address form.
func ToggleNewAddress(doc *dom.Document) bool {
	form := doc.ElementByID(newAddressFormID)
	if form == nil {
		return false
	}
	form.ToggleClass(hideClass)
	return true
}

// ToggleEditAddress shows or hides the edit form of one saved address.
func ToggleEditAddress(doc *dom.Document, formID string) bool {
	if doc.ElementByID(newAddressFormID) == nil {
		return false
	}
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return false
	}
	form := doc.ElementByID(editAddressIDPrefix + formID)
	if form == nil {
		return false
	}
	form.ToggleClass(hideClass)
	return true
}
