// Package product implements the product section: it resolves the variant
// picked in the add to cart form and keeps price, availability and the
// featured image in step with it.
package product

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront-theme/internal/cart"
	"storefront-theme/internal/dom"
	"storefront-theme/internal/events"
	"storefront-theme/internal/sections"
	"storefront-theme/internal/variants"
	"storefront-theme/pkg/logger"
	"storefront-theme/pkg/media"
	"storefront-theme/pkg/money"
	"storefront-theme/pkg/validator"
)

// SectionType is the data-section-type the factory is registered under.
const SectionType = "product"

const (
	attrProductJSON          = "data-product-json"
	attrSingleOptionSelector = "data-single-option-selector"
	attrOriginalSelector     = "data-product-select"
	attrAddToCart            = "data-add-to-cart"
	attrAddToCartText        = "data-add-to-cart-text"
	attrPriceWrapper         = "data-price-wrapper"
	attrProductPrice         = "data-product-price"
	attrComparePrice         = "data-compare-price"
	attrCompareText          = "data-compare-text"
	attrFeaturedImage        = "data-product-featured-image"
	attrQuantity             = "data-product-quantity"
	attrOptionIndex          = "data-index"
	attrEnableHistoryState   = "data-enable-history-state"

	attrCollapseTarget = "collapse-target"

	hideClass            = "hide"
	openClass            = "open"
	collapseControlClass = "collapse-control"

	showMoreText = "Show More"
	showLessText = "Show Less"
)

var ErrNotElement = errors.New("product section anchor is not a DOM element")

type Strings struct {
	AddToCart   string
	SoldOut     string
	Unavailable string
}

type Settings struct {
	MoneyFormat string
	Strings     Strings

	// PageURL and ReplaceState back the history update performed when the
	// section opts in through data-enable-history-state.
	PageURL      string
	ReplaceState func(url string)
}

// Section is a live product section. A section rendered without product JSON
// is inert: it has no selector and its operations do nothing.
type Section struct {
	container *dom.Element
	settings  Settings

	product  *variants.Product
	selector *variants.Selector
	subs     events.Group

	featuredImage *dom.Element
	imageSize     string
	preload       []string
}

// NewFactory returns a sections.Factory building product sections from DOM
// anchors.
func NewFactory(settings Settings) sections.Factory {
	return func(anchor sections.Anchor) (sections.Section, error) {
		el, ok := anchor.(*dom.Element)
		if !ok || el == nil {
			return nil, ErrNotElement
		}
		return New(el, settings)
	}
}

func New(container *dom.Element, settings Settings) (*Section, error) {
	if settings.MoneyFormat == "" {
		settings.MoneyFormat = money.DefaultFormat
	}
	s := &Section{container: container, settings: settings}

	script := container.First(dom.HasAttr(attrProductJSON))
	if script == nil || strings.TrimSpace(script.Text()) == "" {
		logger.Debug("Product section has no product JSON", map[string]interface{}{
			"section_id": container.AttrOr(sections.AttrSectionID, ""),
		})
		return s, nil
	}

	product, err := variants.ParseProduct([]byte(script.Text()))
	if err != nil {
		return nil, fmt.Errorf("product section %s: %w", container.AttrOr(sections.AttrSectionID, ""), err)
	}
	s.product = product

	cfg := variants.SelectorConfig{
		Product:      product,
		Options:      variants.OptionSourceFunc(s.currentOptions),
		Bus:          events.NewBus(),
		MasterSelect: s.updateMasterSelect,
	}
	if container.AttrOr(attrEnableHistoryState, "") == "true" && settings.ReplaceState != nil {
		cfg.PageURL = settings.PageURL
		cfg.ReplaceState = settings.ReplaceState
	}
	selector, err := variants.NewSelector(cfg)
	if err != nil {
		return nil, err
	}
	s.selector = selector

	if err := s.subscribe(events.VariantChange, s.updateAddToCartState); err != nil {
		return nil, err
	}
	if err := s.subscribe(events.VariantPriceChange, s.updateProductPrices); err != nil {
		return nil, err
	}

	s.featuredImage = container.First(dom.HasAttr(attrFeaturedImage))
	if s.featuredImage != nil {
		s.imageSize = media.ImageSize(s.featuredImage.AttrOr("src", ""))
		s.preload = media.Preload(product.Images, s.imageSize)
		if err := s.subscribe(events.VariantImageChange, s.updateProductImage); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Section) subscribe(name string, update func(*variants.Variant)) error {
	sub, err := s.selector.Bus().Subscribe(name, func(ev events.Event) {
		update(variants.VariantFromEvent(ev))
	})
	if err != nil {
		return err
	}
	s.subs.Add(sub)
	return nil
}

// Observe subscribes handler to every variant event of the section. The
// subscriptions are released together with the section's own.
func (s *Section) Observe(handler events.Handler) error {
	if s.selector == nil {
		return nil
	}
	for _, name := range []string{events.VariantChange, events.VariantImageChange, events.VariantPriceChange} {
		sub, err := s.selector.Bus().Subscribe(name, handler)
		if err != nil {
			return err
		}
		s.subs.Add(sub)
	}
	return nil
}

// OnUnload releases the section's event subscriptions.
func (s *Section) OnUnload(sections.Signal) error {
	s.subs.Cancel()
	return nil
}

func (s *Section) Inert() bool                { return s.selector == nil }
func (s *Section) Product() *variants.Product { return s.product }

// Preload lists the product images sized like the featured image.
func (s *Section) Preload() []string { return append([]string(nil), s.preload...) }

func (s *Section) Bus() *events.Bus {
	if s.selector == nil {
		return nil
	}
	return s.selector.Bus()
}

func (s *Section) Current() *variants.Variant {
	if s.selector == nil {
		return nil
	}
	return s.selector.Current()
}

// Change re-resolves the variant from the form, as an option input's change
// event does.
func (s *Section) Change() *variants.Variant {
	if s.selector == nil {
		return nil
	}
	return s.selector.Change()
}

// SetOption sets the option input with the given position to value and runs
// Change. Radio inputs are checked by value. It reports false, leaving the
// form untouched, when no input accepts the value.
func (s *Section) SetOption(index int, value string) bool {
	if s.selector == nil {
		return false
	}

	var radios, fields []*dom.Element
	matched := false
	for _, input := range s.optionInputs() {
		if variants.ParseOptionIndex(input.AttrOr(attrOptionIndex, "")) != index {
			continue
		}
		if isCheckable(input) {
			radios = append(radios, input)
			if input.AttrOr("value", "") == value {
				matched = true
			}
			continue
		}
		if accepts(input, value) {
			fields = append(fields, input)
			matched = true
		}
	}
	if !matched {
		return false
	}

	for _, input := range radios {
		input.SetBoolAttr("checked", input.AttrOr("value", "") == value)
	}
	for _, input := range fields {
		input.SetValue(value)
	}
	s.Change()
	return true
}

// accepts reports whether SetValue would take value: a select only takes one
// of its options.
func accepts(input *dom.Element, value string) bool {
	if input.Tag() != "select" {
		return true
	}
	for _, option := range input.Find(dom.Tag("option")) {
		if option.AttrOr("value", strings.TrimSpace(option.Text())) == value {
			return true
		}
	}
	return false
}

// ToggleDescription flips the collapsed product description named by the
// control's collapse-target attribute and relabels the control. It reports
// false when the section has no collapse control.
func (s *Section) ToggleDescription() bool {
	control := s.container.First(dom.Class(collapseControlClass))
	if control == nil {
		return false
	}
	target := strings.TrimSpace(control.AttrOr(attrCollapseTarget, ""))
	if target == "" {
		return false
	}
	for _, el := range s.container.Document().Find(dom.Class(target)) {
		if el.ToggleClass(openClass) {
			control.SetText(showLessText)
		} else {
			control.SetText(showMoreText)
		}
	}
	return true
}

// Increment and Decrement step the quantity input; it never drops below one.
func (s *Section) Increment() (int, bool) {
	input := s.container.First(dom.HasAttr(attrQuantity))
	if input == nil {
		return 0, false
	}
	return cart.Increment(input), true
}

func (s *Section) Decrement() (int, bool) {
	input := s.container.First(dom.HasAttr(attrQuantity))
	if input == nil {
		return 0, false
	}
	return cart.Decrement(input), true
}

func (s *Section) optionInputs() []*dom.Element {
	return s.container.Find(dom.HasAttr(attrSingleOptionSelector))
}

// currentOptions reads every option input; unchecked radios and checkboxes
// are skipped.
func (s *Section) currentOptions() []variants.Option {
	var options []variants.Option
	for _, input := range s.optionInputs() {
		if isCheckable(input) && !input.HasAttr("checked") {
			continue
		}
		options = append(options, variants.Option{
			Index: variants.ParseOptionIndex(input.AttrOr(attrOptionIndex, "")),
			Value: input.Value(),
		})
	}
	return options
}

func (s *Section) updateMasterSelect(variantID int64) {
	if master := s.container.First(dom.HasAttr(attrOriginalSelector)); master != nil {
		master.SetValue(strconv.FormatInt(variantID, 10))
	}
}

func (s *Section) updateAddToCartState(variant *variants.Variant) {
	if variant == nil {
		s.setDisabled(true)
		s.setAddToCartText(s.settings.Strings.Unavailable)
		s.each(attrPriceWrapper, func(el *dom.Element) { el.AddClass(hideClass) })
		return
	}

	s.each(attrPriceWrapper, func(el *dom.Element) { el.RemoveClass(hideClass) })
	if variant.Available {
		s.setDisabled(false)
		s.setAddToCartText(s.settings.Strings.AddToCart)
	} else {
		s.setDisabled(true)
		s.setAddToCartText(s.settings.Strings.SoldOut)
	}
}

func (s *Section) updateProductPrices(variant *variants.Variant) {
	if variant == nil {
		return
	}
	price := money.Format(variant.Price, s.settings.MoneyFormat)
	s.each(attrProductPrice, func(el *dom.Element) { el.SetText(price) })

	compareEls := s.container.Find(dom.Any(dom.HasAttr(attrComparePrice), dom.HasAttr(attrCompareText)))
	if variant.CompareAtPrice != nil && *variant.CompareAtPrice > variant.Price {
		compare := money.Format(*variant.CompareAtPrice, s.settings.MoneyFormat)
		s.each(attrComparePrice, func(el *dom.Element) { el.SetText(compare) })
		for _, el := range compareEls {
			el.RemoveClass(hideClass)
		}
		return
	}

	s.each(attrComparePrice, func(el *dom.Element) { el.SetText("") })
	for _, el := range compareEls {
		el.AddClass(hideClass)
	}
}

func (s *Section) updateProductImage(variant *variants.Variant) {
	if variant == nil || s.featuredImage == nil {
		return
	}
	src := variant.ImageSrc()
	if src == "" {
		return
	}
	sized, ok := media.SizedImageURL(src, s.imageSize)
	if !ok {
		logger.Debug("Variant image has no size variants, using it as is", map[string]interface{}{
			"variant_id": variant.ID,
			"src":        src,
		})
		sized = media.RemoveProtocol(src)
	}
	s.featuredImage.SetAttr("src", sized)
}

func (s *Section) setDisabled(disabled bool) {
	s.each(attrAddToCart, func(el *dom.Element) { el.SetBoolAttr("disabled", disabled) })
}

func (s *Section) setAddToCartText(text string) {
	markup := validator.SanitizeHTML(text)
	s.each(attrAddToCartText, func(el *dom.Element) {
		if err := el.SetInnerHTML(markup); err != nil {
			el.SetText(validator.SanitizeString(text))
		}
	})
}

func (s *Section) each(attr string, fn func(*dom.Element)) {
	for _, el := range s.container.Find(dom.HasAttr(attr)) {
		fn(el)
	}
}

func isCheckable(input *dom.Element) bool {
	switch strings.ToLower(input.AttrOr("type", "")) {
	case "radio", "checkbox":
		return true
	}
	return false
}
