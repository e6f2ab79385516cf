package variants

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"storefront-theme/internal/events"
)

var ErrNoProduct = errors.New("selector requires a product")

// OptionSource reports the options currently selected in the form.
type OptionSource interface {
	CurrentOptions() []Option
}

type OptionSourceFunc func() []Option

func (f OptionSourceFunc) CurrentOptions() []Option { return f() }

type SelectorConfig struct {
	Product *Product
	Options OptionSource
	Bus     *events.Bus

	// MasterSelect receives the id of every resolved variant, mirroring the
	// hidden input submitted with the add to cart form.
	MasterSelect func(variantID int64)

	// ReplaceState, when set, receives PageURL rewritten to ?variant=<id>.
	ReplaceState func(url string)
	PageURL      string
}

// Selector tracks the current variant of a product form and publishes
// variantChange, variantImageChange and variantPriceChange on its bus.
type Selector struct {
	cfg     SelectorConfig
	current *Variant
}

func NewSelector(cfg SelectorConfig) (*Selector, error) {
	if cfg.Product == nil {
		return nil, ErrNoProduct
	}
	if cfg.Options == nil {
		cfg.Options = OptionSourceFunc(func() []Option { return nil })
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewBus()
	}

	s := &Selector{cfg: cfg}
	s.current = s.resolve()
	return s, nil
}

func (s *Selector) Bus() *events.Bus { return s.cfg.Bus }

// Current is the last non-nil resolution, or the initial one.
func (s *Selector) Current() *Variant { return s.current }

func (s *Selector) resolve() *Variant {
	return Resolve(s.cfg.Options.CurrentOptions(), s.cfg.Product.Variants)
}

// Change re-resolves the variant after an option input changed. A nil result
// is published as variantChange only; the current variant is kept.
func (s *Selector) Change() *Variant {
	variant := s.resolve()

	s.cfg.Bus.Publish(events.Event{Name: events.VariantChange, Data: variant})
	if variant == nil {
		return nil
	}

	if s.cfg.MasterSelect != nil {
		s.cfg.MasterSelect(variant.ID)
	}
	s.updateImages(variant)
	s.updatePrice(variant)
	s.current = variant

	if s.cfg.ReplaceState != nil {
		if next, err := VariantURL(s.cfg.PageURL, variant.ID); err == nil {
			s.cfg.ReplaceState(next)
		}
	}
	return variant
}

func (s *Selector) updateImages(variant *Variant) {
	src := variant.ImageSrc()
	if src == "" || src == s.current.ImageSrc() {
		return
	}
	s.cfg.Bus.Publish(events.Event{Name: events.VariantImageChange, Data: variant})
}

func (s *Selector) updatePrice(variant *Variant) {
	if s.current != nil && variant.SamePrice(s.current) {
		return
	}
	s.cfg.Bus.Publish(events.Event{Name: events.VariantPriceChange, Data: variant})
}

// VariantURL keeps scheme, host and path of pageURL and sets ?variant=<id>.
func VariantURL(pageURL string, variantID int64) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	parsed.RawQuery = url.Values{"variant": []string{strconv.FormatInt(variantID, 10)}}.Encode()
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String(), nil
}

// VariantFromEvent extracts the variant carried by a selector event.
func VariantFromEvent(ev events.Event) *Variant {
	variant, _ := ev.Data.(*Variant)
	return variant
}
