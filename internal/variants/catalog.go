package variants

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"storefront-theme/pkg/logger"
	"storefront-theme/pkg/validator"
)

// MaxOptions is the number of positional option values a variant carries.
const MaxOptions = 3

var (
	ErrMalformedCatalog = errors.New("malformed product catalog")
	ErrInvalidCatalog   = errors.New("invalid product catalog")
)

type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Variant is one purchasable configuration of a product. Values are
// snapshots from the embedded catalog and are never mutated.
type Variant struct {
	ID             int64    `json:"id" validate:"required"`
	Title          string   `json:"title"`
	SKU            string   `json:"sku,omitempty"`
	Price          int64    `json:"price" validate:"gte=0"`
	CompareAtPrice *int64   `json:"compare_at_price" validate:"omitempty,gte=0"`
	Available      bool     `json:"available"`
	FeaturedImage  *Image   `json:"featured_image"`
	Options        []string `json:"options" validate:"max=3"`

	// present records which positional values the catalog supplied, so that
	// a missing option2 never matches an empty selection value.
	present [MaxOptions]bool
}

type variantJSON struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	SKU            string   `json:"sku"`
	Price          int64    `json:"price"`
	CompareAtPrice *int64   `json:"compare_at_price"`
	Available      bool     `json:"available"`
	FeaturedImage  *Image   `json:"featured_image"`
	Option1        *string  `json:"option1"`
	Option2        *string  `json:"option2"`
	Option3        *string  `json:"option3"`
	Options        []string `json:"options"`
}

// UnmarshalJSON reads option1..option3, falling back to the options array
// when the positional keys are absent.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw variantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*v = Variant{
		ID:             raw.ID,
		Title:          raw.Title,
		SKU:            raw.SKU,
		Price:          raw.Price,
		CompareAtPrice: raw.CompareAtPrice,
		Available:      raw.Available,
		FeaturedImage:  raw.FeaturedImage,
	}

	positional := []*string{raw.Option1, raw.Option2, raw.Option3}
	last := -1
	for i, value := range positional {
		if value != nil {
			last = i
		}
	}
	if last >= 0 {
		v.Options = make([]string, last+1)
		for i := 0; i <= last; i++ {
			if positional[i] != nil {
				v.Options[i] = *positional[i]
				v.present[i] = true
			}
		}
		return nil
	}

	if len(raw.Options) > 0 {
		v.Options = append([]string(nil), raw.Options...)
		for i := range v.Options {
			if i < MaxOptions {
				v.present[i] = true
			}
		}
	}
	return nil
}

// NewVariant builds a variant from positional option values, for callers
// assembling catalogs in code.
func NewVariant(id, price int64, options ...string) Variant {
	v := Variant{ID: id, Price: price, Available: true, Options: append([]string(nil), options...)}
	for i := range v.Options {
		if i < MaxOptions {
			v.present[i] = true
		}
	}
	return v
}

// OptionValue returns the value at the 1-based positional index.
func (v *Variant) OptionValue(index int) (string, bool) {
	if v == nil || index < 1 || index > MaxOptions || index > len(v.Options) {
		return "", false
	}
	if !v.present[index-1] {
		return "", false
	}
	return v.Options[index-1], true
}

// ImageSrc returns the featured image source or an empty string.
func (v *Variant) ImageSrc() string {
	if v == nil || v.FeaturedImage == nil {
		return ""
	}
	return v.FeaturedImage.Src
}

// SamePrice reports whether both price and compare-at price match.
func (v *Variant) SamePrice(other *Variant) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Price != other.Price {
		return false
	}
	switch {
	case v.CompareAtPrice == nil && other.CompareAtPrice == nil:
		return true
	case v.CompareAtPrice == nil || other.CompareAtPrice == nil:
		return false
	default:
		return *v.CompareAtPrice == *other.CompareAtPrice
	}
}

// Product is the catalog embedded in a product section.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Options  []string  `json:"options"`
	Variants []Variant `json:"variants" validate:"required,min=1,dive"`
	Images   []string  `json:"images"`
}

type imageRef struct {
	Src string `validate:"image_src"`
}

func safeImageSrc(src string) bool {
	return validator.Validate(imageRef{Src: src}) == nil
}

// dropUnsafeImages clears image sources that are not http(s), protocol or
// root relative URLs. A bad image never invalidates the catalog.
func (p *Product) dropUnsafeImages() {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.FeaturedImage == nil {
			continue
		}
		if v.FeaturedImage.Src == "" || !safeImageSrc(v.FeaturedImage.Src) {
			logger.Warn("Dropping variant image", map[string]interface{}{
				"variant_id": v.ID,
				"src":        v.FeaturedImage.Src,
			})
			v.FeaturedImage = nil
		}
	}

	kept := p.Images[:0]
	for _, src := range p.Images {
		if !safeImageSrc(src) {
			logger.Warn("Dropping product image", map[string]interface{}{"src": src})
			continue
		}
		kept = append(kept, src)
	}
	p.Images = kept
}

// ParseProduct decodes and validates an embedded product catalog.
func ParseProduct(data []byte) (*Product, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedCatalog)
	}

	var product Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if err := validator.Validate(product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	product.dropUnsafeImages()
	return &product, nil
}

// Option is one selected value on one axis of variation.
type Option struct {
	Index int
	Value string
}

// ParseOptionIndex accepts "2" or "option2". Anything else yields 0, which
// never matches a variant.
func ParseOptionIndex(value string) int {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	trimmed = strings.TrimPrefix(trimmed, "option")
	index, err := strconv.Atoi(trimmed)
	if err != nil || index < 1 || index > MaxOptions {
		return 0
	}
	return index
}
