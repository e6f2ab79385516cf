package variants

import (
	"errors"
	"testing"

	"storefront-theme/internal/events"
)

const productJSON = `{
  "id": 42,
  "title": "Office Suite",
  "handle": "office-suite",
  "options": ["Platform", "Edition"],
  "images": ["//cdn.example.com/files/suite.jpg?v=1", "//cdn.example.com/files/suite-mac.png"],
  "variants": [
    {"id": 1, "title": "PC / Home", "option1": "PC", "option2": "Home", "option3": null,
     "price": 1000, "compare_at_price": null, "available": true,
     "featured_image": {"id": 7, "src": "//cdn.example.com/files/suite.jpg?v=1"}},
    {"id": 2, "title": "PC / Pro", "option1": "PC", "option2": "Pro", "option3": null,
     "price": 2500, "compare_at_price": 3000, "available": false,
     "featured_image": null},
    {"id": 3, "title": "Mac / Home", "option1": "Mac", "option2": "Home", "option3": null,
     "price": 1200, "compare_at_price": null, "available": true,
     "featured_image": {"id": 8, "src": "//cdn.example.com/files/suite-mac.png"}}
  ]
}`

func TestParseProduct(t *testing.T) {
	product, err := ParseProduct([]byte(productJSON))
	if err != nil {
		t.Fatalf("parse product: %v", err)
	}
	if len(product.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(product.Variants))
	}

	pro := product.Variants[1]
	if value, ok := pro.OptionValue(2); !ok || value != "Pro" {
		t.Fatalf("expected option2 Pro, got %q/%v", value, ok)
	}
	if _, ok := pro.OptionValue(3); ok {
		t.Fatalf("expected null option3 to be absent")
	}
	if pro.CompareAtPrice == nil || *pro.CompareAtPrice != 3000 {
		t.Fatalf("expected compare at price 3000, got %v", pro.CompareAtPrice)
	}
	if pro.FeaturedImage != nil {
		t.Fatalf("expected null featured image")
	}
	if product.Variants[0].ImageSrc() != "//cdn.example.com/files/suite.jpg?v=1" {
		t.Fatalf("unexpected image src %q", product.Variants[0].ImageSrc())
	}
}

func TestParseProductOptionsArrayFallback(t *testing.T) {
	product, err := ParseProduct([]byte(`{"variants":[{"id":9,"price":500,"options":["Red","L"]}]}`))
	if err != nil {
		t.Fatalf("parse product: %v", err)
	}
	if value, ok := product.Variants[0].OptionValue(2); !ok || value != "L" {
		t.Fatalf("expected options array to be used, got %q/%v", value, ok)
	}
}

func TestParseProductErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"empty", "  ", ErrMalformedCatalog},
		{"broken json", `{"variants": [`, ErrMalformedCatalog},
		{"no variants", `{"variants": []}`, ErrInvalidCatalog},
		{"missing id", `{"variants": [{"price": 10}]}`, ErrInvalidCatalog},
		{"negative price", `{"variants": [{"id": 1, "price": -10}]}`, ErrInvalidCatalog},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProduct([]byte(tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseProductKeepsModernImageFormats(t *testing.T) {
	body := `{
  "images": ["//cdn.shopify.com/s/files/1/shirt.avif?v=1", "https://cdn.example.com/images/8812"],
  "variants": [
    {"id": 1, "price": 10, "featured_image": {"src": "//cdn.shopify.com/s/files/1/shirt.avif?v=1"}},
    {"id": 2, "price": 10, "featured_image": {"src": "/files/logo.svg"}}
  ]
}`
	product, err := ParseProduct([]byte(body))
	if err != nil {
		t.Fatalf("parse product: %v", err)
	}
	if got := product.Variants[0].ImageSrc(); got != "//cdn.shopify.com/s/files/1/shirt.avif?v=1" {
		t.Fatalf("unexpected avif src %q", got)
	}
	if got := product.Variants[1].ImageSrc(); got != "/files/logo.svg" {
		t.Fatalf("unexpected svg src %q", got)
	}
	if len(product.Images) != 2 {
		t.Fatalf("expected both images kept, got %v", product.Images)
	}
}

func TestParseProductDropsScriptImages(t *testing.T) {
	body := `{
  "images": ["javascript:alert(1)", "//cdn.example.com/a.jpg"],
  "variants": [{"id": 1, "price": 10, "featured_image": {"src": "javascript:alert(1)"}}]
}`
	product, err := ParseProduct([]byte(body))
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}
	if product.Variants[0].FeaturedImage != nil {
		t.Fatalf("expected script image dropped, got %+v", product.Variants[0].FeaturedImage)
	}
	if len(product.Images) != 1 || product.Images[0] != "//cdn.example.com/a.jpg" {
		t.Fatalf("unexpected images %v", product.Images)
	}
}

func TestResolve(t *testing.T) {
	redBlue := []Variant{NewVariant(1, 1000, "Red"), NewVariant(2, 1200, "Blue")}

	if got := Resolve([]Option{{Index: 1, Value: "Green"}}, redBlue); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}

	got := Resolve([]Option{{Index: 1, Value: "Blue"}}, redBlue)
	if got == nil || got.ID != 2 || got.Price != 1200 {
		t.Fatalf("expected Blue variant, got %+v", got)
	}

	if got := Resolve(nil, redBlue); got == nil || got.ID != 2 {
		t.Fatalf("expected empty selection to resolve to the last variant, got %+v", got)
	}

	if got := Resolve(nil, nil); got != nil {
		t.Fatalf("expected nil for empty catalog")
	}
}

func TestResolveLastMatchWins(t *testing.T) {
	catalog := []Variant{
		NewVariant(1, 100, "PC", "Home"),
		NewVariant(2, 200, "PC", "Pro"),
		NewVariant(3, 300, "Mac", "Home"),
	}
	got := Resolve([]Option{{Index: 1, Value: "PC"}}, catalog)
	if got == nil || got.ID != 2 {
		t.Fatalf("expected the last PC variant, got %+v", got)
	}
}

func TestResolveOutOfRangeIndexNeverMatches(t *testing.T) {
	catalog := []Variant{NewVariant(1, 100, "PC")}
	for _, index := range []int{0, 2, 4, -1} {
		if got := Resolve([]Option{{Index: index, Value: "PC"}}, catalog); got != nil {
			t.Fatalf("index %d: expected no match, got %+v", index, got)
		}
	}
}

func TestParseOptionIndex(t *testing.T) {
	cases := map[string]int{"1": 1, "option2": 2, " Option3 ": 3, "option4": 0, "size": 0, "": 0}
	for input, want := range cases {
		if got := ParseOptionIndex(input); got != want {
			t.Fatalf("ParseOptionIndex(%q) = %d, want %d", input, got, want)
		}
	}
}

type recorder struct {
	names    []string
	variants []*Variant
}

func (r *recorder) attach(t *testing.T, bus *events.Bus) {
	t.Helper()
	for _, name := range []string{events.VariantChange, events.VariantImageChange, events.VariantPriceChange} {
		if _, err := bus.Subscribe(name, func(ev events.Event) {
			r.names = append(r.names, ev.Name)
			r.variants = append(r.variants, VariantFromEvent(ev))
		}); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}
}

func (r *recorder) count(name string) int {
	n := 0
	for _, got := range r.names {
		if got == name {
			n++
		}
	}
	return n
}

func newTestSelector(t *testing.T, selected *[]Option) (*Selector, *recorder, *[]int64) {
	t.Helper()
	product, err := ParseProduct([]byte(productJSON))
	if err != nil {
		t.Fatalf("parse product: %v", err)
	}
	var master []int64
	sel, err := NewSelector(SelectorConfig{
		Product:      product,
		Options:      OptionSourceFunc(func() []Option { return *selected }),
		MasterSelect: func(id int64) { master = append(master, id) },
	})
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	rec := &recorder{}
	rec.attach(t, sel.Bus())
	return sel, rec, &master
}

func TestSelectorInitialVariant(t *testing.T) {
	selected := []Option{{Index: 1, Value: "PC"}, {Index: 2, Value: "Home"}}
	sel, rec, _ := newTestSelector(t, &selected)

	if sel.Current() == nil || sel.Current().ID != 1 {
		t.Fatalf("expected initial variant 1, got %+v", sel.Current())
	}
	if len(rec.names) != 0 {
		t.Fatalf("expected no events during construction, got %v", rec.names)
	}
}

func TestSelectorPriceChangeFiresOnlyOnDifference(t *testing.T) {
	selected := []Option{{Index: 1, Value: "PC"}, {Index: 2, Value: "Home"}}
	sel, rec, master := newTestSelector(t, &selected)

	selected = []Option{{Index: 1, Value: "Mac"}, {Index: 2, Value: "Home"}}
	sel.Change()
	sel.Change()

	if rec.count(events.VariantChange) != 2 {
		t.Fatalf("expected variantChange on every change, got %v", rec.names)
	}
	if rec.count(events.VariantPriceChange) != 1 {
		t.Fatalf("expected a single variantPriceChange, got %v", rec.names)
	}
	if rec.count(events.VariantImageChange) != 1 {
		t.Fatalf("expected a single variantImageChange, got %v", rec.names)
	}
	if sel.Current().ID != 3 {
		t.Fatalf("expected current variant 3, got %d", sel.Current().ID)
	}
	if len(*master) != 2 || (*master)[0] != 3 {
		t.Fatalf("expected master select updated, got %v", *master)
	}
}

func TestSelectorSameVariantAsInitialFiresNoPriceChange(t *testing.T) {
	selected := []Option{{Index: 1, Value: "PC"}, {Index: 2, Value: "Home"}}
	sel, rec, _ := newTestSelector(t, &selected)

	sel.Change()
	if rec.count(events.VariantPriceChange) != 0 || rec.count(events.VariantImageChange) != 0 {
		t.Fatalf("expected no price or image change, got %v", rec.names)
	}
}

func TestSelectorComparePriceDifferenceFires(t *testing.T) {
	selected := []Option{{Index: 1, Value: "PC"}, {Index: 2, Value: "Home"}}
	sel, rec, _ := newTestSelector(t, &selected)

	selected = []Option{{Index: 2, Value: "Pro"}}
	sel.Change()

	if rec.count(events.VariantPriceChange) != 1 {
		t.Fatalf("expected variantPriceChange, got %v", rec.names)
	}
	if rec.count(events.VariantImageChange) != 0 {
		t.Fatalf("expected no image change for a variant without image, got %v", rec.names)
	}
}

func TestSelectorNoMatchKeepsCurrent(t *testing.T) {
	selected := []Option{{Index: 1, Value: "PC"}, {Index: 2, Value: "Home"}}
	sel, rec, master := newTestSelector(t, &selected)

	selected = []Option{{Index: 1, Value: "Linux"}}
	if got := sel.Change(); got != nil {
		t.Fatalf("expected no variant, got %+v", got)
	}

	if len(rec.names) != 1 || rec.names[0] != events.VariantChange || rec.variants[0] != nil {
		t.Fatalf("expected a single variantChange carrying nil, got %v", rec.names)
	}
	if sel.Current() == nil || sel.Current().ID != 1 {
		t.Fatalf("expected current variant kept")
	}
	if len(*master) != 0 {
		t.Fatalf("expected master select untouched")
	}
}

func TestSelectorHistoryState(t *testing.T) {
	product, _ := ParseProduct([]byte(productJSON))
	var replaced []string
	selected := []Option{{Index: 1, Value: "Mac"}}
	sel, err := NewSelector(SelectorConfig{
		Product:      product,
		Options:      OptionSourceFunc(func() []Option { return selected }),
		PageURL:      "https://shop.example.com/products/office-suite?variant=1#reviews",
		ReplaceState: func(u string) { replaced = append(replaced, u) },
	})
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	sel.Change()
	if len(replaced) != 1 || replaced[0] != "https://shop.example.com/products/office-suite?variant=3" {
		t.Fatalf("unexpected history state %v", replaced)
	}
}

func TestNewSelectorRequiresProduct(t *testing.T) {
	if _, err := NewSelector(SelectorConfig{}); !errors.Is(err, ErrNoProduct) {
		t.Fatalf("expected ErrNoProduct, got %v", err)
	}
}
