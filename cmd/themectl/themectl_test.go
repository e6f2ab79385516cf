package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront-theme/internal/config"
	"storefront-theme/pkg/logger"
)

const productPage = `<html class="supports-no-cookies"><body>
<div data-section-id="main" data-section-type="product" data-enable-history-state="true">
  <select data-single-option-selector data-index="option1">
    <option value="Red" selected>Red</option>
    <option value="Blue">Blue</option>
  </select>
  <span data-product-price>$10.00</span>
  <script type="application/json" data-product-json>
  {"variants": [
    {"id": 1, "title": "Red", "option1": "Red", "price": 1000, "available": true},
    {"id": 2, "title": "Blue", "option1": "Blue", "price": 123456, "available": false}
  ]}
  </script>
</div>
</body></html>`

const productJSON = `{"variants": [
  {"id": 1, "title": "Red", "option1": "Red", "price": 1000, "available": true},
  {"id": 2, "title": "Blue", "option1": "Blue", "price": 123456, "available": false}
]}`

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:          "info",
		MoneyFormat:       "${{amount}}",
		StringAddToCart:   "Add to cart",
		StringSoldOut:     "Sold out",
		StringUnavailable: "Unavailable",
		SignalQueueSize:   8,
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger.SetOutput(nil)

	cmd := newRootCmd(testConfig())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMoneyCommand(t *testing.T) {
	out, err := execute(t, "money", "123456")
	if err != nil {
		t.Fatalf("money: %v", err)
	}
	if strings.TrimSpace(out) != "$1,234.56" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = execute(t, "money", "3.00", "--format", "{{amount_with_comma_separator}} €")
	if err != nil || strings.TrimSpace(out) != "3,00 €" {
		t.Fatalf("unexpected output %q (%v)", out, err)
	}

	if _, err := execute(t, "money", "ten"); err == nil {
		t.Fatalf("expected non numeric amount to fail")
	}
}

func TestResolveCommand(t *testing.T) {
	path := writeTemp(t, "product.json", productJSON)

	out, err := execute(t, "resolve", path, "-o", "1=Blue")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "2\tBlue\t$1,234.56\tsold out") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = execute(t, "resolve", path, "-o", "option1=Green")
	if err != nil || !strings.Contains(out, "no variant matches") {
		t.Fatalf("unexpected output %q (%v)", out, err)
	}

	if _, err := execute(t, "resolve", path, "-o", "size=Blue"); err == nil {
		t.Fatalf("expected invalid option index to fail")
	}
}

func TestReplayCommand(t *testing.T) {
	page := writeTemp(t, "product.html", productPage)
	script := writeTemp(t, "session.yaml", `
name: pick blue
steps:
  - signal: option
    section: main
    index: 1
    value: Blue
`)

	out, err := execute(t, "replay", page, script, "--url", "https://shop.example.com/products/tee")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, "$1,234.56") {
		t.Fatalf("expected price updated in rendered page, got %s", out)
	}
	if !strings.Contains(out, `class="supports-cookies"`) {
		t.Fatalf("expected cookie support flag in rendered page")
	}
}

func TestResolveCommandUsesThemeMoneyFormat(t *testing.T) {
	path := writeTemp(t, "product.json", productJSON)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "theme.json"), []byte(`{"money_format": "{{amount_with_comma_separator}} €"}`), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}

	out, err := execute(t, "resolve", path, "-o", "1=Blue", "--theme", dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "1.234,56 €") {
		t.Fatalf("expected theme money format, got %q", out)
	}
}

const storefrontPage = `<html><body class="template-cart">
<main id="MainContent">
<div><button class="minus">-</button><input id="line1" value="2"><button class="plus">+</button></div>
<ul data-tagsort></ul>
<div id="tee" data-item-tags="Cotton"></div>
<div id="scarf" data-item-tags="Wool"></div>
<ul class="sort-by__options" data-value="manual">
  <li class="sort-by__option active" data-value="manual">Featured</li>
  <li class="sort-by__option" data-value="price-ascending">Price</li>
</ul>
</main>
</body></html>`

func TestReplayScriptNamesItsPage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "storefront.html"), []byte(storefrontPage), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	script := filepath.Join(dir, "session.yaml")
	if err := os.WriteFile(script, []byte(`
name: browse
page: storefront.html
steps:
  - signal: tag
    value: wool
  - signal: tag_reset
  - signal: tag
    value: cotton
  - signal: cart_step
    line: 1
    delta: 3
  - signal: page_link
    value: "#MainContent"
  - signal: toggle
    value: sort_by
    arg: price-ascending
`), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out, err := execute(t, "replay", script)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, `id="line1" value="5"`) {
		t.Fatalf("expected cart line stepped to 5, got %s", out)
	}
	if !strings.Contains(out, `id="scarf" data-item-tags="Wool" class="hide"`) {
		t.Fatalf("expected only cotton items visible, got %s", out)
	}
	if !strings.Contains(out, `class="sort-by__option active" data-value="price-ascending"`) {
		t.Fatalf("expected price sort marked active, got %s", out)
	}
	if !strings.Contains(out, `id="MainContent" tabindex="-1"`) {
		t.Fatalf("expected in-page link target focusable, got %s", out)
	}

	if _, err := execute(t, "replay", writeTemp(t, "nopage.yaml", "steps:\n  - signal: tag_reset\n")); err == nil {
		t.Fatalf("expected a script without a page to fail")
	}
}

func TestReplayCommandMetrics(t *testing.T) {
	page := writeTemp(t, "product.html", productPage)

	out, err := execute(t, "replay", page, "--quiet", "--metrics")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if strings.Contains(out, "<html") {
		t.Fatalf("expected quiet replay to skip the page")
	}
	if !strings.Contains(out, "storefront_theme_sections_signals_total") {
		t.Fatalf("expected section metrics in output, got %s", out)
	}
}

func TestReplayCommandUnknownPage(t *testing.T) {
	if _, err := execute(t, "replay", "no-such-page"); err == nil {
		t.Fatalf("expected unknown page to fail")
	}
}
