package validator

import "testing"

type imageHolder struct {
	Src    string `validate:"image_src"`
	Format string `validate:"money_format"`
	Label  string `validate:"no_html"`
}

func TestValidateImageSrcRule(t *testing.T) {
	cases := []struct {
		name  string
		input imageHolder
		ok    bool
	}{
		{"protocol relative", imageHolder{Src: "//cdn.example.com/files/shirt.jpg?v=123"}, true},
		{"https", imageHolder{Src: "https://cdn.example.com/files/shirt.PNG"}, true},
		{"empty allowed", imageHolder{}, true},
		{"avif", imageHolder{Src: "//cdn.shopify.com/s/files/1/shirt.avif?v=1"}, true},
		{"extensionless", imageHolder{Src: "https://cdn.example.com/images/8812"}, true},
		{"script url", imageHolder{Src: "javascript:alert(1)"}, false},
		{"relative path without slash", imageHolder{Src: "shirt.jpg"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("expected %q to validate, got %v", tc.input.Src, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected %q to be rejected", tc.input.Src)
			}
		})
	}
}

func TestValidateMoneyFormatRule(t *testing.T) {
	if err := Validate(imageHolder{Format: "€{{ amount_with_comma_separator }}"}); err != nil {
		t.Fatalf("expected format with placeholder to validate, got %v", err)
	}
	if err := Validate(imageHolder{Format: "$ amount"}); err == nil {
		t.Fatalf("expected format without placeholder to be rejected")
	}
}

func TestNoHTMLRule(t *testing.T) {
	if err := Validate(imageHolder{Label: "<b>Sold out</b>"}); err == nil {
		t.Fatalf("expected markup to be rejected")
	}
}

func TestSanitizeStringStripsMarkup(t *testing.T) {
	got := SanitizeString(`Sold <script>alert(1)</script>out`)
	if got != "Sold out" {
		t.Fatalf("expected markup stripped, got %q", got)
	}
}

func TestSanitizeHTMLKeepsFormatting(t *testing.T) {
	got := SanitizeHTML(`<strong onclick="x()">Add</strong>`)
	if got != "<strong>Add</strong>" {
		t.Fatalf("unexpected sanitised output %q", got)
	}
}

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces("  Add \n to   cart "); got != "Add to cart" {
		t.Fatalf("unexpected normalised value %q", got)
	}
}
