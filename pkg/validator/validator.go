package validator

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	initOnce  sync.Once
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	strict    *bluemonday.Policy

	moneyPlaceholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// Init prepares the shared validator and sanitising policies. It is safe to
// call more than once; helpers call it lazily when the host did not.
func Init() {
	initOnce.Do(func() {
		validate = validator.New()
		sanitizer = bluemonday.UGCPolicy()
		strict = bluemonday.StrictPolicy()

		registerCustomValidations(validate)
	})
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("image_src", validateImageSrc)
	v.RegisterValidation("money_format", validateMoneyFormat)
	v.RegisterValidation("no_html", validateNoHTML)
}

func Validate(s interface{}) error {
	Init()
	return validate.Struct(s)
}

// SanitizeHTML keeps user-generated markup such as <strong> while dropping
// scripts and event handlers.
func SanitizeHTML(html string) string {
	Init()
	return sanitizer.Sanitize(html)
}

func SanitizeString(s string) string {
	Init()
	return strict.Sanitize(s)
}

func NormalizeSpaces(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ValidateMoneyFormat reports whether the format carries a {{ placeholder }}.
func ValidateMoneyFormat(format string) bool {
	return moneyPlaceholder.MatchString(format)
}

// validateImageSrc accepts protocol-relative, http(s) and root-relative
// URLs. The extension is not checked: CDNs serve avif, svg and
// extensionless assets that are still valid image sources.
func validateImageSrc(fl validator.FieldLevel) bool {
	src := strings.TrimSpace(fl.Field().String())
	if src == "" {
		return true
	}
	return strings.HasPrefix(src, "//") || strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "/")
}

func validateMoneyFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return ValidateMoneyFormat(value)
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}
