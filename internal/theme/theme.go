package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"storefront-theme/internal/config"
	"storefront-theme/pkg/lang"
	"storefront-theme/pkg/validator"
)

var (
	ErrThemeDirRequired = errors.New("theme directory is required")
	ErrInvalidMoneyFmt  = errors.New("theme money format has no amount placeholder")
	ErrTemplateNotFound = errors.New("theme template not found")
)

type Metadata struct {
	Name        string `json:"name" validate:"no_html"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Author      string `json:"author"`
}

// Strings are the storefront messages written into product forms.
type Strings struct {
	AddToCart   string `json:"add_to_cart"`
	SoldOut     string `json:"sold_out"`
	Unavailable string `json:"unavailable"`
}

type Settings struct {
	EnableHistoryState *bool  `json:"enable_history_state"`
	TagsortMode        string `json:"tagsort_mode"`
}

type Theme struct {
	Slug         string
	Path         string
	TemplatesDir string

	Metadata    Metadata
	Locale      string
	MoneyFormat string
	Strings     Strings
	Settings    Settings
}

type themeFile struct {
	Metadata
	Locale      string   `json:"locale"`
	MoneyFormat string   `json:"money_format" validate:"omitempty,money_format"`
	Strings     Strings  `json:"strings"`
	Settings    Settings `json:"settings"`
}

// Default builds a theme from configuration alone, for hosts that run
// without a theme directory.
func Default(cfg *config.Config) *Theme {
	t := &Theme{Slug: "default", Metadata: Metadata{Name: "Default"}}
	t.applyDefaults(cfg)
	return t
}

// Load reads dir/theme.json. A missing file yields a theme built from cfg
// defaults; values present in the file win over cfg.
func Load(dir string, cfg *config.Config) (*Theme, error) {
	cleaned := strings.TrimSpace(dir)
	if cleaned == "" {
		return nil, ErrThemeDirRequired
	}
	cleaned = filepath.Clean(cleaned)

	info, err := os.Stat(cleaned)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("theme path must be a directory: %s", cleaned)
	}

	file, err := readThemeFile(cleaned)
	if err != nil {
		return nil, err
	}

	slug := strings.ToLower(filepath.Base(cleaned))
	t := &Theme{
		Slug:         slug,
		Path:         cleaned,
		TemplatesDir: filepath.Join(cleaned, "templates"),
		Metadata:     file.Metadata,
		MoneyFormat:  file.MoneyFormat,
		Strings: Strings{
			AddToCart:   validator.NormalizeSpaces(file.Strings.AddToCart),
			SoldOut:     validator.NormalizeSpaces(file.Strings.SoldOut),
			Unavailable: validator.NormalizeSpaces(file.Strings.Unavailable),
		},
		Settings: file.Settings,
	}
	if t.Metadata.Name == "" {
		t.Metadata.Name = humanizeSlug(slug)
	}
	if strings.TrimSpace(file.Locale) != "" {
		locale, err := lang.Normalize(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("theme locale: %w", err)
		}
		t.Locale = locale
	}
	t.applyDefaults(cfg)
	return t, nil
}

func readThemeFile(dir string) (themeFile, error) {
	data, err := os.ReadFile(filepath.Join(dir, "theme.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return themeFile{}, nil
		}
		return themeFile{}, err
	}

	var file themeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return themeFile{}, fmt.Errorf("parse theme.json: %w", err)
	}
	file.MoneyFormat = strings.TrimSpace(file.MoneyFormat)
	if err := validator.Validate(file); err != nil {
		var fieldErrs govalidator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Tag() == "money_format" {
					return themeFile{}, fmt.Errorf("%w: %q", ErrInvalidMoneyFmt, file.MoneyFormat)
				}
			}
		}
		return themeFile{}, fmt.Errorf("invalid theme.json: %w", err)
	}
	return file, nil
}

func (t *Theme) applyDefaults(cfg *config.Config) {
	if cfg == nil {
		cfg = &config.Config{
			MoneyFormat:       config.DefaultMoneyFormat,
			StringAddToCart:   "Add to cart",
			StringSoldOut:     "Sold out",
			StringUnavailable: "Unavailable",
		}
	}
	if t.Locale == "" {
		t.Locale = lang.Default
	}
	if t.MoneyFormat == "" {
		t.MoneyFormat = cfg.MoneyFormat
	}
	if t.Strings.AddToCart == "" {
		t.Strings.AddToCart = cfg.StringAddToCart
	}
	if t.Strings.SoldOut == "" {
		t.Strings.SoldOut = cfg.StringSoldOut
	}
	if t.Strings.Unavailable == "" {
		t.Strings.Unavailable = cfg.StringUnavailable
	}
	if t.Settings.EnableHistoryState == nil {
		enabled := cfg.EnableHistoryState
		t.Settings.EnableHistoryState = &enabled
	}
}

func (t *Theme) HistoryStateEnabled() bool {
	return t.Settings.EnableHistoryState != nil && *t.Settings.EnableHistoryState
}

// TemplateNames lists the .html pages under templates/.
func (t *Theme) TemplateNames() ([]string, error) {
	if t.TemplatesDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(t.TemplatesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}

// TemplatePath resolves a page name such as "product" or "product.html"
// inside templates/.
func (t *Theme) TemplatePath(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" || t.TemplatesDir == "" || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	if !strings.HasSuffix(cleaned, ".html") {
		cleaned += ".html"
	}
	full := filepath.Join(t.TemplatesDir, cleaned)
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return full, nil
}

func humanizeSlug(value string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "Theme"
	}

	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		switch r {
		case '-', '_', ' ':
			return true
		default:
			return false
		}
	})

	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}

	return strings.Join(parts, " ")
}
