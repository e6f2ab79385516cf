package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"storefront-theme/internal/background"
	"storefront-theme/internal/cart"
	"storefront-theme/internal/config"
	"storefront-theme/internal/dom"
	"storefront-theme/internal/events"
	"storefront-theme/internal/page"
	"storefront-theme/internal/product"
	"storefront-theme/internal/rte"
	"storefront-theme/internal/sections"
	"storefront-theme/internal/tagsort"
	"storefront-theme/internal/theme"
	"storefront-theme/internal/variants"
	"storefront-theme/pkg/a11y"
	"storefront-theme/pkg/lang"
	"storefront-theme/pkg/logger"
)

// AttrTagsort marks the element that receives the tag filter. Its value may
// name the filter mode.
const AttrTagsort = "data-tagsort"

var (
	ErrSectionNotFound   = errors.New("section not found")
	ErrNotProductSection = errors.New("section is not a product section")
	ErrOptionRejected    = errors.New("no option input accepted the value")
	ErrNoQuantityInput   = errors.New("section has no quantity input")
	ErrNoTagFilter       = errors.New("page has no tag filter")
	ErrUnknownTag        = errors.New("tag filter has no such tag")
	ErrNoCartLine        = errors.New("cart has no such line")
	ErrNoLinkTarget      = errors.New("in-page link target not found")
	ErrNoDescription     = errors.New("section has no collapsible description")
)

type Options struct {
	// Theme defaults to one built from the config when nil.
	Theme *theme.Theme

	// PageURL is the address the document was served from. Its fragment
	// drives the initial focus and its path the history updates.
	PageURL        string
	CookiesEnabled bool
}

// Application hosts one parsed page: the section registry bound to its
// document, the boot steps that run once the page is ready and the loop
// that serialises every signal reaching the page.
type Application struct {
	cfg     *config.Config
	options Options
	theme   *theme.Theme

	doc      *dom.Document
	registry *sections.Registry
	loop     *background.Loop

	mu      sync.Mutex
	history []string
	events  []EventRecord
	tags    *tagsort.Board
	booted  bool

	// blur undoes the focus set by the last in-page link.
	blur func()
}

func New(cfg *config.Config, doc *dom.Document, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if doc == nil || doc.Root() == nil {
		return nil, dom.ErrNoDocument
	}

	if opts.Theme == nil {
		opts.Theme = theme.Default(cfg)
	}

	app := &Application{
		cfg:     cfg,
		options: opts,
		theme:   opts.Theme,
		doc:     doc,
		loop:    background.NewLoop(background.LoopConfig{QueueSize: cfg.SignalQueueSize}),
	}
	app.registry = sections.NewRegistry(sections.WithScanner(app.scan))

	return app, nil
}

// Boot starts the signal loop and runs the page-ready steps on it: section
// types are registered (which loads the sections already on the page), rich
// text is wrapped, cookie support is flagged, the fragment target is focused,
// the login and collection templates are prepared and the tag filter is
// bound.
func (a *Application) Boot(ctx context.Context) error {
	a.mu.Lock()
	if a.booted {
		a.mu.Unlock()
		return nil
	}
	a.booted = true
	a.mu.Unlock()

	a.loop.Start(ctx)
	return a.loop.Do(ctx, background.Job{Name: "boot", Run: func(context.Context) error {
		return a.boot()
	}})
}

// EventRecord is one variant event published by a product section.
type EventRecord struct {
	SectionID string
	Name      string
	// VariantID is zero when no variant matched.
	VariantID int64
}

func (a *Application) boot() error {
	if err := a.registry.Register(product.SectionType, a.productFactory()); err != nil {
		return fmt.Errorf("register product section: %w", err)
	}

	if a.cfg.EnableRTE {
		tables := rte.WrapTables(a.doc, rte.TableWrapperClass)
		iframes := rte.WrapIframes(a.doc, rte.IframeWrapperClass)
		logger.Debug("Wrapped rich text content", map[string]interface{}{"tables": tables, "iframes": iframes})
	}

	cart.MarkCookieSupport(a.doc, a.options.CookiesEnabled)

	fragment := a.fragment()
	if fragment != "" {
		a.focus(func() func() { return a11y.FocusHash(a.doc, fragment) })
	}
	if page.BootLogin(a.doc, fragment) {
		logger.Debug("Customer login page prepared", map[string]interface{}{"fragment": fragment})
	}
	if page.BootCollection(a.doc, a.options.PageURL) {
		logger.Debug("Collection sort marked", map[string]interface{}{
			"sort_by": page.SortBy(a.doc, a.options.PageURL),
		})
	}

	if container := a.doc.First(dom.HasAttr(AttrTagsort)); container != nil {
		modeName := container.AttrOr(AttrTagsort, "")
		if modeName == "" {
			modeName = a.theme.Settings.TagsortMode
		}
		mode, err := tagsort.ParseMode(modeName)
		if err != nil {
			return err
		}
		board, err := tagsort.Bind(a.doc, container, mode, tagsort.WithLanguage(lang.Tag(a.theme.Locale)))
		if err != nil {
			return fmt.Errorf("bind tag filter: %w", err)
		}
		a.mu.Lock()
		a.tags = board
		a.mu.Unlock()
	}

	logger.Info("Page booted", map[string]interface{}{
		"theme":    a.theme.Slug,
		"sections": a.registry.Len(),
	})
	return nil
}

// productFactory builds product sections and records the variant events
// they publish.
func (a *Application) productFactory() sections.Factory {
	build := product.NewFactory(a.productSettings())
	return func(anchor sections.Anchor) (sections.Section, error) {
		section, err := build(anchor)
		if err != nil {
			return nil, err
		}
		id, _ := anchor.Attr(sections.AttrSectionID)
		if ps, ok := section.(*product.Section); ok {
			if err := ps.Observe(a.recordEvent(id)); err != nil {
				return nil, err
			}
		}
		return section, nil
	}
}

func (a *Application) recordEvent(sectionID string) events.Handler {
	return func(ev events.Event) {
		record := EventRecord{SectionID: sectionID, Name: ev.Name}
		if variant := variants.VariantFromEvent(ev); variant != nil {
			record.VariantID = variant.ID
		}
		a.mu.Lock()
		a.events = append(a.events, record)
		a.mu.Unlock()
	}
}

func (a *Application) productSettings() product.Settings {
	settings := product.Settings{
		MoneyFormat: a.theme.MoneyFormat,
		Strings: product.Strings{
			AddToCart:   a.theme.Strings.AddToCart,
			SoldOut:     a.theme.Strings.SoldOut,
			Unavailable: a.theme.Strings.Unavailable,
		},
	}
	if a.theme.HistoryStateEnabled() && a.options.PageURL != "" {
		settings.PageURL = a.options.PageURL
		settings.ReplaceState = a.replaceState
	}
	return settings
}

func (a *Application) replaceState(u string) {
	a.mu.Lock()
	a.history = append(a.history, u)
	a.mu.Unlock()
}

func (a *Application) fragment() string {
	if a.options.PageURL == "" {
		return ""
	}
	parsed, err := url.Parse(a.options.PageURL)
	if err != nil {
		return ""
	}
	return parsed.Fragment
}

// scan lists the section anchors on the page declaring sectionType.
func (a *Application) scan(sectionType string) []sections.Anchor {
	var anchors []sections.Anchor
	for _, el := range a.doc.Find(dom.HasAttr(sections.AttrSectionType)) {
		if strings.EqualFold(strings.TrimSpace(el.AttrOr(sections.AttrSectionType, "")), sectionType) {
			anchors = append(anchors, el)
		}
	}
	return anchors
}

// Signal delivers a host signal on the loop. A load without an anchor uses
// the element carrying the section id.
func (a *Application) Signal(ctx context.Context, sig sections.Signal) error {
	return a.loop.Do(ctx, background.Job{Name: string(sig.Kind), Run: func(context.Context) error {
		if sig.Kind == sections.SignalLoad && sig.Anchor == nil {
			el := a.doc.First(dom.AttrEquals(sections.AttrSectionID, sig.SectionID))
			if el == nil {
				return fmt.Errorf("%w: %q", ErrSectionNotFound, sig.SectionID)
			}
			sig.Anchor = el
		}
		if sig.Kind == sections.SignalLoad {
			if sectionType, _ := sig.Anchor.Attr(sections.AttrSectionType); !a.registry.HasType(sectionType) {
				logger.Warn("Loaded section has no registered type", map[string]interface{}{
					"section_id":   sig.SectionID,
					"section_type": sectionType,
				})
			}
		}
		return a.registry.Dispatch(sig)
	}})
}

// SetOption changes an option input of a product section, as a shopper
// picking a value does.
func (a *Application) SetOption(ctx context.Context, sectionID string, index int, value string) error {
	return a.withProduct(ctx, "option", sectionID, func(section *product.Section) error {
		if !section.SetOption(index, value) {
			return fmt.Errorf("%w: option%d=%q", ErrOptionRejected, index, value)
		}
		return nil
	})
}

// StepQuantity presses the quantity plus button delta times, or the minus
// button for a negative delta.
func (a *Application) StepQuantity(ctx context.Context, sectionID string, delta int) error {
	return a.withProduct(ctx, "quantity", sectionID, func(section *product.Section) error {
		step := section.Increment
		if delta < 0 {
			step = section.Decrement
			delta = -delta
		}
		for i := 0; i < delta; i++ {
			if _, ok := step(); !ok {
				return ErrNoQuantityInput
			}
		}
		return nil
	})
}

func (a *Application) withProduct(ctx context.Context, name, sectionID string, fn func(*product.Section) error) error {
	return a.loop.Do(ctx, background.Job{Name: name, Run: func(context.Context) error {
		instance, ok := a.registry.Instance(sectionID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
		}
		section, ok := instance.Section.(*product.Section)
		if !ok {
			return fmt.Errorf("%w: %q", ErrNotProductSection, sectionID)
		}
		return fn(section)
	}})
}

// ToggleDescription expands or collapses a product section's description.
func (a *Application) ToggleDescription(ctx context.Context, sectionID string) error {
	return a.withProduct(ctx, "description", sectionID, func(section *product.Section) error {
		if !section.ToggleDescription() {
			return fmt.Errorf("%w: %q", ErrNoDescription, sectionID)
		}
		return nil
	})
}

// ToggleTag clicks a tag of the page's tag filter.
func (a *Application) ToggleTag(ctx context.Context, tag string) error {
	return a.withTags(ctx, "tagsort", func(board *tagsort.Board) error {
		el := board.Tag(tag)
		if el == nil {
			return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
		}
		board.Click(el)
		return nil
	})
}

// ResetTags clears every active tag of the page's tag filter.
func (a *Application) ResetTags(ctx context.Context) error {
	return a.withTags(ctx, "tagsort_reset", func(board *tagsort.Board) error {
		board.Reset()
		return nil
	})
}

func (a *Application) withTags(ctx context.Context, name string, fn func(*tagsort.Board) error) error {
	return a.loop.Do(ctx, background.Job{Name: name, Run: func(context.Context) error {
		a.mu.Lock()
		board := a.tags
		a.mu.Unlock()
		if board == nil {
			return ErrNoTagFilter
		}
		return fn(board)
	}})
}

// CartStep presses the plus button of the 1-based cart line delta times, or
// its minus button for a negative delta.
func (a *Application) CartStep(ctx context.Context, line, delta int) error {
	return a.loop.Do(ctx, background.Job{Name: "cart_step", Run: func(context.Context) error {
		increase := delta >= 0
		if delta < 0 {
			delta = -delta
		}
		button := cart.Stepper(a.doc, line, increase)
		if button == nil {
			return fmt.Errorf("%w: %d", ErrNoCartLine, line)
		}
		for i := 0; i < delta; i++ {
			if _, ok := cart.Click(button); !ok {
				return fmt.Errorf("%w: %d", ErrNoCartLine, line)
			}
		}
		return nil
	}})
}

// FollowPageLink focuses the target of an in-page link such as
// "#MainContent". The previous link target gives its focus back first.
func (a *Application) FollowPageLink(ctx context.Context, hash string) error {
	return a.loop.Do(ctx, background.Job{Name: "page_link", Run: func(context.Context) error {
		target := a.doc.ElementByID(strings.TrimPrefix(strings.TrimSpace(hash), "#"))
		if target == nil {
			return fmt.Errorf("%w: %q", ErrNoLinkTarget, hash)
		}
		a.focus(func() func() { return a11y.FocusPageLink(target) })
		return nil
	}})
}

// PressControl presses a page control outside any section, such as the
// filter drawer or the recover password link.
func (a *Application) PressControl(ctx context.Context, name, arg string) error {
	control, err := page.ParseControl(name)
	if err != nil {
		return err
	}
	return a.loop.Do(ctx, background.Job{Name: string(control), Run: func(context.Context) error {
		return page.Press(a.doc, control, arg)
	}})
}

// focus releases the element focused by the previous link, then runs
// focusFn and keeps the blur callback it returns.
func (a *Application) focus(focusFn func() (onBlur func())) {
	a.mu.Lock()
	previous := a.blur
	a.blur = nil
	a.mu.Unlock()
	if previous != nil {
		previous()
	}

	blur := focusFn()
	a.mu.Lock()
	a.blur = blur
	a.mu.Unlock()
}

func (a *Application) Document() *dom.Document      { return a.doc }
func (a *Application) Registry() *sections.Registry { return a.registry }
func (a *Application) Theme() *theme.Theme          { return a.theme }

// History returns the URLs written through history state updates.
func (a *Application) History() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.history...)
}

// Events returns the variant events published so far, in order.
func (a *Application) Events() []EventRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]EventRecord(nil), a.events...)
}

// Shutdown unloads every section and stops the loop.
func (a *Application) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	booted := a.booted
	a.mu.Unlock()

	if booted {
		logger.Debug("Stopping page", map[string]interface{}{"pending_jobs": a.loop.Pending()})
		if err := a.loop.Do(ctx, background.Job{Name: "shutdown", Run: func(context.Context) error {
			a.registry.Close()
			return nil
		}}); err != nil && !errors.Is(err, background.ErrLoopStopped) {
			logger.Error(err, "Failed to unload sections", nil)
		}
	} else {
		a.registry.Close()
	}

	return a.loop.Shutdown(ctx)
}
