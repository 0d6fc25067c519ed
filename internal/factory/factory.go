package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pseo/internal/ir"
	"github.com/roach88/pseo/internal/template"
)

// Factory assembles pages from one compiled library.
// It holds no mutable state and is safe for concurrent use.
type Factory struct {
	lib     *ir.Library
	logger  *slog.Logger
	lenient bool
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = l
	}
}

// WithLenient leaves unresolved template tokens in place instead of failing
// the page.
func WithLenient(lenient bool) Option {
	return func(f *Factory) {
		f.lenient = lenient
	}
}

// New creates a Factory for lib.
func New(lib *ir.Library, opts ...Option) *Factory {
	f := &Factory{
		lib:    lib,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Library returns the library the factory assembles from.
func (f *Factory) Library() *ir.Library {
	return f.lib
}

// Variables returns the template variables for key. Sources are applied in
// order library vars, key attrs, built-ins; later ones win. A built-in whose
// key field is empty is left unset so an earlier source can fill it.
func (f *Factory) Variables(key ir.PageKey) map[string]string {
	vars := make(map[string]string, len(f.lib.Vars)+len(key.Attrs)+12)
	for k, v := range f.lib.Vars {
		vars[k] = v
	}
	for k, v := range key.Attrs {
		vars[k] = v
	}

	for i, value := range builtinValues(key) {
		if value == "" {
			continue
		}
		name := builtinNames[i]
		vars[name] = value
		vars[name+"_slug"] = template.Slugify(value)
	}
	return vars
}

// Assemble builds the page for key.
func (f *Factory) Assemble(key ir.PageKey) (*ir.Page, error) {
	layout, ok := f.lib.Layout(key.Kind)
	if !ok {
		return nil, &AssembleError{Code: ErrCodeUnknownKind, Key: key.String(), Err: fmt.Errorf("%w %q", ErrUnknownKind, key.Kind)}
	}

	vars := f.Variables(key)
	opts := template.Options{Lenient: f.lenient}
	page := &ir.Page{Key: key}

	render := func(what, text string) (string, error) {
		out, err := template.Render(text, vars, opts)
		if err != nil {
			return "", &AssembleError{Code: ErrCodeTemplate, Key: key.String(), Slug: page.Slug, Err: fmt.Errorf("%s: %w", what, err)}
		}
		return out, nil
	}

	slug, err := render("slug", layout.Slug)
	if err != nil {
		return nil, err
	}
	page.Slug = template.SlugifyPath(slug)

	if page.Title, err = render("title", layout.Title); err != nil {
		return nil, err
	}
	if page.Description, err = render("description", layout.Description); err != nil {
		return nil, err
	}

	for _, spec := range layout.Slots {
		section, err := f.fillSlot(key, page.Slug, spec, vars, opts)
		if err != nil {
			if spec.Optional && (errors.Is(err, ErrNoPool) || errors.Is(err, ErrEmptyPool)) {
				f.logger.Debug("optional slot skipped", "slug", page.Slug, "slot", spec.Slot)
				continue
			}
			return nil, err
		}
		page.Sections = append(page.Sections, *section)
	}

	hash, err := ir.ContentHash(page)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", page.Slug, err)
	}
	page.ContentHash = hash

	f.logger.Debug("assembled page", "slug", page.Slug, "sections", len(page.Sections), "hash", hash[:12])
	return page, nil
}

func (f *Factory) fillSlot(key ir.PageKey, slug string, spec ir.SlotSpec, vars map[string]string, opts template.Options) (*ir.Section, error) {
	rp, err := f.ResolvePool(key, spec.Slot)
	if err != nil {
		var ae *AssembleError
		if errors.As(err, &ae) {
			ae.Slug = slug
		}
		return nil, err
	}

	n := len(rp.Variants)
	if n < spec.Pick {
		f.logger.Warn("pool smaller than pick; using every variant",
			"slug", slug, "slot", spec.Slot, "pick", spec.Pick, "variants", n)
	}

	seed := ir.SelectionSeed(key.City, key.Intent, spec.Slot)
	var picks []int
	if spec.Pick == 1 {
		picks = []int{ir.Pick(seed, n)}
	} else {
		picks = ir.PickDistinct(seed, n, spec.Pick)
	}

	section := &ir.Section{Slot: spec.Slot, Blocks: make([]ir.Block, 0, len(picks))}
	for _, i := range picks {
		v := rp.Variants[i]
		fields, err := template.RenderFields(v.Fields, vars, opts)
		if err != nil {
			return nil, &AssembleError{
				Code: ErrCodeTemplate,
				Key:  key.String(),
				Slot: spec.Slot,
				Slug: slug,
				Err:  fmt.Errorf("variant %q: %w", v.ID, err),
			}
		}
		section.Blocks = append(section.Blocks, ir.Block{VariantID: v.ID, Level: v.Level, Fields: fields})
	}
	return section, nil
}

// AssembleAll assembles keys in order. Every failing page is reported, joined
// with errors.Join; pages that assembled are still returned. Two pages with
// the same slug are an error for the later one.
func (f *Factory) AssembleAll(keys []ir.PageKey) ([]*ir.Page, error) {
	pages := make([]*ir.Page, 0, len(keys))
	bySlug := make(map[string]ir.PageKey, len(keys))
	var errs []error

	for _, key := range keys {
		page, err := f.Assemble(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := bySlug[page.Slug]; dup {
			errs = append(errs, &AssembleError{
				Code: ErrCodeDuplicateSlug,
				Key:  key.String(),
				Slug: page.Slug,
				Err:  fmt.Errorf("%w: also produced by %s", ErrDuplicateSlug, prev),
			})
			continue
		}
		bySlug[page.Slug] = key
		pages = append(pages, page)
	}

	f.logger.Info("assembled pages", "requested", len(keys), "ok", len(pages), "failed", len(errs))
	return pages, errors.Join(errs...)
}
