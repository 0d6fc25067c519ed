package ir

import (
	"fmt"
	"sort"
)

// Level is a rung of the pool inheritance chain.
type Level string

const (
	LevelIntent  Level = "intent"
	LevelKind    Level = "kind"
	LevelDefault Level = "default"
)

// Chain is the resolution order, most specific first.
var Chain = []Level{LevelIntent, LevelKind, LevelDefault}

// rank orders levels for deterministic sorting.
func (l Level) rank() int {
	switch l {
	case LevelIntent:
		return 0
	case LevelKind:
		return 1
	case LevelDefault:
		return 2
	default:
		return 3
	}
}

// MergeMode controls how a pool combines with the next level down.
type MergeMode string

const (
	// MergeInherit appends the parent level's variants after this pool's own.
	MergeInherit MergeMode = "inherit"
	// MergeReplace stops the chain at this pool.
	MergeReplace MergeMode = "replace"
)

// ValidMergeModes defines the allowed pool modes.
var ValidMergeModes = map[MergeMode]bool{
	MergeInherit: true,
	MergeReplace: true,
}

// PageKey identifies one generated page.
type PageKey struct {
	Kind        string            `json:"kind"`
	City        string            `json:"city,omitempty"`
	State       string            `json:"state,omitempty"`
	Vertical    string            `json:"vertical,omitempty"`
	Intent      string            `json:"intent,omitempty"`
	Integration string            `json:"integration,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"` // extra template variables
}

// String renders the key for logs and error messages.
func (k PageKey) String() string {
	return fmt.Sprintf("%s{city=%q state=%q vertical=%q intent=%q integration=%q}",
		k.Kind, k.City, k.State, k.Vertical, k.Intent, k.Integration)
}

// Variant is one interchangeable content block.
type Variant struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"` // headline, body, question, answer, ...
}

// Pool is the set of variants declared for a slot at one level.
type Pool struct {
	Slot     string    `json:"slot"`
	Level    Level     `json:"level"`
	Scope    string    `json:"scope,omitempty"` // intent or kind name; empty for default
	Mode     MergeMode `json:"mode"`
	Variants []Variant `json:"variants"`
}

// SlotSpec declares one section of a layout.
type SlotSpec struct {
	Slot     string `json:"slot"`
	Pick     int    `json:"pick"`
	Optional bool   `json:"optional,omitempty"`
}

// Layout describes how pages of one kind are put together.
// Slug, Title and Description are templates.
type Layout struct {
	Kind        string     `json:"kind"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Slots       []SlotSpec `json:"slots"`
}

// Library is a compiled content library.
type Library struct {
	Pools   []Pool            `json:"pools"`
	Layouts []Layout          `json:"layouts"`
	Vars    map[string]string `json:"vars,omitempty"`
}

// Pool returns the pool declared for slot at the given level and scope.
func (lib *Library) Pool(level Level, scope, slot string) (*Pool, bool) {
	for i := range lib.Pools {
		p := &lib.Pools[i]
		if p.Level == level && p.Scope == scope && p.Slot == slot {
			return p, true
		}
	}
	return nil, false
}

// Layout returns the layout for a page kind.
func (lib *Library) Layout(kind string) (*Layout, bool) {
	for i := range lib.Layouts {
		if lib.Layouts[i].Kind == kind {
			return &lib.Layouts[i], true
		}
	}
	return nil, false
}

// Sort puts pools and layouts in canonical order: pools by (level, scope,
// slot), layouts by kind. Variant order is significant and left alone.
func (lib *Library) Sort() {
	sort.SliceStable(lib.Pools, func(i, j int) bool {
		a, b := lib.Pools[i], lib.Pools[j]
		if a.Level != b.Level {
			return a.Level.rank() < b.Level.rank()
		}
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		return a.Slot < b.Slot
	})
	sort.SliceStable(lib.Layouts, func(i, j int) bool {
		return lib.Layouts[i].Kind < lib.Layouts[j].Kind
	})
}

// Block is a selected variant after substitution.
type Block struct {
	VariantID string            `json:"variant_id"`
	Level     Level             `json:"level"` // level the variant was inherited from
	Fields    map[string]string `json:"fields"`
}

// Section is a filled layout slot.
type Section struct {
	Slot   string  `json:"slot"`
	Blocks []Block `json:"blocks"`
}

// Page is an assembled page.
type Page struct {
	Key         PageKey   `json:"key"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
	ContentHash string    `json:"content_hash"`
}

// Section returns the section for slot, if the page has one.
func (p *Page) Section(slot string) (*Section, bool) {
	for i := range p.Sections {
		if p.Sections[i].Slot == slot {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

// CanonicalMap is the hashed projection of the page. The key is left out so
// that attrs which no template references do not churn the hash.
func (p *Page) CanonicalMap() map[string]any {
	sections := make([]any, len(p.Sections))
	for i, s := range p.Sections {
		blocks := make([]any, len(s.Blocks))
		for j, b := range s.Blocks {
			fields := make(map[string]any, len(b.Fields))
			for k, v := range b.Fields {
				fields[k] = v
			}
			blocks[j] = map[string]any{
				"variant_id": b.VariantID,
				"level":      string(b.Level),
				"fields":     fields,
			}
		}
		sections[i] = map[string]any{
			"slot":   s.Slot,
			"blocks": blocks,
		}
	}
	return map[string]any{
		"slug":        p.Slug,
		"title":       p.Title,
		"description": p.Description,
		"sections":    sections,
	}
}
