// Package matrix expands a YAML site matrix into the list of pages to build.
//
// A matrix lists the values of each dimension (cities, verticals, intents,
// integrations) and a set of page sets. Each page set names a page kind and
// the dimensions it crosses; its pages are the cartesian product of those
// dimensions, in the order they are listed.
package matrix

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pseo/internal/ir"
)

// Dimension names.
const (
	DimCity        = "city"
	DimVertical    = "vertical"
	DimIntent      = "intent"
	DimIntegration = "integration"
)

// ValidDimensions defines the dimensions a page set may cross.
var ValidDimensions = map[string]bool{
	DimCity:        true,
	DimVertical:    true,
	DimIntent:      true,
	DimIntegration: true,
}

// Matrix is a parsed site matrix.
type Matrix struct {
	Cities       []City    `yaml:"cities"`
	Verticals    []Entry   `yaml:"verticals"`
	Intents      []Entry   `yaml:"intents"`
	Integrations []Entry   `yaml:"integrations"`
	PageSets     []PageSet `yaml:"pagesets"`
}

// City is a location. Its slug is derived from the name at assembly time.
type City struct {
	Name  string            `yaml:"name"`
	State string            `yaml:"state"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// Entry is a vertical, intent or integration.
type Entry struct {
	// Slug is the value used in page keys and seeds.
	Slug string `yaml:"slug"`

	// Name is the display name, exposed to templates as <dimension>_name.
	// Defaults to Slug.
	Name string `yaml:"name,omitempty"`

	Attrs map[string]string `yaml:"attrs,omitempty"`
}

// PageSet produces every combination of its dimensions as pages of Kind.
type PageSet struct {
	Kind       string   `yaml:"kind"`
	Dimensions []string `yaml:"dimensions"`
}

// Load reads and validates a matrix file.
func Load(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates matrix YAML. Unknown fields are rejected so a
// typo such as "integratons" fails loudly instead of producing no pages.
func Parse(data []byte) (*Matrix, error) {
	var m Matrix
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse matrix: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the matrix for structural problems and reports all of them.
func (m *Matrix) Validate() error {
	var errs []error

	if len(m.PageSets) == 0 {
		errs = append(errs, errors.New("pagesets: at least one page set is required"))
	}

	citySeen := make(map[string]bool)
	for i, c := range m.Cities {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("cities[%d]: name is required", i))
			continue
		}
		id := c.Name + "|" + c.State
		if citySeen[id] {
			errs = append(errs, fmt.Errorf("cities[%d]: duplicate city %q (%s)", i, c.Name, c.State))
		}
		citySeen[id] = true
	}

	for _, group := range []struct {
		dim     string
		entries []Entry
	}{
		{"verticals", m.Verticals},
		{"intents", m.Intents},
		{"integrations", m.Integrations},
	} {
		dim, entries := group.dim, group.entries
		seen := make(map[string]bool)
		for i, e := range entries {
			if e.Slug == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: slug is required", dim, i))
				continue
			}
			if seen[e.Slug] {
				errs = append(errs, fmt.Errorf("%s[%d]: duplicate slug %q", dim, i, e.Slug))
			}
			seen[e.Slug] = true
		}
	}

	kinds := make(map[string]bool)
	for i, ps := range m.PageSets {
		if ps.Kind == "" {
			errs = append(errs, fmt.Errorf("pagesets[%d]: kind is required", i))
		} else if kinds[ps.Kind] {
			errs = append(errs, fmt.Errorf("pagesets[%d]: duplicate kind %q", i, ps.Kind))
		}
		kinds[ps.Kind] = true

		if len(ps.Dimensions) == 0 {
			errs = append(errs, fmt.Errorf("pagesets[%d]: at least one dimension is required", i))
		}
		dimSeen := make(map[string]bool)
		for _, d := range ps.Dimensions {
			if !ValidDimensions[d] {
				errs = append(errs, fmt.Errorf("pagesets[%d]: unknown dimension %q", i, d))
				continue
			}
			if dimSeen[d] {
				errs = append(errs, fmt.Errorf("pagesets[%d]: dimension %q listed twice", i, d))
			}
			dimSeen[d] = true
			if m.size(d) == 0 {
				errs = append(errs, fmt.Errorf("pagesets[%d]: dimension %q has no entries", i, d))
			}
		}
	}

	return errors.Join(errs...)
}

func (m *Matrix) size(dim string) int {
	switch dim {
	case DimCity:
		return len(m.Cities)
	case DimVertical:
		return len(m.Verticals)
	case DimIntent:
		return len(m.Intents)
	case DimIntegration:
		return len(m.Integrations)
	default:
		return 0
	}
}

// Count returns the number of pages Keys will produce.
func (m *Matrix) Count() int {
	total := 0
	for _, ps := range m.PageSets {
		n := 1
		for _, d := range ps.Dimensions {
			n *= m.size(d)
		}
		total += n
	}
	return total
}

// Keys expands every page set. Ordering is stable: page sets in file order,
// and within a set the first listed dimension varies slowest.
func (m *Matrix) Keys() []ir.PageKey {
	keys := make([]ir.PageKey, 0, m.Count())
	for _, ps := range m.PageSets {
		base := ir.PageKey{Kind: ps.Kind}
		keys = m.expand(keys, base, ps.Dimensions)
	}
	return keys
}

func (m *Matrix) expand(out []ir.PageKey, key ir.PageKey, dims []string) []ir.PageKey {
	if len(dims) == 0 {
		return append(out, key)
	}
	for i := 0; i < m.size(dims[0]); i++ {
		out = m.expand(out, m.apply(key, dims[0], i), dims[1:])
	}
	return out
}

// apply returns a copy of key with the i-th entry of dim filled in.
func (m *Matrix) apply(key ir.PageKey, dim string, i int) ir.PageKey {
	attrs := make(map[string]string, len(key.Attrs)+4)
	for k, v := range key.Attrs {
		attrs[k] = v
	}

	var extra map[string]string
	switch dim {
	case DimCity:
		c := m.Cities[i]
		key.City, key.State, extra = c.Name, c.State, c.Attrs
	case DimVertical:
		e := m.Verticals[i]
		key.Vertical, extra = e.Slug, e.Attrs
		attrs["vertical_name"] = e.displayName()
	case DimIntent:
		e := m.Intents[i]
		key.Intent, extra = e.Slug, e.Attrs
		attrs["intent_name"] = e.displayName()
	case DimIntegration:
		e := m.Integrations[i]
		key.Integration, extra = e.Slug, e.Attrs
		attrs["integration_name"] = e.displayName()
	}
	for k, v := range extra {
		attrs[k] = v
	}

	key.Attrs = attrs
	return key
}

func (e Entry) displayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Slug
}
