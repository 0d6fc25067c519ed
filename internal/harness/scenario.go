package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pseo/internal/ir"
)

// Scenario defines an author scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario pins down.
	Description string `yaml:"description"`

	// Keys are the pages to assemble, in order.
	Keys []KeySpec `yaml:"keys"`

	// Assertions are evaluated against the assembled pages.
	Assertions []Assertion `yaml:"assertions"`

	// Lenient assembles with unresolved template tokens left in place.
	Lenient bool `yaml:"lenient,omitempty"`
}

// KeySpec is a page key in scenario form.
type KeySpec struct {
	Kind        string            `yaml:"kind"`
	City        string            `yaml:"city,omitempty"`
	State       string            `yaml:"state,omitempty"`
	Vertical    string            `yaml:"vertical,omitempty"`
	Intent      string            `yaml:"intent,omitempty"`
	Integration string            `yaml:"integration,omitempty"`
	Attrs       map[string]string `yaml:"attrs,omitempty"`
}

// PageKey converts k to an ir.PageKey.
func (k KeySpec) PageKey() ir.PageKey {
	return ir.PageKey{
		Kind:        k.Kind,
		City:        k.City,
		State:       k.State,
		Vertical:    k.Vertical,
		Intent:      k.Intent,
		Integration: k.Integration,
		Attrs:       k.Attrs,
	}
}

// Assertion checks one property of one assembled page.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Key indexes Scenario.Keys; defaults to the first page.
	Key int `yaml:"key,omitempty"`

	// Slot names the section under test (all types except slug and title).
	Slot string `yaml:"slot,omitempty"`

	// Text is the substring for contains / not_contains / title.
	Text string `yaml:"text,omitempty"`

	// Variant is the expected variant ID (variant).
	Variant string `yaml:"variant,omitempty"`

	// Level is the expected origin level (level).
	Level string `yaml:"level,omitempty"`

	// Count is the expected number of blocks (slot_count).
	Count int `yaml:"count,omitempty"`

	// Slug is the expected page slug (slug).
	Slug string `yaml:"slug,omitempty"`
}

// Assertion type constants.
const (
	AssertSlug        = "slug"
	AssertTitle       = "title"
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertVariant     = "variant"
	AssertLevel       = "level"
	AssertSlotCount   = "slot_count"
	AssertDistinct    = "distinct"
	AssertAbsent      = "absent"
)

var validAssertions = map[string]bool{
	AssertSlug:        true,
	AssertTitle:       true,
	AssertContains:    true,
	AssertNotContains: true,
	AssertVariant:     true,
	AssertLevel:       true,
	AssertSlotCount:   true,
	AssertDistinct:    true,
	AssertAbsent:      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos like "assertion:" fail.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files in dir, sorted by name.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Keys) == 0 {
		return fmt.Errorf("keys list is required and must be non-empty")
	}
	for i, k := range s.Keys {
		if k.Kind == "" {
			return fmt.Errorf("keys[%d]: kind is required", i)
		}
	}

	for i, a := range s.Assertions {
		if !validAssertions[a.Type] {
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
		if a.Key < 0 || a.Key >= len(s.Keys) {
			return fmt.Errorf("assertions[%d]: key %d out of range (scenario has %d keys)", i, a.Key, len(s.Keys))
		}
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	needSlot := a.Type != AssertSlug && a.Type != AssertTitle
	if needSlot && a.Slot == "" {
		return fmt.Errorf("slot is required")
	}
	switch a.Type {
	case AssertSlug:
		if a.Slug == "" {
			return fmt.Errorf("slug is required")
		}
	case AssertTitle, AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("text is required")
		}
	case AssertVariant:
		if a.Variant == "" {
			return fmt.Errorf("variant is required")
		}
	case AssertLevel:
		switch ir.Level(a.Level) {
		case ir.LevelIntent, ir.LevelKind, ir.LevelDefault:
		default:
			return fmt.Errorf("level must be intent, kind or default, got %q", a.Level)
		}
	case AssertSlotCount:
		if a.Count < 1 {
			return fmt.Errorf("count must be at least 1")
		}
	}
	return nil
}
