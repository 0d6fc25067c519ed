package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/pseo/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Slug     string
	Slot     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Slug != "" {
		fmt.Fprintf(&buf, " on %s", e.Slug)
	}
	if e.Slot != "" {
		fmt.Fprintf(&buf, " slot %q", e.Slot)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
// Assertions on a page that failed to assemble are skipped; the assembly
// failure is already reported.
func EvaluateAssertions(pages []*ir.Page, assertions []Assertion) []string {
	var msgs []string
	for _, a := range assertions {
		if a.Key < 0 || a.Key >= len(pages) || pages[a.Key] == nil {
			continue
		}
		if err := evaluate(pages[a.Key], a); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func evaluate(page *ir.Page, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Slug: page.Slug, Slot: a.Slot, Expected: expected, Actual: actual}
	}

	switch a.Type {
	case AssertSlug:
		if page.Slug != a.Slug {
			return fail(a.Slug, page.Slug)
		}
		return nil
	case AssertTitle:
		if !strings.Contains(page.Title, a.Text) {
			return fail(fmt.Sprintf("title containing %q", a.Text), page.Title)
		}
		return nil
	}

	section, ok := page.Section(a.Slot)
	if a.Type == AssertAbsent {
		if ok {
			return fail("no section", fmt.Sprintf("%d block(s)", len(section.Blocks)))
		}
		return nil
	}
	if !ok {
		return fail(fmt.Sprintf("section %q", a.Slot), "section missing")
	}

	switch a.Type {
	case AssertContains:
		if !sectionContains(section, a.Text) {
			return fail(fmt.Sprintf("text containing %q", a.Text), sectionText(section))
		}
	case AssertNotContains:
		if sectionContains(section, a.Text) {
			return fail(fmt.Sprintf("no text containing %q", a.Text), sectionText(section))
		}
	case AssertVariant:
		for _, b := range section.Blocks {
			if b.VariantID == a.Variant {
				return nil
			}
		}
		return fail(fmt.Sprintf("variant %s", a.Variant), strings.Join(variantIDs(section), ", "))
	case AssertLevel:
		for _, b := range section.Blocks {
			if string(b.Level) != a.Level {
				return fail(fmt.Sprintf("every block from level %s", a.Level), fmt.Sprintf("%s from %s", b.VariantID, b.Level))
			}
		}
	case AssertSlotCount:
		if len(section.Blocks) != a.Count {
			return fail(fmt.Sprintf("%d block(s)", a.Count), fmt.Sprintf("%d block(s)", len(section.Blocks)))
		}
	case AssertDistinct:
		seen := make(map[string]bool)
		for _, b := range section.Blocks {
			if seen[b.VariantID] {
				return fail("distinct variants", strings.Join(variantIDs(section), ", "))
			}
			seen[b.VariantID] = true
		}
	}
	return nil
}

func variantIDs(s *ir.Section) []string {
	ids := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		ids[i] = b.VariantID
	}
	return ids
}

func sectionContains(s *ir.Section, text string) bool {
	for _, b := range s.Blocks {
		for _, v := range b.Fields {
			if strings.Contains(v, text) {
				return true
			}
		}
	}
	return false
}

// sectionText renders a section's fields deterministically for messages.
func sectionText(s *ir.Section) string {
	var parts []string
	for _, b := range s.Blocks {
		keys := make([]string, 0, len(b.Fields))
		for k := range b.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s.%s=%q", b.VariantID, k, b.Fields[k]))
		}
	}
	return strings.Join(parts, " ")
}
