// Package template substitutes page variables into content-block text.
//
// Tokens look like {{city}} or {{integration|your tools}}. The part after the
// pipe is a fallback used when the variable is missing or empty. Substitution
// is a single pass: values are inserted verbatim and never re-expanded, so a
// city named "{{brand}}" stays literal.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var tokenRE = regexp.MustCompile(`\{\{\s*([a-z0-9_]+)\s*(?:\|([^{}]*))?\}\}`)

// Options controls Render.
type Options struct {
	// Lenient leaves unresolved tokens in place instead of failing.
	Lenient bool
}

// UnresolvedError lists variables a template referenced without a value or
// fallback, in first-seen order.
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved variables: %s", strings.Join(e.Names, ", "))
}

// Render replaces every token in text with its value from vars.
func Render(text string, vars map[string]string, opts Options) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	out := tokenRE.ReplaceAllStringFunc(text, func(tok string) string {
		m := tokenRE.FindStringSubmatch(tok)
		name := m[1]
		if v := vars[name]; v != "" {
			return v
		}
		if strings.Contains(tok, "|") {
			return strings.TrimSpace(m[2])
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return tok
	})

	if len(missing) > 0 && !opts.Lenient {
		return "", &UnresolvedError{Names: missing}
	}
	return out, nil
}

// RenderFields renders every value of fields into a new map.
// Errors from individual fields are reported with the field name.
func RenderFields(fields map[string]string, vars map[string]string, opts Options) (map[string]string, error) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(map[string]string, len(fields))
	for _, k := range names {
		r, err := Render(fields[k], vars, opts)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = r
	}
	return out, nil
}

// Variable is a token reference found in a template.
type Variable struct {
	Name        string
	HasFallback bool
}

// Variables returns the variables referenced by text, deduplicated in
// first-seen order. A name counts as having a fallback only if every
// occurrence carries one.
func Variables(text string) []Variable {
	var vars []Variable
	index := make(map[string]int)
	for _, m := range tokenRE.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		hasFallback := m[4] >= 0
		if i, ok := index[name]; ok {
			vars[i].HasFallback = vars[i].HasFallback && hasFallback
			continue
		}
		index[name] = len(vars)
		vars = append(vars, Variable{Name: name, HasFallback: hasFallback})
	}
	return vars
}
