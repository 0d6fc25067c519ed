package factory

import (
	"sort"

	"github.com/roach88/pseo/internal/ir"
	"github.com/roach88/pseo/internal/template"
)

// builtinNames are the variables every page defines from its key. Each also
// has a <name>_slug form when its value is non-empty.
var builtinNames = []string{"kind", "city", "state", "vertical", "intent", "integration"}

func builtinValues(key ir.PageKey) []string {
	return []string{key.Kind, key.City, key.State, key.Vertical, key.Intent, key.Integration}
}

func isBuiltin(name string) bool {
	for _, b := range builtinNames {
		if name == b || name == b+"_slug" {
			return true
		}
	}
	return false
}

// RequiredVariables lists, sorted, the variables lib references without a
// fallback that neither the library vars nor the page key define. The site
// matrix has to supply them as attrs or pages fail in strict mode.
func RequiredVariables(lib *ir.Library) []string {
	required := make(map[string]bool)
	visit := func(text string) {
		for _, v := range template.Variables(text) {
			if v.HasFallback || isBuiltin(v.Name) {
				continue
			}
			if _, ok := lib.Vars[v.Name]; ok {
				continue
			}
			required[v.Name] = true
		}
	}

	for _, l := range lib.Layouts {
		visit(l.Slug)
		visit(l.Title)
		visit(l.Description)
	}
	for _, p := range lib.Pools {
		for _, v := range p.Variants {
			for _, text := range v.Fields {
				visit(text)
			}
		}
	}

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
