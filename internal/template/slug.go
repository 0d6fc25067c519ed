package template

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns s into a URL path segment: accents stripped, lower case,
// runs of anything else collapsed to a single dash.
//
//	Slugify("São Paulo")        == "sao-paulo"
//	Slugify("  HVAC & Heating") == "hvac-heating"
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SlugifyPath slugifies each "/"-separated segment of p and drops empty ones.
// The result always starts with "/".
func SlugifyPath(p string) string {
	var segs []string
	for _, seg := range strings.Split(p, "/") {
		if s := Slugify(seg); s != "" {
			segs = append(segs, s)
		}
	}
	return "/" + strings.Join(segs, "/")
}
