package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for hashed identities.
// The version suffix allows a future algorithm change without silent collisions.
const (
	DomainSelect  = "pseo/select/v1"
	DomainPage    = "pseo/page/v1"
	DomainLibrary = "pseo/library/v1"
)

// sumWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running into each other.
func sumWithDomain(domain string, data []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// normalizeSeedPart folds the inputs that should seed identically:
// surrounding whitespace, case, and Unicode composition.
func normalizeSeedPart(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// SelectionSeed is the stable seed for filling slot on the page identified by
// (city, intent). Equal tuples always produce equal seeds.
func SelectionSeed(city, intent, slot string) uint64 {
	obj := map[string]any{
		"city":   normalizeSeedPart(city),
		"intent": normalizeSeedPart(intent),
		"slot":   slot,
	}
	// Strings only, so marshaling cannot fail.
	canonical, _ := MarshalCanonical(obj)
	sum := sumWithDomain(DomainSelect, canonical)
	return binary.BigEndian.Uint64(sum[:8])
}

// ContentHash returns the hex content hash of an assembled page.
func ContentHash(p *Page) (string, error) {
	canonical, err := MarshalCanonical(p.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	sum := sumWithDomain(DomainPage, canonical)
	return hex.EncodeToString(sum[:]), nil
}

// LibraryHash identifies a compiled library. Builds record it so a manifest
// can tell content edits apart from matrix edits.
func LibraryHash(lib *Library) (string, error) {
	pools := make([]any, len(lib.Pools))
	for i, p := range lib.Pools {
		variants := make([]any, len(p.Variants))
		for j, v := range p.Variants {
			variants[j] = map[string]any{"id": v.ID, "fields": v.Fields}
		}
		pools[i] = map[string]any{
			"slot":     p.Slot,
			"level":    string(p.Level),
			"scope":    p.Scope,
			"mode":     string(p.Mode),
			"variants": variants,
		}
	}
	layouts := make([]any, len(lib.Layouts))
	for i, l := range lib.Layouts {
		slots := make([]any, len(l.Slots))
		for j, s := range l.Slots {
			slots[j] = map[string]any{"slot": s.Slot, "pick": s.Pick, "optional": s.Optional}
		}
		layouts[i] = map[string]any{
			"kind":        l.Kind,
			"slug":        l.Slug,
			"title":       l.Title,
			"description": l.Description,
			"slots":       slots,
		}
	}
	vars := lib.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"pools":   pools,
		"layouts": layouts,
		"vars":    vars,
	})
	if err != nil {
		return "", fmt.Errorf("LibraryHash: failed to marshal: %w", err)
	}
	sum := sumWithDomain(DomainLibrary, canonical)
	return hex.EncodeToString(sum[:]), nil
}

// MustContentHash is like ContentHash but panics on error.
// Use only in tests or when the page is known to be valid.
func MustContentHash(p *Page) string {
	h, err := ContentHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
