package factory

import (
	"github.com/roach88/pseo/internal/ir"
)

// ResolvedVariant is a variant together with the level it came from.
type ResolvedVariant struct {
	ir.Variant
	Level ir.Level
}

// ResolvedPool is the effective variant list for one slot of one page.
type ResolvedPool struct {
	Slot     string
	Variants []ResolvedVariant
	Levels   []ir.Level // levels that were consulted, most specific first
}

// ResolvePool walks the inheritance chain for slot on the page identified by
// key. It fails with ErrNoPool when no level declares the slot and with
// ErrEmptyPool when the declared pools contribute no variants.
func (f *Factory) ResolvePool(key ir.PageKey, slot string) (*ResolvedPool, error) {
	rp := &ResolvedPool{Slot: slot}
	seen := make(map[string]bool)
	found := false

	for _, level := range ir.Chain {
		pool, ok := f.lib.Pool(level, scopeFor(level, key), slot)
		if !ok {
			continue
		}
		found = true
		rp.Levels = append(rp.Levels, level)

		for _, v := range pool.Variants {
			if seen[v.ID] {
				continue // a more specific level already supplied this ID
			}
			seen[v.ID] = true
			rp.Variants = append(rp.Variants, ResolvedVariant{Variant: v, Level: level})
		}

		if pool.Mode == ir.MergeReplace {
			break
		}
	}

	if !found {
		return nil, &AssembleError{Code: ErrCodeNoPool, Key: key.String(), Slot: slot, Err: ErrNoPool}
	}
	if len(rp.Variants) == 0 {
		return nil, &AssembleError{Code: ErrCodeEmptyPool, Key: key.String(), Slot: slot, Err: ErrEmptyPool}
	}
	return rp, nil
}

func scopeFor(level ir.Level, key ir.PageKey) string {
	switch level {
	case ir.LevelIntent:
		return key.Intent
	case ir.LevelKind:
		return key.Kind
	default:
		return ""
	}
}
