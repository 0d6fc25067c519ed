package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pseo/internal/ir"
)

func (c *libCompiler) compileLayout(kind string, v cue.Value) {
	field := "layout." + kind
	layout := ir.Layout{Kind: kind}

	str := func(name string, required bool) (string, bool) {
		fv := v.LookupPath(cue.ParsePath(name))
		if !fv.Exists() {
			if required {
				c.add(&CompileError{Field: field + "." + name, Rule: RuleLayout, Message: name + " is required", Pos: v.Pos()})
				return "", false
			}
			return "", true
		}
		s, err := fv.String()
		if err != nil {
			c.add(formatCUEError(err, field+"."+name))
			return "", false
		}
		if required && s == "" {
			c.add(&CompileError{Field: field + "." + name, Rule: RuleLayout, Message: name + " must not be empty", Pos: fv.Pos()})
			return "", false
		}
		return s, true
	}

	var ok bool
	okAll := true
	if layout.Slug, ok = str("slug", true); !ok {
		okAll = false
	}
	if layout.Title, ok = str("title", true); !ok {
		okAll = false
	}
	if layout.Description, ok = str("description", false); !ok {
		okAll = false
	}

	slots, ok := c.compileSlotSpecs(v, field)
	if !ok {
		okAll = false
	}
	layout.Slots = slots

	if !okAll {
		return
	}

	if c.layoutVals == nil {
		c.layoutVals = make(map[string]cue.Value)
	}
	c.layoutVals[kind] = v
	c.lib.Layouts = append(c.lib.Layouts, layout)
}

func (c *libCompiler) compileSlotSpecs(v cue.Value, field string) ([]ir.SlotSpec, bool) {
	slotsVal := v.LookupPath(cue.ParsePath("slots"))
	if !slotsVal.Exists() {
		c.add(&CompileError{Field: field + ".slots", Rule: RuleLayout, Message: "at least one slot is required", Pos: v.Pos()})
		return nil, false
	}
	iter, err := slotsVal.List()
	if err != nil {
		c.add(formatCUEError(err, field+".slots"))
		return nil, false
	}

	var specs []ir.SlotSpec
	seen := make(map[string]bool)
	ok := true
	for i := 0; iter.Next(); i++ {
		sf := fmt.Sprintf("%s.slots[%d]", field, i)
		spec, err := compileSlotSpec(iter.Value(), sf)
		if err != nil {
			c.add(err)
			ok = false
			continue
		}
		if seen[spec.Slot] {
			c.add(&CompileError{Field: sf, Rule: RuleSlot, Message: fmt.Sprintf("slot %q listed twice", spec.Slot), Pos: iter.Value().Pos()})
			ok = false
			continue
		}
		seen[spec.Slot] = true
		specs = append(specs, spec)
	}

	if len(specs) == 0 && ok {
		c.add(&CompileError{Field: field + ".slots", Rule: RuleLayout, Message: "at least one slot is required", Pos: slotsVal.Pos()})
		return nil, false
	}
	return specs, ok
}

// compileSlotSpec accepts "hero" as shorthand for {slot: "hero", pick: 1}.
func compileSlotSpec(v cue.Value, field string) (ir.SlotSpec, error) {
	spec := ir.SlotSpec{Pick: 1}

	if s, err := v.String(); err == nil {
		spec.Slot = s
	} else {
		slotVal := v.LookupPath(cue.ParsePath("slot"))
		if !slotVal.Exists() {
			return spec, &CompileError{Field: field + ".slot", Rule: RuleSlot, Message: "slot name is required", Pos: v.Pos()}
		}
		name, err := slotVal.String()
		if err != nil {
			return spec, formatCUEError(err, field+".slot")
		}
		spec.Slot = name

		if pickVal := v.LookupPath(cue.ParsePath("pick")); pickVal.Exists() {
			n, err := pickVal.Int64()
			if err != nil {
				return spec, formatCUEError(err, field+".pick")
			}
			if n < 1 {
				return spec, &CompileError{Field: field + ".pick", Rule: RuleSlot, Message: fmt.Sprintf("pick must be at least 1, got %d", n), Pos: pickVal.Pos()}
			}
			spec.Pick = int(n)
		}

		if optVal := v.LookupPath(cue.ParsePath("optional")); optVal.Exists() {
			b, err := optVal.Bool()
			if err != nil {
				return spec, formatCUEError(err, field+".optional")
			}
			spec.Optional = b
		}
	}

	if spec.Slot == "" {
		return spec, &CompileError{Field: field + ".slot", Rule: RuleSlot, Message: "slot name must not be empty", Pos: v.Pos()}
	}
	return spec, nil
}

// checkResolvable verifies that every required slot of every layout yields at
// least one variant for an intent that declares no pools of its own. Intent
// pools can only add to that, or replace it for their own intent.
func (c *libCompiler) checkResolvable() {
	for _, layout := range c.lib.Layouts {
		for _, spec := range layout.Slots {
			if spec.Optional {
				continue
			}
			if fallbackVariants(c.lib, layout.Kind, spec.Slot) > 0 {
				continue
			}
			var pos token.Pos
			if v, ok := c.layoutVals[layout.Kind]; ok {
				pos = v.Pos()
			}
			c.add(&CompileError{
				Field:   fmt.Sprintf("layout.%s.slots.%s", layout.Kind, spec.Slot),
				Rule:    RuleUnresolved,
				Message: fmt.Sprintf("required slot %q has no kind or default variants; mark it optional or add a pool", spec.Slot),
				Pos:     pos,
			})
		}
	}
}

// fallbackVariants counts the variants the kind → default part of the chain
// contributes for slot.
func fallbackVariants(lib *ir.Library, kind, slot string) int {
	n := 0
	if p, ok := lib.Pool(ir.LevelKind, kind, slot); ok {
		n += len(p.Variants)
		if p.Mode == ir.MergeReplace {
			return n
		}
	}
	if p, ok := lib.Pool(ir.LevelDefault, "", slot); ok {
		n += len(p.Variants)
	}
	return n
}
