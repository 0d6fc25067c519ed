package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/pseo/internal/ir"
)

// CompileLibrary converts a CUE value holding a content library into an
// ir.Library. The value is the package root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`pool: default: hero: [{id: "a", body: "Hi {{city}}"}]`)
//	lib, err := CompileLibrary(v)
//
// Every problem found is reported; the returned error is an errors.Join of
// *CompileError values. The library is still returned alongside validation
// errors so callers can show partial results.
func CompileLibrary(v cue.Value) (*ir.Library, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "library")
	}

	c := &libCompiler{lib: &ir.Library{Vars: map[string]string{}}}

	c.compileVars(v.LookupPath(cue.ParsePath("vars")))

	poolRoot := v.LookupPath(cue.ParsePath("pool"))
	if poolRoot.Exists() {
		for _, level := range ir.Chain {
			c.compileLevel(poolRoot, level)
		}
	}

	layoutRoot := v.LookupPath(cue.ParsePath("layout"))
	if layoutRoot.Exists() {
		iter, err := layoutRoot.Fields()
		if err != nil {
			c.add(formatCUEError(err, "layout"))
		} else {
			for iter.Next() {
				c.compileLayout(iter.Label(), iter.Value())
			}
		}
	}

	if !poolRoot.Exists() && !layoutRoot.Exists() {
		c.add(&CompileError{Field: "library", Rule: RulePool, Message: "library declares no pools and no layouts", Pos: v.Pos()})
	}

	c.lib.Sort()
	c.checkResolvable()

	return c.lib, errors.Join(c.errs...)
}

type libCompiler struct {
	lib  *ir.Library
	errs []error

	layoutVals map[string]cue.Value // for positions in late checks
}

func (c *libCompiler) add(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *libCompiler) compileVars(v cue.Value) {
	if !v.Exists() {
		return
	}
	iter, err := v.Fields()
	if err != nil {
		c.add(formatCUEError(err, "vars"))
		return
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			c.add(&CompileError{
				Field:   "vars." + iter.Label(),
				Rule:    RuleVars,
				Message: "vars must be strings",
				Pos:     iter.Value().Pos(),
			})
			continue
		}
		c.lib.Vars[iter.Label()] = s
	}
}

// compileLevel reads pool.<level>. The default level maps slot → pool
// directly; intent and kind levels are keyed by scope first.
func (c *libCompiler) compileLevel(root cue.Value, level ir.Level) {
	levelVal := root.LookupPath(cue.MakePath(cue.Str(string(level))))
	if !levelVal.Exists() {
		return
	}
	field := "pool." + string(level)

	if level == ir.LevelDefault {
		c.compileSlots(levelVal, level, "", field)
		return
	}

	iter, err := levelVal.Fields()
	if err != nil {
		c.add(formatCUEError(err, field))
		return
	}
	for iter.Next() {
		c.compileSlots(iter.Value(), level, iter.Label(), field+"."+iter.Label())
	}
}

func (c *libCompiler) compileSlots(v cue.Value, level ir.Level, scope, field string) {
	iter, err := v.Fields()
	if err != nil {
		c.add(formatCUEError(err, field))
		return
	}
	for iter.Next() {
		pool, errs := compilePool(iter.Value(), level, scope, iter.Label(), field+"."+iter.Label())
		if len(errs) > 0 {
			for _, err := range errs {
				c.add(err)
			}
			continue
		}
		c.lib.Pools = append(c.lib.Pools, *pool)
	}
}

// compilePool accepts either a bare list of variants (inherit mode) or a
// struct with mode and variants. Every bad variant in the pool is reported;
// a pool with any error is not usable.
func compilePool(v cue.Value, level ir.Level, scope, slot, field string) (*ir.Pool, []error) {
	pool := &ir.Pool{Slot: slot, Level: level, Scope: scope, Mode: ir.MergeInherit}
	var errs []error

	variantsVal := v
	if v.IncompleteKind() == cue.StructKind {
		modeVal := v.LookupPath(cue.ParsePath("mode"))
		if modeVal.Exists() {
			mode, err := modeVal.String()
			switch {
			case err != nil:
				errs = append(errs, formatCUEError(err, field+".mode"))
			case !ir.ValidMergeModes[ir.MergeMode(mode)]:
				errs = append(errs, &CompileError{
					Field:   field + ".mode",
					Rule:    RuleMode,
					Message: fmt.Sprintf("invalid mode %q: must be inherit or replace", mode),
					Pos:     modeVal.Pos(),
				})
			default:
				pool.Mode = ir.MergeMode(mode)
			}
		}
		variantsVal = v.LookupPath(cue.ParsePath("variants"))
		if !variantsVal.Exists() {
			// A pool with only a mode is legal: replace+nothing blanks a slot.
			return pool, errs
		}
		field += ".variants"
	}

	if variantsVal.IncompleteKind() != cue.ListKind {
		return nil, append(errs, &CompileError{
			Field:   field,
			Rule:    RulePool,
			Message: "pool must be a list of variants or a struct with variants",
			Pos:     variantsVal.Pos(),
		})
	}

	iter, err := variantsVal.List()
	if err != nil {
		return nil, append(errs, formatCUEError(err, field))
	}

	seen := make(map[string]bool)
	for i := 0; iter.Next(); i++ {
		vf := fmt.Sprintf("%s[%d]", field, i)
		variant, verrs := compileVariant(iter.Value(), vf)
		if len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		if seen[variant.ID] {
			errs = append(errs, &CompileError{
				Field:   vf + ".id",
				Rule:    RuleVariantID,
				Message: fmt.Sprintf("duplicate variant id %q in pool", variant.ID),
				Pos:     iter.Value().Pos(),
			})
			continue
		}
		seen[variant.ID] = true
		pool.Variants = append(pool.Variants, *variant)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return pool, nil
}

// compileVariant reports a bad id and every non-string field of one variant.
func compileVariant(v cue.Value, field string) (*ir.Variant, []error) {
	var errs []error

	var id string
	idVal := v.LookupPath(cue.ParsePath("id"))
	if !idVal.Exists() {
		errs = append(errs, &CompileError{Field: field + ".id", Rule: RuleVariantID, Message: "variant id is required", Pos: v.Pos()})
	} else if s, err := idVal.String(); err != nil {
		errs = append(errs, formatCUEError(err, field+".id"))
	} else if s == "" {
		errs = append(errs, &CompileError{Field: field + ".id", Rule: RuleVariantID, Message: "variant id must not be empty", Pos: idVal.Pos()})
	} else {
		id = s
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, append(errs, formatCUEError(err, field))
	}

	fields := map[string]string{}
	badFields := false
	for iter.Next() {
		name := iter.Label()
		if name == "id" {
			continue
		}
		s, err := iter.Value().String()
		if err != nil {
			badFields = true
			errs = append(errs, &CompileError{
				Field:   field + "." + name,
				Rule:    RuleVariant,
				Message: "variant fields must be strings",
				Pos:     iter.Value().Pos(),
			})
			continue
		}
		fields[name] = s
	}

	if len(fields) == 0 && !badFields {
		errs = append(errs, &CompileError{
			Field:   field,
			Rule:    RuleVariant,
			Message: fmt.Sprintf("variant %q has no text fields", id),
			Pos:     v.Pos(),
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &ir.Variant{ID: id, Fields: fields}, nil
}
