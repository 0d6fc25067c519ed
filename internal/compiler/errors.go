package compiler

import (
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a compilation error with source position.
// Field is a dotted path into the library, e.g. "pool.default.hero.variants[2].id".
type CompileError struct {
	Field   string
	Rule    string // one of the Rule* constants
	Message string
	Pos     token.Pos
}

// Validation rules a CompileError can report.
const (
	RuleCUE        = "cue"
	RuleVariantID  = "variant.id"
	RuleVariant    = "variant.fields"
	RuleMode       = "pool.mode"
	RulePool       = "pool"
	RuleLayout     = "layout"
	RuleSlot       = "layout.slot"
	RuleUnresolved = "layout.unresolved"
	RuleVars       = "vars"
)

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, field string) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: field, Rule: RuleCUE, Message: err.Error()}
	}

	first := errs[0]
	ce := &CompileError{Field: field, Rule: RuleCUE, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
