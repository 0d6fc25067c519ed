package harness

import "github.com/roach88/pseo/internal/ir"

// Result is the outcome of running one scenario.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass is true when every page assembled and every assertion held.
	Pass bool `json:"pass"`

	// Pages holds the assembled pages, aligned with Scenario.Keys. A page
	// that failed to assemble is nil.
	Pages []*ir.Page `json:"pages"`

	// Errors contains assembly and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Errors:   []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
