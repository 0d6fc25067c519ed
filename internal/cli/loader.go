package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/pseo/internal/compiler"
	"github.com/roach88/pseo/internal/factory"
)

// Error codes for problems the compiler does not report itself.
const (
	ErrCodeMatrix      = "E007" // Site matrix missing or invalid
	ErrCodeStore       = "E008" // Manifest database error
	ErrCodeInvalidFlag = "E009" // Flag value out of range
	ErrCodeWrite       = "E010" // Writing output files failed
	ErrCodeTestFailed  = "E_TEST_FAILED"
)

// ruleCodes maps compiler validation rules to stable error codes.
var ruleCodes = map[string]string{
	compiler.RuleCUE:        "E101",
	compiler.RuleVariantID:  "E102",
	compiler.RuleVariant:    "E103",
	compiler.RuleMode:       "E104",
	compiler.RulePool:       "E105",
	compiler.RuleLayout:     "E106",
	compiler.RuleSlot:       "E107",
	compiler.RuleUnresolved: "E108",
	compiler.RuleVars:       "E109",
}

// Issue is one problem found in the content library or while assembling.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Page    string `json:"page,omitempty"` // slug, or the page key before the slug is known
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// issueFrom converts a compiler, loader or factory error into an Issue.
func issueFrom(err error) Issue {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		code, ok := ruleCodes[ce.Rule]
		if !ok {
			code = compiler.ErrCodeGeneric
		}
		issue := Issue{Code: code, Field: ce.Field, Message: ce.Message}
		if ce.Pos.IsValid() {
			issue.File = ce.Pos.Filename()
			issue.Line = ce.Pos.Line()
		}
		return issue
	}

	var le *compiler.LoadError
	if errors.As(err, &le) {
		issue := Issue{Code: le.Code, Message: le.Message}
		if le.Pos.IsValid() {
			issue.File = le.Pos.Filename()
			issue.Line = le.Pos.Line()
		}
		return issue
	}

	var ae *factory.AssembleError
	if errors.As(err, &ae) {
		page := ae.Slug
		if page == "" {
			page = ae.Key
		}
		return Issue{Code: string(ae.Code), Field: ae.Slot, Page: page, Message: ae.Err.Error()}
	}

	return Issue{Code: compiler.ErrCodeGeneric, Message: err.Error()}
}

func issuesFrom(errs []error) []Issue {
	issues := make([]Issue, len(errs))
	for i, err := range errs {
		issues[i] = issueFrom(err)
	}
	return issues
}

// loadContent compiles the content library in dir. A library with any
// validation issue is rejected: the issues are printed and the returned
// error carries ExitFailure. Errors that stop loading entirely carry
// ExitCommandError.
func loadContent(formatter *OutputFormatter, dir string) (*compiler.LoadResult, error) {
	result, errs := compiler.LoadDir(dir)
	if result == nil {
		issue := issueFrom(errs[0])
		_ = formatter.Error(issue.Code, issue.Message, nil)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
	}
	if len(errs) > 0 {
		return nil, outputIssues(formatter, "content library invalid", issuesFrom(errs))
	}
	formatter.VerboseLog("Loaded %d CUE file(s) from %s (library %s)", result.FileCount, dir, result.Hash[:12])
	return result, nil
}

// outputIssues prints issues and returns an ExitFailure error.
func outputIssues(formatter *OutputFormatter, headline string, issues []Issue) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("%s: %d error(s)", headline, len(issues)))

	if formatter.Format == "json" {
		if err := formatter.ErrorWithData(issues[0].Code, headline, map[string]any{"issues": issues}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n\n", headline)
	for _, issue := range issues {
		switch {
		case issue.File != "" && issue.Line > 0:
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		case issue.Line > 0:
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		case issue.Page != "":
			fmt.Fprintln(formatter.Writer, issue.Page)
		}
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}
	return exitErr
}
