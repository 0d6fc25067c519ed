package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pseo/internal/compiler"
	"github.com/roach88/pseo/internal/factory"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	LibraryHash string   `json:"library_hash,omitempty"`
	Layouts     int      `json:"layouts"`
	Pools       int      `json:"pools"`
	Variants    int      `json:"variants"`
	Requires    []string `json:"requires,omitempty"` // variables the site matrix must supply
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <content-dir>",
		Short: "Validate a content library",
		Long: `Compile the CUE content library in a directory and report every problem.

Checks variant ids, pool modes, layout slots, and that every required slot
resolves to at least one variant for any intent.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, contentDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, errs := compiler.LoadDir(contentDir)
	if result == nil {
		issue := issueFrom(errs[0])
		_ = formatter.Error(issue.Code, issue.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, contentDir)

	if len(errs) > 0 {
		return outputIssues(formatter, "content library invalid", issuesFrom(errs))
	}

	lib := result.Library
	vr := ValidationResult{
		Valid:       true,
		LibraryHash: result.Hash,
		Layouts:     len(lib.Layouts),
		Pools:       len(lib.Pools),
	}
	for _, p := range lib.Pools {
		vr.Variants += len(p.Variants)
	}
	vr.Requires = factory.RequiredVariables(lib)

	if formatter.Format == "json" {
		return formatter.Success(vr)
	}

	fmt.Fprintf(formatter.Writer, "✓ Content valid: %d layout(s), %d pool(s), %d variant(s)\n", vr.Layouts, vr.Pools, vr.Variants)
	if len(vr.Requires) > 0 {
		fmt.Fprintf(formatter.Writer, "  matrix must supply: %s\n", strings.Join(vr.Requires, ", "))
	}
	formatter.VerboseLog("Library hash: %s", vr.LibraryHash)
	return nil
}
