package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pseo/internal/store"
)

// PagesOptions holds flags for the pages command.
type PagesOptions struct {
	*RootOptions
	Database string
	Kind     string
	Status   string
}

// PagesResult is the pages command payload.
type PagesResult struct {
	Build *store.Build       `json:"build,omitempty"`
	Pages []store.PageRecord `json:"pages"`
}

// NewPagesCommand creates the pages command.
func NewPagesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PagesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List pages in the manifest",
		Long: `List the pages recorded in a page manifest, ordered by slug.

Example:
  pseo pages --db pages.db
  pseo pages --db pages.db --status changed --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPages(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite page manifest (required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only pages of this kind")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only pages with this status (added|changed|unchanged|removed)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runPages(opts *PagesOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Status != "" && !store.ValidStatuses[store.PageStatus(opts.Status)] {
		msg := fmt.Sprintf("invalid status %q: must be added, changed, unchanged or removed", opts.Status)
		_ = formatter.Error(ErrCodeInvalidFlag, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	// store.Open creates missing files; pages only reads existing manifests.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		msg := fmt.Sprintf("database not found: %s", opts.Database)
		_ = formatter.Error(ErrCodeStore, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	records, err := st.ListPages(ctx, store.PageFilter{Kind: opts.Kind, Status: store.PageStatus(opts.Status)})
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list pages", err)
	}

	result := PagesResult{Pages: records}
	if latest, err := st.LatestBuild(ctx); err == nil {
		result.Build = latest
	}

	if formatter.Format == "json" {
		if result.Pages == nil {
			result.Pages = []store.PageRecord{}
		}
		return formatter.Success(result)
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No pages found.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tKIND\tSTATUS\tHASH")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Slug, r.Kind, r.Status, shortHash(r.ContentHash))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Build != nil {
		fmt.Fprintf(formatter.Writer, "\n%d page(s), latest build #%d\n", len(records), result.Build.Seq)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
