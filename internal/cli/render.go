package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/pseo/internal/factory"
	"github.com/roach88/pseo/internal/ir"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Key     ir.PageKey
	Attrs   map[string]string
	Lenient bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <content-dir>",
		Short: "Assemble and print one page",
		Long: `Assemble a single page from the content library and print it.

Useful while writing content: the same key always renders the same page.

Example:
  pseo render ./content --kind city-vertical --city Austin --state TX \
    --vertical plumbing --intent pricing
  pseo render ./content --kind city-vertical --city Austin --attr vertical_name=Plumbing --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key.Kind, "kind", "", "page kind (layout name, required)")
	cmd.Flags().StringVar(&opts.Key.City, "city", "", "city name")
	cmd.Flags().StringVar(&opts.Key.State, "state", "", "state or region code")
	cmd.Flags().StringVar(&opts.Key.Vertical, "vertical", "", "vertical slug")
	cmd.Flags().StringVar(&opts.Key.Intent, "intent", "", "search intent")
	cmd.Flags().StringVar(&opts.Key.Integration, "integration", "", "integration slug")
	cmd.Flags().StringToStringVar(&opts.Attrs, "attr", nil, "extra template variable (key=value, repeatable)")
	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "leave unresolved template tokens in place")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runRender(opts *RenderOptions, contentDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadContent(formatter, contentDir)
	if err != nil {
		return err
	}

	key := opts.Key
	if len(opts.Attrs) > 0 {
		key.Attrs = opts.Attrs
	}

	f := factory.New(loaded.Library,
		factory.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())),
		factory.WithLenient(opts.Lenient),
	)
	page, err := f.Assemble(key)
	if err != nil {
		return outputIssues(formatter, "page failed to assemble", []Issue{issueFrom(err)})
	}

	if formatter.Format == "json" {
		return formatter.Success(page)
	}

	writePageText(formatter.Writer, page)
	return nil
}

// writePageText prints a page for humans. Fields are sorted by name.
func writePageText(w io.Writer, page *ir.Page) {
	fmt.Fprintf(w, "%s\n", page.Slug)
	fmt.Fprintf(w, "  title:       %s\n", page.Title)
	if page.Description != "" {
		fmt.Fprintf(w, "  description: %s\n", page.Description)
	}
	fmt.Fprintf(w, "  hash:        %s\n", page.ContentHash)

	for _, section := range page.Sections {
		fmt.Fprintf(w, "\n[%s]\n", section.Slot)
		for _, block := range section.Blocks {
			fmt.Fprintf(w, "  - %s (%s)\n", block.VariantID, block.Level)
			names := make([]string, 0, len(block.Fields))
			for name := range block.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "      %s: %s\n", name, block.Fields[name])
			}
		}
	}
}
