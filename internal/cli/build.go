package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pseo/internal/compiler"
	"github.com/roach88/pseo/internal/factory"
	"github.com/roach88/pseo/internal/ir"
	"github.com/roach88/pseo/internal/matrix"
	"github.com/roach88/pseo/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Matrix   string
	Database string
	OutDir   string
	Lenient  bool
}

// BuildResult summarizes a build.
type BuildResult struct {
	Pages       int          `json:"pages"`
	LibraryHash string       `json:"library_hash"`
	OutDir      string       `json:"out_dir,omitempty"`
	Build       *store.Build `json:"build,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <content-dir>",
		Short: "Assemble every page in a site matrix",
		Long: `Assemble every page the site matrix describes.

With --out, each page is written as JSON to <out>/<slug>.json.
With --db, the build is recorded in the page manifest and each page is
classified as added, changed, unchanged or removed against the previous build.

Nothing is written unless every page assembles, and page files only reach
--out once the manifest has recorded the build.

Example:
  pseo build ./content --matrix site.yaml --db pages.db --out ./dist`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Matrix, "matrix", "", "path to site matrix YAML (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite page manifest")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory to write page JSON files")
	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "leave unresolved template tokens in place")
	_ = cmd.MarkFlagRequired("matrix")

	return cmd
}

func runBuild(opts *BuildOptions, contentDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	loaded, err := loadContent(formatter, contentDir)
	if err != nil {
		return err
	}

	m, err := matrix.Load(opts.Matrix)
	if err != nil {
		_ = formatter.Error(ErrCodeMatrix, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load matrix", err)
	}
	keys := m.Keys()
	formatter.VerboseLog("Matrix %s expands to %d page(s)", opts.Matrix, len(keys))

	f := factory.New(loaded.Library, factory.WithLogger(logger), factory.WithLenient(opts.Lenient))
	pages, err := f.AssembleAll(keys)
	if err != nil {
		return outputIssues(formatter, "build failed", issuesFrom(compiler.Unjoin(err)))
	}

	result := BuildResult{Pages: len(pages), LibraryHash: loaded.Hash}

	// Pages are staged beside the output directory and only moved into place
	// once the manifest has accepted the build.
	var staged string
	if opts.OutDir != "" {
		staged, err = stagePages(opts.OutDir, pages)
		if staged != "" {
			defer os.RemoveAll(staged)
		}
		if err != nil {
			_ = formatter.Error(ErrCodeWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write pages", err)
		}
	}

	if opts.Database != "" {
		b, err := recordBuild(cmd, opts.Database, loaded.Hash, pages)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record build", err)
		}
		result.Build = &b
		logger.Info("build recorded", "seq", b.Seq, "id", b.ID)
	}

	if opts.OutDir != "" {
		if err := publishPages(staged, opts.OutDir, pages); err != nil {
			_ = formatter.Error(ErrCodeWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write pages", err)
		}
		result.OutDir = opts.OutDir
		logger.Info("pages written", "dir", opts.OutDir, "count", len(pages))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Built %d page(s)\n", result.Pages)
	if result.Build != nil {
		s := result.Build.Stats
		fmt.Fprintf(formatter.Writer, "  build #%d: %d added, %d changed, %d unchanged, %d removed\n",
			result.Build.Seq, s.Added, s.Changed, s.Unchanged, s.Removed)
	}
	if result.OutDir != "" {
		fmt.Fprintf(formatter.Writer, "  written to %s\n", result.OutDir)
	}
	return nil
}

func recordBuild(cmd *cobra.Command, path, libraryHash string, pages []*ir.Page) (store.Build, error) {
	st, err := store.Open(path)
	if err != nil {
		return store.Build{}, err
	}
	defer st.Close()

	return st.RecordBuild(cmd.Context(), store.Build{LibraryHash: libraryHash}, pages)
}

// pagePath maps a slug to its output file: "/a/b" -> <dir>/a/b.json and
// "/" -> <dir>/index.json.
func pagePath(dir, slug string) string {
	rel := strings.Trim(slug, "/")
	if rel == "" {
		rel = "index"
	}
	return filepath.Join(dir, filepath.FromSlash(rel)+".json")
}

// stagePages writes every page under a fresh directory next to outDir and
// returns it. The caller removes the staging directory.
func stagePages(outDir string, pages []*ir.Page) (string, error) {
	parent := filepath.Dir(filepath.Clean(outDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", parent, err)
	}
	staged, err := os.MkdirTemp(parent, ".pseo-build-*")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return staged, writePages(staged, pages)
}

// publishPages moves staged page files into outDir, replacing older copies.
func publishPages(staged, outDir string, pages []*ir.Page) error {
	for _, page := range pages {
		dst := pagePath(outDir, page.Slug)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", page.Slug, err)
		}
		if err := os.Rename(pagePath(staged, page.Slug), dst); err != nil {
			return fmt.Errorf("publish %s: %w", page.Slug, err)
		}
	}
	return nil
}

func writePages(dir string, pages []*ir.Page) error {
	for _, page := range pages {
		path := pagePath(dir, page.Slug)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", page.Slug, err)
		}
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", page.Slug, err)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", page.Slug, err)
		}
	}
	return nil
}
