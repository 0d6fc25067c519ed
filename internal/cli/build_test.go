package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pseo/internal/ir"
)

func TestBuildWritesPagesAndManifest(t *testing.T) {
	tmp := t.TempDir()
	db := filepath.Join(tmp, "pages.db")
	outDir := filepath.Join(tmp, "dist")

	out, _, err := execute(NewBuildCommand(&RootOptions{Format: "json"}),
		contentDir, "--matrix", matrixFile, "--db", db, "--out", outDir)
	require.NoError(t, err)

	var result BuildResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, result.Pages)
	require.NotNil(t, result.Build)
	assert.Equal(t, int64(1), result.Build.Seq)
	assert.Equal(t, 4, result.Build.Stats.Added)

	data, err := os.ReadFile(filepath.Join(outDir, "plumbing", "pricing", "austin-tx.json"))
	require.NoError(t, err)
	var page ir.Page
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, "/plumbing/pricing/austin-tx", page.Slug)
	assert.Equal(t, "546e2c2b40b947f16ba6f50850c33d382102d0733fb0681a8d97966ecb67b42a", page.ContentHash)

	for _, rel := range []string{"reviews/austin-tx.json", "reviews/dallas-tx.json", "pricing/dallas-tx.json"} {
		assert.FileExists(t, filepath.Join(outDir, "plumbing", filepath.FromSlash(rel)))
	}
}

func TestBuildTwiceIsUnchanged(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pages.db")

	_, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", matrixFile, "--db", db)
	require.NoError(t, err)

	out, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", matrixFile, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built 4 page(s)")
	assert.Contains(t, out, "build #2: 0 added, 0 changed, 4 unchanged, 0 removed")
}

func TestBuildWithoutOutputs(t *testing.T) {
	out, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", matrixFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built 4 page(s)")
	assert.NotContains(t, out, "build #")
}

func TestBuildMissingMatrix(t *testing.T) {
	out, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", "/nonexistent/site.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeMatrix)
}

func TestBuildAssemblyFailureWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	matrix := filepath.Join(tmp, "site.yaml")
	require.NoError(t, os.WriteFile(matrix, []byte(`cities:
  - name: Austin
    state: TX
pagesets:
  - kind: city-only
    dimensions: [city]
`), 0o644))
	outDir := filepath.Join(tmp, "dist")

	out, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", matrix, "--out", outDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ build failed")
	assert.Contains(t, out, "UNKNOWN_KIND")
	assert.NoDirExists(t, outDir)
}

func TestBuildManifestFailureWritesNoPages(t *testing.T) {
	tmp := t.TempDir()
	db := filepath.Join(tmp, "missing", "pages.db")
	outDir := filepath.Join(tmp, "dist")

	out, _, err := execute(NewBuildCommand(&RootOptions{Format: "json"}),
		contentDir, "--matrix", matrixFile, "--db", db, "--out", outDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStore, resp.Error.Code)

	assert.NoDirExists(t, outDir)
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory should be cleaned up")
}

func TestBuildReplacesPreviousOutput(t *testing.T) {
	tmp := t.TempDir()
	outDir := filepath.Join(tmp, "dist")
	stale := filepath.Join(outDir, "plumbing", "pricing", "austin-tx.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	_, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", matrixFile, "--out", outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"slug": "/plumbing/pricing/austin-tx"`)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dist", entries[0].Name())
}

func TestPagePath(t *testing.T) {
	dir := filepath.Join("out")
	assert.Equal(t, filepath.Join("out", "index.json"), pagePath(dir, "/"))
	assert.Equal(t, filepath.Join("out", "a", "b.json"), pagePath(dir, "/a/b"))
}
