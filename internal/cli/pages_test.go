package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "pages.db")
	_, _, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), contentDir, "--matrix", matrixFile, "--db", db)
	require.NoError(t, err)
	return db
}

func TestPagesText(t *testing.T) {
	db := buildFixture(t)

	out, _, err := execute(NewPagesCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "/plumbing/pricing/austin-tx")
	assert.Contains(t, out, "4 page(s), latest build #1")
}

func TestPagesJSONOrderedBySlug(t *testing.T) {
	db := buildFixture(t)

	out, _, err := execute(NewPagesCommand(&RootOptions{Format: "json"}), "--db", db, "--status", "added")
	require.NoError(t, err)

	var result PagesResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Pages, 4)

	var slugs []string
	for _, p := range result.Pages {
		slugs = append(slugs, p.Slug)
		assert.Nil(t, p.Page, "listing should not load bodies")
	}
	assert.Equal(t, []string{
		"/plumbing/pricing/austin-tx",
		"/plumbing/pricing/dallas-tx",
		"/plumbing/reviews/austin-tx",
		"/plumbing/reviews/dallas-tx",
	}, slugs)
}

func TestPagesStatusFilterEmpty(t *testing.T) {
	db := buildFixture(t)

	out, _, err := execute(NewPagesCommand(&RootOptions{Format: "text"}), "--db", db, "--status", "removed")
	require.NoError(t, err)
	assert.Contains(t, out, "No pages found.")
}

func TestPagesInvalidStatus(t *testing.T) {
	out, _, err := execute(NewPagesCommand(&RootOptions{Format: "text"}), "--db", "pages.db", "--status", "stale")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInvalidFlag)
}

func TestPagesMissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing.db")

	_, _, err := execute(NewPagesCommand(&RootOptions{Format: "text"}), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.NoFileExists(t, db)
}
