package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidContent(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Content valid: 1 layout(s), 4 pool(s), 7 variant(s)")
	assert.Contains(t, out, "matrix must supply: intent_name, vertical_name")
}

func TestValidateValidContentJSON(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), contentDir)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Len(t, result.LibraryHash, 64)
	assert.Equal(t, 7, result.Variants)
	assert.Equal(t, []string{"intent_name", "vertical_name"}, result.Requires)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E003")
}

func TestValidateReportsEveryIssue(t *testing.T) {
	dir := writeContent(t, `package content

layout: page: {
	slug:  "/{{city_slug}}"
	title: "{{city}}"
	slots: ["hero", "faq"]
}

pool: default: hero: {
	mode: "merge"
	variants: [{id: "a", text: "x"}]
}

pool: default: faq: [{id: "q", text: "x"}, {id: "q", text: "y"}]
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ content library invalid")
	assert.Contains(t, out, "E104") // invalid mode
	assert.Contains(t, out, "E102") // duplicate variant id
	assert.Contains(t, out, "E108") // hero and faq cannot resolve
}

func TestValidateIssuesJSON(t *testing.T) {
	dir := writeContent(t, `package content

layout: page: {
	slug:  "/{{city_slug}}"
	title: "{{city}}"
	slots: ["hero"]
}
`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var data struct {
		Issues []Issue `json:"issues"`
	}
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E108", resp.Error.Code)
	require.Len(t, data.Issues, 1)
	assert.Equal(t, "layout.page.slots.hero", data.Issues[0].Field)
	assert.Positive(t, data.Issues[0].Line)
}
