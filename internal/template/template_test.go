package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	vars := map[string]string{
		"city":  "Austin",
		"state": "TX",
		"brand": "Acme",
		"empty": "",
	}

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"plain text", "no tokens here", "no tokens here"},
		{"single", "Plumbers in {{city}}", "Plumbers in Austin"},
		{"repeated", "{{city}}, {{state}}. {{city}}!", "Austin, TX. Austin!"},
		{"inner whitespace", "{{ city }}", "Austin"},
		{"fallback unused", "{{brand|us}}", "Acme"},
		{"fallback used", "Works with {{integration|your tools}}", "Works with your tools"},
		{"fallback on empty value", "{{empty|n/a}}", "n/a"},
		{"empty fallback", "a{{integration|}}b", "ab"},
		{"uppercase is not a token", "{{City}}", "{{City}}"},
		{"single braces untouched", "{city}", "{city}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.text, vars, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderSinglePass(t *testing.T) {
	vars := map[string]string{"city": "{{brand}}", "brand": "Acme"}

	out, err := Render("{{city}}", vars, Options{})
	require.NoError(t, err)
	assert.Equal(t, "{{brand}}", out)
}

func TestRenderStrictReportsAllMissing(t *testing.T) {
	_, err := Render("{{a}} {{b}} {{a}} {{c|ok}}", map[string]string{}, Options{})
	require.Error(t, err)

	var ue *UnresolvedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, []string{"a", "b"}, ue.Names)
	assert.Contains(t, err.Error(), "a, b")
}

func TestRenderLenientKeepsTokens(t *testing.T) {
	out, err := Render("Hi {{ who }} from {{city}}", map[string]string{"city": "Reno"}, Options{Lenient: true})
	require.NoError(t, err)
	assert.Equal(t, "Hi {{ who }} from Reno", out)
}

func TestRenderFields(t *testing.T) {
	fields := map[string]string{
		"headline": "{{city}} pros",
		"body":     "Call {{brand}}",
	}

	out, err := RenderFields(fields, map[string]string{"city": "Waco", "brand": "Acme"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"headline": "Waco pros", "body": "Call Acme"}, out)

	_, err = RenderFields(fields, map[string]string{"city": "Waco"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "body"`)
}

func TestVariables(t *testing.T) {
	vars := Variables("{{city}} {{brand|us}} {{city}} {{ state }} {{brand}}")

	assert.Equal(t, []Variable{
		{Name: "city"},
		{Name: "brand", HasFallback: false},
		{Name: "state"},
	}, vars)

	assert.Equal(t, []Variable{{Name: "x", HasFallback: true}}, Variables("{{x|a}}{{x|b}}"))
	assert.Empty(t, Variables("nothing"))
}
