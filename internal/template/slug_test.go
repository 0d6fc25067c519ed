package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Austin", "austin"},
		{"São Paulo", "sao-paulo"},
		{"  HVAC & Heating  ", "hvac-heating"},
		{"St. Louis", "st-louis"},
		{"Winston-Salem", "winston-salem"},
		{"Coeur d'Alene", "coeur-d-alene"},
		{"QuickBooks Online 2", "quickbooks-online-2"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyPath(t *testing.T) {
	assert.Equal(t, "/plumbing/pricing/st-louis-mo", SlugifyPath("/Plumbing/Pricing/St. Louis MO"))
	assert.Equal(t, "/a/b", SlugifyPath("a//b/"))
	assert.Equal(t, "/", SlugifyPath(""))
}
