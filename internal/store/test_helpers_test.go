package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pseo/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPage creates a page whose content hash is derived from headline.
func createTestPage(slug, kind, headline string) *ir.Page {
	p := &ir.Page{
		Key:   ir.PageKey{Kind: kind, City: "Austin", Intent: "pricing"},
		Slug:  slug,
		Title: "Title for " + slug,
		Sections: []ir.Section{{
			Slot: "hero",
			Blocks: []ir.Block{{
				VariantID: "hero-a",
				Level:     ir.LevelDefault,
				Fields:    map[string]string{"headline": headline},
			}},
		}},
	}
	p.ContentHash = ir.MustContentHash(p)
	return p
}
