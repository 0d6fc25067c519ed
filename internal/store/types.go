package store

import (
	"errors"

	"github.com/roach88/pseo/internal/ir"
)

// PageStatus classifies a page relative to the previous build.
type PageStatus string

const (
	StatusAdded     PageStatus = "added"
	StatusChanged   PageStatus = "changed"
	StatusUnchanged PageStatus = "unchanged"
	StatusRemoved   PageStatus = "removed"
)

// ValidStatuses defines the allowed page statuses.
var ValidStatuses = map[PageStatus]bool{
	StatusAdded:     true,
	StatusChanged:   true,
	StatusUnchanged: true,
	StatusRemoved:   true,
}

// ErrNotFound is returned when a slug or build does not exist.
var ErrNotFound = errors.New("not found")

// BuildStats counts pages by status for one build.
type BuildStats struct {
	Pages     int `json:"pages"`
	Added     int `json:"added"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
}

// Build is one recorded run of the generator.
type Build struct {
	ID            string     `json:"id"`
	Seq           int64      `json:"seq"`
	LibraryHash   string     `json:"library_hash"`
	EngineVersion string     `json:"engine_version"`
	SchemaVersion string     `json:"schema_version"`
	Stats         BuildStats `json:"stats"`
}

// PageRecord is a manifest row.
type PageRecord struct {
	Slug          string     `json:"slug"`
	Kind          string     `json:"kind"`
	Key           ir.PageKey `json:"key"`
	ContentHash   string     `json:"content_hash"`
	Page          *ir.Page   `json:"page,omitempty"`
	Status        PageStatus `json:"status"`
	FirstBuildSeq int64      `json:"first_build_seq"`
	LastBuildSeq  int64      `json:"last_build_seq"`
}

// PageFilter narrows ListPages. Zero values match everything.
type PageFilter struct {
	Kind   string
	Status PageStatus

	// WithBody loads the full page JSON. Listings skip it by default.
	WithBody bool
}
