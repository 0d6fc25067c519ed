package factory

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes assembly errors.
type ErrorCode string

const (
	// ErrCodeNoPool indicates no level declares a pool for a required slot.
	ErrCodeNoPool ErrorCode = "NO_POOL"

	// ErrCodeEmptyPool indicates the resolved pool has no variants.
	ErrCodeEmptyPool ErrorCode = "EMPTY_POOL"

	// ErrCodeUnknownKind indicates the library has no layout for the page kind.
	ErrCodeUnknownKind ErrorCode = "UNKNOWN_KIND"

	// ErrCodeTemplate indicates variable substitution failed.
	ErrCodeTemplate ErrorCode = "TEMPLATE"

	// ErrCodeDuplicateSlug indicates two pages rendered to the same slug.
	ErrCodeDuplicateSlug ErrorCode = "DUPLICATE_SLUG"
)

// Sentinel errors for errors.Is. Every AssembleError unwraps to one of them
// unless it wraps a lower-level cause.
var (
	ErrNoPool        = errors.New("no pool for slot")
	ErrEmptyPool     = errors.New("resolved pool is empty")
	ErrUnknownKind   = errors.New("unknown page kind")
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// AssembleError describes why a page could not be assembled.
type AssembleError struct {
	Code ErrorCode
	Key  string // PageKey.String()
	Slot string // empty for page-level errors
	Slug string // set once the slug is known
	Err  error
}

func (e *AssembleError) Error() string {
	where := e.Key
	if e.Slug != "" {
		where = e.Slug
	}
	if e.Slot != "" {
		return fmt.Sprintf("%s: %s slot %q: %v", e.Code, where, e.Slot, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, where, e.Err)
}

func (e *AssembleError) Unwrap() error {
	return e.Err
}

// CodeOf returns the AssembleError code carried by err, or "" if none.
func CodeOf(err error) ErrorCode {
	var ae *AssembleError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
