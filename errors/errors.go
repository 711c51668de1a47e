// Package errors provides error handling for the taxonomy engine.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for CLI users
//
// Usage:
//
//	if err := store.Consolidate(); err != nil {
//	    return errors.Wrap(err, "rebuild consolidated view")
//	}
//
//	return errors.WithHint(err, "run `taxonomy validate` to list offending files")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Join         = crdb.Join
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors shared across the engine.
// Wrap or Mark them to add context while keeping errors.Is working.
var (
	// ErrNotFound indicates a record, file or directory does not exist
	ErrNotFound = New("not found")

	// ErrInvalid indicates a record failed schema validation
	ErrInvalid = New("invalid attribute record")

	// ErrDuplicate indicates a candidate collides with an existing library entry
	ErrDuplicate = New("duplicate attribute")

	// ErrConflict indicates the on-disk library holds the same code twice
	ErrConflict = New("attribute code conflict")

	// ErrRolledBack indicates a batch write was undone after a failed revalidation
	ErrRolledBack = New("batch rolled back")

	// ErrNotConfigured indicates an optional collaborator is missing its configuration
	ErrNotConfigured = New("not configured")
)

// IsInvalid reports whether err is or wraps ErrInvalid
func IsInvalid(err error) bool {
	return err != nil && Is(err, ErrInvalid)
}

// IsRolledBack reports whether err is or wraps ErrRolledBack
func IsRolledBack(err error) bool {
	return err != nil && Is(err, ErrRolledBack)
}

// NewInvalidf creates a schema validation error marked as ErrInvalid
func NewInvalidf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalid)
}

// NewConflictf creates a conflict error marked as ErrConflict
func NewConflictf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrConflict)
}
