// Package repository persists campaigns, recipients, sender profiles, and
// contacts in SQLite. Recipient status changes go through compare-and-swap
// updates keyed on the expected current status, so a concurrent action on
// the same row surfaces as ErrConflict instead of silently winning.
package repository

import "errors"

var (
	// ErrNotFound means the row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row was not in the expected state; the caller
	// lost a race or is acting on stale data.
	ErrConflict = errors.New("state conflict")
	// ErrInvalidTransition means the requested status change is not an edge
	// of the lifecycle at all.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrImmutable means the row is in a terminal state and cannot change.
	ErrImmutable = errors.New("row is immutable")
)
