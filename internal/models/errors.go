package models

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is when mapping to HTTP status codes.
var (
	// ErrValidation is returned for missing or out-of-range required fields.
	// The operation aborts before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for duplicate unique keys and for mutations
	// against an invoice that is not in a mutable status.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a uniqueness or state conflict.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// SideEffectError wraps a failure in a cascading step (totals recomputation,
// rule evaluation, alert publication) that ran after the primary write
// succeeded. It is logged by the orchestrator and never surfaced through the
// triggering operation's result.
type SideEffectError struct {
	Op  string
	Err error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect %s failed: %v", e.Op, e.Err)
}

func (e *SideEffectError) Unwrap() error { return e.Err }
