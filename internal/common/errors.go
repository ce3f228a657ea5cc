// Package common defines shared constants and sentinel errors used across
// the obrafield client layers. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Transport-level errors.
	ErrorUnavailable  = errors.New("server unavailable")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorRejected means the server refused a pushed row (validation or
	// uniqueness). The row stays pending and is retried on the next cycle.
	ErrorRejected = errors.New("rejected by server")

	// ErrParentNotSynced means a row references a parent that has no server
	// id yet; its push is skipped until the parent has been created remotely.
	ErrParentNotSynced = errors.New("parent entity not synced yet")
)

// ValidationError reports a missing or malformed domain field on a local
// write. It is returned synchronously from Save so the UI can point at the
// offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// ConflictError reports a local unique-constraint violation (e.g. duplicate
// collaborator registration number). Distinguished from other database
// errors by inspecting the driver error, never by string matching.
type ConflictError struct {
	Entity string
	Err    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %v", e.Entity, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }
