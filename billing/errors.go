/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Structured errors carry context and unwrap to sentinels, so callers can
  match with errors.Is or type-assert for details.

ERROR CATEGORIES:
  1. Not-found errors - unknown attribute type, subject, or record
  2. Validation errors - caller-input problems (inverted ranges, missing
     required values, malformed scopes)
  3. Overlap errors - interval conflicts on assignment or schedule writes
  4. Immutable-history errors - attempted delete of a historical record

  None of these are transient: there is no retry path. A failed write means
  the caller's input conflicts with stored state or is invalid.

USAGE:
  var ov *billing.OverlapError
  if errors.As(err, &ov) {
      log.Printf("conflicts with %v", ov.ConflictIDs)
  }

SEE ALSO:
  - assignment.go, schedule.go: Produce overlap and history errors
  - scope.go: Produces scope validation errors
*/
package billing

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for caller-input problems.
	ErrValidation = errors.New("validation failed")

	// ErrOverlap is returned when a write would produce overlapping
	// intervals for the same exclusivity key.
	ErrOverlap = errors.New("interval overlap")

	// ErrImmutableHistory is returned when deleting a record whose start
	// date is already in the past. History is closed, never erased.
	ErrImmutableHistory = errors.New("record is historical and cannot be deleted")

	// ErrDuplicateCode is returned when an attribute type code is taken.
	ErrDuplicateCode = errors.New("duplicate attribute type code")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which record was missing.
type NotFoundError struct {
	Kind string // "attribute_type", "assignment", "schedule_entry", "subject"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
func (e *ValidationError) Unwrap() error { return ErrValidation }

// OverlapError reports an interval conflict. Subject is nil for cost
// schedule conflicts, which are keyed by attribute type alone.
type OverlapError struct {
	AttributeTypeID AttributeTypeID
	Subject         *Subject
	Interval        DateInterval
	ConflictIDs     []string
}

func (e *OverlapError) Error() string {
	key := string(e.AttributeTypeID)
	if e.Subject != nil {
		key = e.Subject.Key() + "/" + key
	}
	return fmt.Sprintf("interval %s overlaps existing record(s) %s for %s",
		e.Interval, strings.Join(e.ConflictIDs, ", "), key)
}
func (e *OverlapError) Unwrap() error { return ErrOverlap }

// ImmutableHistoryError reports a refused delete of a historical record.
type ImmutableHistoryError struct {
	RecordID string
	Start    Date
}

func (e *ImmutableHistoryError) Error() string {
	return fmt.Sprintf("record %s started %s and is part of history; close it with an end date instead",
		e.RecordID, e.Start)
}
func (e *ImmutableHistoryError) Unwrap() error { return ErrImmutableHistory }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrDuplicateCode)
}

// IsConflict returns true if the error is an overlap or history conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOverlap) || errors.Is(err, ErrImmutableHistory)
}
