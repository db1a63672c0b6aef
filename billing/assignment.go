/*
assignment.go - Temporal attribute assignments

PURPOSE:
  Records which attribute applies to which subject (cab or shift) during
  which dates. The one hard rule: for a fixed (subject, attribute type)
  pair, no two assignment intervals may overlap. An open-ended assignment
  (no end date) extends to +infinity for the comparison.

LIFECYCLE:
  Assign  -> creates a record after validation and an atomic overlap check
  Update  -> re-runs the overlap check excluding the record itself
  End     -> one-directional close; an ended record never reopens
  Delete  -> only while the start date is still in the future; anything
             that has begun is audit history and can only be closed

CONCURRENCY:
  The overlap check and the write must not be separable. The store
  interface makes SaveAssignment responsible for both inside a single
  transaction, so two concurrent writers for the same key cannot both
  succeed with overlapping intervals.

SEE ALSO:
  - charges.go: Consumes assignment history
  - scope.go: SHIFTS_WITH_ATTRIBUTE resolves through this store
  - store/memory.go, store/sqlite: Implementations
*/
package billing

import (
	"context"
	"time"
)

// =============================================================================
// TEMPORAL ASSIGNMENT
// =============================================================================

// TemporalAssignment is a date-bounded record that an attribute applies to
// a subject. Value is only meaningful when the attribute type requires one.
type TemporalAssignment struct {
	ID              AssignmentID
	Subject         Subject
	AttributeTypeID AttributeTypeID
	Value           string
	Interval        DateInterval
	Notes           string
	CreatedAt       time.Time
}

// ActiveOn reports whether the assignment covers the given date.
func (a TemporalAssignment) ActiveOn(d Date) bool { return a.Interval.Contains(d) }

// =============================================================================
// ASSIGNMENT STORE - Persistence interface
// =============================================================================

type AssignmentStore interface {
	// SaveAssignment inserts or replaces the assignment. The overlap check
	// for the (subject, attribute type) pair and the write happen in one
	// transaction; a conflict surfaces as *OverlapError naming the
	// conflicting record ids. The record's own id is excluded from the
	// check, so updates re-validate naturally.
	SaveAssignment(ctx context.Context, a TemporalAssignment) error

	// GetAssignment returns nil without error when the id is unknown.
	GetAssignment(ctx context.Context, id AssignmentID) (*TemporalAssignment, error)

	// ActiveOn returns the assignment of the given attribute type covering
	// the date, or nil. The overlap invariant guarantees at most one.
	ActiveOn(ctx context.Context, subject Subject, attributeTypeID AttributeTypeID, on Date) (*TemporalAssignment, error)

	// ActiveAssignments returns every assignment covering the date for the
	// subject, across all attribute types.
	ActiveAssignments(ctx context.Context, subject Subject, on Date) ([]TemporalAssignment, error)

	// History returns all assignments for the subject, start date descending.
	History(ctx context.Context, subject Subject) ([]TemporalAssignment, error)

	// SubjectsWithAttribute returns every subject holding an active
	// assignment of the attribute type on the date.
	SubjectsWithAttribute(ctx context.Context, attributeTypeID AttributeTypeID, on Date) ([]Subject, error)

	DeleteAssignment(ctx context.Context, id AssignmentID) error
}

// =============================================================================
// ASSIGNMENT SERVICE
// =============================================================================

// AssignmentService applies the business rules in front of the store.
type AssignmentService struct {
	Store AssignmentStore
	Types AttributeTypeStore

	// Clock supplies "today" for the delete-protection rule. Nil means
	// the real calendar.
	Clock func() Date
}

func NewAssignmentService(store AssignmentStore, types AttributeTypeStore) *AssignmentService {
	return &AssignmentService{Store: store, Types: types}
}

func (s *AssignmentService) today() Date {
	if s.Clock != nil {
		return s.Clock()
	}
	return Today()
}

// AssignInput is the request to create an assignment.
type AssignInput struct {
	ID              AssignmentID
	Subject         Subject
	AttributeTypeID AttributeTypeID
	Value           string
	Start           Date
	End             *Date // nil = open-ended
	Notes           string
}

// Assign validates the input and persists a new assignment. The store runs
// the overlap check atomically with the insert.
func (s *AssignmentService) Assign(ctx context.Context, input AssignInput) (*TemporalAssignment, error) {
	if err := input.Subject.Validate(); err != nil {
		return nil, err
	}
	interval := DateInterval{Start: input.Start, End: input.End}
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	at, err := s.Types.GetType(ctx, input.AttributeTypeID)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, &NotFoundError{Kind: "attribute_type", ID: string(input.AttributeTypeID)}
	}
	if at.RequiresValue && input.Value == "" {
		return nil, &ValidationError{Field: "value", Message: "attribute type " + at.Code + " requires a value"}
	}

	a := TemporalAssignment{
		ID:              input.ID,
		Subject:         input.Subject,
		AttributeTypeID: input.AttributeTypeID,
		Value:           input.Value,
		Interval:        interval,
		Notes:           input.Notes,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Store.SaveAssignment(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAssignmentInput carries the mutable fields. Absent fields are left
// untouched; End distinguishes "unset" (nil pointer) from "clear" via
// ClearEnd.
type UpdateAssignmentInput struct {
	Value    *string
	Start    *Date
	End      *Date
	ClearEnd bool // reopening is only valid while the record is unsaved-future; see Update
	Notes    *string
}

// Update recomputes the effective interval and re-runs the overlap check.
// A closed assignment stays closed: clearing the end date is only allowed
// while the start date is still in the future (the record is not yet
// history).
func (s *AssignmentService) Update(ctx context.Context, id AssignmentID, input UpdateAssignmentInput) (*TemporalAssignment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Value != nil {
		a.Value = *input.Value
	}
	if input.Notes != nil {
		a.Notes = *input.Notes
	}
	if input.Start != nil {
		a.Interval.Start = *input.Start
	}
	if input.ClearEnd {
		if a.Interval.End != nil && !a.Interval.Start.After(s.today()) {
			return nil, &ValidationError{Field: "end", Message: "a closed assignment cannot be reopened; create a new assignment instead"}
		}
		a.Interval.End = nil
	} else if input.End != nil {
		a.Interval.End = input.End
	}

	if err := a.Interval.Validate(); err != nil {
		return nil, err
	}

	at, err := s.Types.GetType(ctx, a.AttributeTypeID)
	if err != nil {
		return nil, err
	}
	if at != nil && at.RequiresValue && a.Value == "" {
		return nil, &ValidationError{Field: "value", Message: "attribute type " + at.Code + " requires a value"}
	}

	if err := s.Store.SaveAssignment(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// End closes the assignment on the given date. Forward-only: the end date
// must not precede the start date, and there is no way back to open.
func (s *AssignmentService) End(ctx context.Context, id AssignmentID, end Date) (*TemporalAssignment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if end.Before(a.Interval.Start) {
		return nil, &ValidationError{Field: "end", Message: "end date is before start date"}
	}
	a.Interval.End = &end
	if err := s.Store.SaveAssignment(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an assignment that has not started yet. Anything whose
// start date is in the past is audit history and fails with
// *ImmutableHistoryError.
func (s *AssignmentService) Delete(ctx context.Context, id AssignmentID) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if a.Interval.Start.Before(s.today()) {
		return &ImmutableHistoryError{RecordID: string(id), Start: a.Interval.Start}
	}
	return s.Store.DeleteAssignment(ctx, id)
}

// GetActive returns the assignment of the attribute type covering the date,
// or nil when the subject holds none.
func (s *AssignmentService) GetActive(ctx context.Context, subject Subject, attributeTypeID AttributeTypeID, on Date) (*TemporalAssignment, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	return s.Store.ActiveOn(ctx, subject, attributeTypeID, on)
}

// ActiveAssignments returns every attribute active on the date.
func (s *AssignmentService) ActiveAssignments(ctx context.Context, subject Subject, on Date) ([]TemporalAssignment, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	return s.Store.ActiveAssignments(ctx, subject, on)
}

// GetHistory returns the subject's full assignment history, newest first.
func (s *AssignmentService) GetHistory(ctx context.Context, subject Subject) ([]TemporalAssignment, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	return s.Store.History(ctx, subject)
}

func (s *AssignmentService) get(ctx context.Context, id AssignmentID) (*TemporalAssignment, error) {
	a, err := s.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Kind: "assignment", ID: string(id)}
	}
	return a, nil
}
