/*
schedule.go - Historical pricing per attribute type

PURPOSE:
  Keeps the dated price list for each attribute type: which price and
  billing unit applied during which interval. Mirrors the assignment
  store's overlap discipline keyed by attribute type instead of subject.

INVARIANTS:
  - Validity intervals never overlap for the same attribute type.
  - (attribute type, effective-from) is unique; effective-from is the
    natural key and cannot change after creation.
  - Entries are only deletable while effective-from is still in the
    future; past pricing is history and can only be closed.

FALLBACK POLICY (documented, possibly surprising):
  - CostAmount with no covering entry returns zero: unpriced attributes
    are billed as free, not rejected.
  - BillingUnitOn with no covering entry defaults to MONTHLY.

SEE ALSO:
  - charges.go: Looks prices up at each line item's clipped start date
*/
package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COST SCHEDULE ENTRY
// =============================================================================

// CostScheduleEntry is a date-bounded price + billing unit for one
// attribute type. Validity.Start is the immutable natural key.
type CostScheduleEntry struct {
	ID              ScheduleEntryID
	AttributeTypeID AttributeTypeID
	Price           decimal.Decimal
	Unit            BillingUnit
	Validity        DateInterval
	CreatedAt       time.Time
}

// ActiveOn reports whether the entry covers the given date.
func (e CostScheduleEntry) ActiveOn(d Date) bool { return e.Validity.Contains(d) }

// =============================================================================
// SCHEDULE STORE - Persistence interface
// =============================================================================

type ScheduleStore interface {
	// SaveEntry inserts or replaces the entry. Overlap check and write are
	// one transaction; a conflict surfaces as *OverlapError. Inserting a
	// second entry with the same (attribute type, effective-from) also
	// conflicts.
	SaveEntry(ctx context.Context, e CostScheduleEntry) error

	// GetEntry returns nil without error when the id is unknown.
	GetEntry(ctx context.Context, id ScheduleEntryID) (*CostScheduleEntry, error)

	// EntryActiveOn returns the entry covering the date, or nil.
	EntryActiveOn(ctx context.Context, attributeTypeID AttributeTypeID, on Date) (*CostScheduleEntry, error)

	// EntriesFor returns all entries for the attribute type, effective-from
	// descending.
	EntriesFor(ctx context.Context, attributeTypeID AttributeTypeID) ([]CostScheduleEntry, error)

	DeleteEntry(ctx context.Context, id ScheduleEntryID) error
}

// =============================================================================
// SCHEDULE SERVICE
// =============================================================================

type ScheduleService struct {
	Store ScheduleStore
	Types AttributeTypeStore

	// Clock supplies "today" for the delete-protection rule.
	Clock func() Date
}

func NewScheduleService(store ScheduleStore, types AttributeTypeStore) *ScheduleService {
	return &ScheduleService{Store: store, Types: types}
}

func (s *ScheduleService) today() Date {
	if s.Clock != nil {
		return s.Clock()
	}
	return Today()
}

// CreateEntryInput is the request for a new schedule entry.
type CreateEntryInput struct {
	ID              ScheduleEntryID
	AttributeTypeID AttributeTypeID
	Price           decimal.Decimal
	Unit            BillingUnit
	EffectiveFrom   Date
	EffectiveTo     *Date // nil = open-ended
}

func (s *ScheduleService) Create(ctx context.Context, input CreateEntryInput) (*CostScheduleEntry, error) {
	if input.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	if !input.Unit.Valid() {
		return nil, &ValidationError{Field: "unit", Message: "billing unit must be MONTHLY or DAILY"}
	}
	validity := DateInterval{Start: input.EffectiveFrom, End: input.EffectiveTo}
	if err := validity.Validate(); err != nil {
		return nil, err
	}

	at, err := s.Types.GetType(ctx, input.AttributeTypeID)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, &NotFoundError{Kind: "attribute_type", ID: string(input.AttributeTypeID)}
	}

	e := CostScheduleEntry{
		ID:              input.ID,
		AttributeTypeID: input.AttributeTypeID,
		Price:           input.Price,
		Unit:            input.Unit,
		Validity:        validity,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Store.SaveEntry(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEntryInput carries the mutable fields. EffectiveFrom is absent on
// purpose: it is the natural key.
type UpdateEntryInput struct {
	Price       *decimal.Decimal
	Unit        *BillingUnit
	EffectiveTo *Date
}

func (s *ScheduleService) Update(ctx context.Context, id ScheduleEntryID, input UpdateEntryInput) (*CostScheduleEntry, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, &ValidationError{Field: "price", Message: "price must not be negative"}
		}
		e.Price = *input.Price
	}
	if input.Unit != nil {
		if !input.Unit.Valid() {
			return nil, &ValidationError{Field: "unit", Message: "billing unit must be MONTHLY or DAILY"}
		}
		e.Unit = *input.Unit
	}
	if input.EffectiveTo != nil {
		e.Validity.End = input.EffectiveTo
	}
	if err := e.Validity.Validate(); err != nil {
		return nil, err
	}
	if err := s.Store.SaveEntry(ctx, *e); err != nil {
		return nil, err
	}
	return e, nil
}

// End closes the entry's validity on the given date.
func (s *ScheduleService) End(ctx context.Context, id ScheduleEntryID, to Date) (*CostScheduleEntry, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if to.Before(e.Validity.Start) {
		return nil, &ValidationError{Field: "effective_to", Message: "effective-to is before effective-from"}
	}
	e.Validity.End = &to
	if err := s.Store.SaveEntry(ctx, *e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an entry whose pricing has not taken effect yet.
func (s *ScheduleService) Delete(ctx context.Context, id ScheduleEntryID) error {
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if e.Validity.Start.Before(s.today()) {
		return &ImmutableHistoryError{RecordID: string(id), Start: e.Validity.Start}
	}
	return s.Store.DeleteEntry(ctx, id)
}

// GetActiveOn returns the entry covering the date, or nil when pricing is
// not configured for that date.
func (s *ScheduleService) GetActiveOn(ctx context.Context, attributeTypeID AttributeTypeID, on Date) (*CostScheduleEntry, error) {
	return s.Store.EntryActiveOn(ctx, attributeTypeID, on)
}

// History returns all entries for the attribute type, newest first.
func (s *ScheduleService) History(ctx context.Context, attributeTypeID AttributeTypeID) ([]CostScheduleEntry, error) {
	return s.Store.EntriesFor(ctx, attributeTypeID)
}

// CostAmount returns the price covering the date. Missing pricing is
// treated as free: the result is zero, not an error.
func (s *ScheduleService) CostAmount(ctx context.Context, attributeTypeID AttributeTypeID, on Date) (decimal.Decimal, error) {
	e, err := s.Store.EntryActiveOn(ctx, attributeTypeID, on)
	if err != nil {
		return decimal.Zero, err
	}
	if e == nil {
		return decimal.Zero, nil
	}
	return e.Price, nil
}

// BillingUnitOn returns the billing unit covering the date, defaulting to
// MONTHLY when no entry covers it.
func (s *ScheduleService) BillingUnitOn(ctx context.Context, attributeTypeID AttributeTypeID, on Date) (BillingUnit, error) {
	e, err := s.Store.EntryActiveOn(ctx, attributeTypeID, on)
	if err != nil {
		return BillingMonthly, err
	}
	if e == nil {
		return BillingMonthly, nil
	}
	return e.Unit, nil
}

func (s *ScheduleService) get(ctx context.Context, id ScheduleEntryID) (*CostScheduleEntry, error) {
	e, err := s.Store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &NotFoundError{Kind: "schedule_entry", ID: string(id)}
	}
	return e, nil
}
