/*
charges.go - Charge calculation for a subject over a period

PURPOSE:
  Computes what a subject owes for a date range by intersecting its
  assignment history with the cost schedule. This is a pure read path:
  nothing here is persisted, and any result can be re-derived at will.

ALGORITHM:
  1. Fetch the subject's full assignment history.
  2. For each assignment overlapping the period, clip it to
     [max(start, periodStart), min(end-or-periodEnd, periodEnd)].
  3. Look up the schedule entry active at the clipped start date ONLY.
     A rate change inside the clipped range does not split the line item;
     the whole item is priced at the starting rate.
  4. No covering entry -> the assignment contributes no line item at all
     (unpriced attributes are free, silently).
  5. DAILY:   amount = price x inclusive day count.
  6. MONTHLY: amount = price x number of calendar months the clipped range
     touches. Touching a month for one day bills the full month; there is
     no pro-rating inside a month. This makes monthly totals non-additive
     when a period is split across a month boundary.

SEE ALSO:
  - assignment.go, schedule.go: The two inputs
  - fleet/chargerun.go: Bulk calculation across a resolved scope
*/
package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES (derived, never persisted)
// =============================================================================

// ChargeLineItem is one priced assignment sub-range.
type ChargeLineItem struct {
	AssignmentID    AssignmentID
	AttributeTypeID AttributeTypeID
	AttributeCode   string
	AttributeName   string
	Value           string
	UnitPrice       decimal.Decimal
	Unit            BillingUnit
	ChargeStart     Date
	ChargeEnd       Date
	ActiveDays      int
	Amount          decimal.Decimal
}

// ChargeStatement is the itemized result for one subject and period.
type ChargeStatement struct {
	Subject     Subject
	PeriodStart Date
	PeriodEnd   Date
	LineItems   []ChargeLineItem
	Total       decimal.Decimal
}

// =============================================================================
// SUBJECT DIRECTORY - External existence check
// =============================================================================

// SubjectDirectory answers whether a cab or shift exists. Implemented by
// the fleet roster; the calculator only needs existence.
type SubjectDirectory interface {
	SubjectExists(ctx context.Context, subject Subject) (bool, error)
}

// =============================================================================
// CHARGE CALCULATOR
// =============================================================================

type ChargeCalculator struct {
	Assignments AssignmentStore
	Schedule    ScheduleStore
	Types       AttributeTypeStore
	Subjects    SubjectDirectory
}

func NewChargeCalculator(assignments AssignmentStore, schedule ScheduleStore, types AttributeTypeStore, subjects SubjectDirectory) *ChargeCalculator {
	return &ChargeCalculator{Assignments: assignments, Schedule: schedule, Types: types, Subjects: subjects}
}

// Calculate produces the itemized charges a subject owes for
// [periodStart, periodEnd]. An unknown subject is a NotFoundError; a
// subject with no assignments in the period yields an empty statement
// with a zero total.
func (c *ChargeCalculator) Calculate(ctx context.Context, subject Subject, periodStart, periodEnd Date) (*ChargeStatement, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	if periodEnd.Before(periodStart) {
		return nil, &ValidationError{Field: "period", Message: "period end is before period start"}
	}

	exists, err := c.Subjects.SubjectExists(ctx, subject)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Kind: "subject", ID: subject.Key()}
	}

	history, err := c.Assignments.History(ctx, subject)
	if err != nil {
		return nil, err
	}

	statement := &ChargeStatement{
		Subject:     subject,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Total:       decimal.Zero,
	}

	for _, a := range history {
		chargeStart, chargeEnd, ok := a.Interval.Clip(periodStart, periodEnd)
		if !ok {
			continue
		}

		// Single price lookup at the clipped start date. A rate change
		// inside the range keeps the starting rate for the whole item.
		entry, err := c.Schedule.EntryActiveOn(ctx, a.AttributeTypeID, chargeStart)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			// Unpriced attribute: no line item, no error.
			continue
		}

		item := ChargeLineItem{
			AssignmentID:    a.ID,
			AttributeTypeID: a.AttributeTypeID,
			Value:           a.Value,
			UnitPrice:       entry.Price,
			Unit:            entry.Unit,
			ChargeStart:     chargeStart,
			ChargeEnd:       chargeEnd,
			ActiveDays:      DaysBetween(chargeStart, chargeEnd) + 1,
			Amount:          lineAmount(entry.Price, entry.Unit, chargeStart, chargeEnd),
		}

		if at, err := c.Types.GetType(ctx, a.AttributeTypeID); err != nil {
			return nil, err
		} else if at != nil {
			item.AttributeCode = at.Code
			item.AttributeName = at.Name
		}

		statement.LineItems = append(statement.LineItems, item)
		statement.Total = statement.Total.Add(item.Amount)
	}

	return statement, nil
}

// lineAmount apportions a price over the clipped sub-range.
func lineAmount(price decimal.Decimal, unit BillingUnit, start, end Date) decimal.Decimal {
	switch unit {
	case BillingDaily:
		days := DaysBetween(start, end) + 1
		return price.Mul(decimal.NewFromInt(int64(days)))
	default:
		// MONTHLY: one full unit per calendar month touched.
		months := MonthsTouched(start, end)
		return price.Mul(decimal.NewFromInt(int64(months)))
	}
}
