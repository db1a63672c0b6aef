/*
Package billing provides the temporal attribute and charge-calculation engine.

PURPOSE:
  This package contains the core machinery of the fleet back office: it
  tracks which cost-bearing attributes (airport license, transponder, ...)
  are assigned to a cab or shift over time, keeps a dated price list per
  attribute, and computes what a subject owes for any date range by
  intersecting assignment intervals, pricing intervals, and the requested
  period. It also resolves application scopes - the targeting descriptors
  that expense and revenue categories share.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal monetary values (never float)
  - BillingUnit: MONTHLY or DAILY price cadence
  - Subject: a tagged reference to either a cab or a shift
  - AttributeType: catalogue entry for an assignable attribute kind

DESIGN PRINCIPLES:
  1. Interval discipline: assignment and pricing records never overlap for
     the same key; the stores enforce this atomically.
  2. Precision: uses decimal.Decimal to avoid floating-point errors.
  3. Pure reads: charge calculation is re-derivable and never persisted.
  4. Tagged references: a Subject is a cab OR a shift, never both, never
     neither.

SEE ALSO:
  - assignment.go: Temporal assignment store
  - schedule.go: Cost schedule
  - charges.go: Charge calculator
  - scope.go: Application scopes and the scope resolver
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// Monetary values are plain decimal.Decimal; MustParseMoney keeps the
// call sites readable.

func MustParseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// BILLING UNIT
// =============================================================================

type BillingUnit string

const (
	BillingMonthly BillingUnit = "MONTHLY"
	BillingDaily   BillingUnit = "DAILY"
)

func (u BillingUnit) Valid() bool {
	return u == BillingMonthly || u == BillingDaily
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AttributeTypeID string
type AssignmentID string
type ScheduleEntryID string
type ShiftID string
type CabID string
type PersonID string
type ShiftProfileID string

// =============================================================================
// SUBJECT - Tagged reference to a cab or a shift
// =============================================================================

type SubjectKind string

const (
	SubjectShift SubjectKind = "shift"
	SubjectCab   SubjectKind = "cab"
)

// Subject identifies what an attribute is assigned to. The kind tag removes
// the "which foreign key is set" ambiguity of a two-column reference.
type Subject struct {
	Kind SubjectKind
	ID   string
}

func ShiftSubject(id ShiftID) Subject { return Subject{Kind: SubjectShift, ID: string(id)} }
func CabSubject(id CabID) Subject     { return Subject{Kind: SubjectCab, ID: string(id)} }

// Key returns a stable string form usable as a storage key.
func (s Subject) Key() string { return string(s.Kind) + ":" + s.ID }

func (s Subject) Validate() error {
	if s.Kind != SubjectShift && s.Kind != SubjectCab {
		return &ValidationError{Field: "subject.kind", Message: "subject kind must be shift or cab"}
	}
	if s.ID == "" {
		return &ValidationError{Field: "subject.id", Message: "subject id is required"}
	}
	return nil
}

func (s Subject) String() string { return s.Key() }

// =============================================================================
// ATTRIBUTE TYPE - Catalogue entry for an assignable attribute kind
// =============================================================================

type AttributeDataType string

const (
	AttrDataNone   AttributeDataType = "none"   // Presence-only (e.g. airport license)
	AttrDataString AttributeDataType = "string" // Free-form value (e.g. transponder serial)
	AttrDataNumber AttributeDataType = "number"
)

// AttributeType is a master-catalogue record. The code is the business key
// and is immutable once created.
type AttributeType struct {
	ID            AttributeTypeID
	Code          string
	Name          string
	Category      string
	DataType      AttributeDataType
	RequiresValue bool
	Active        bool
}

func (at AttributeType) Validate() error {
	if at.Code == "" {
		return &ValidationError{Field: "code", Message: "code is required"}
	}
	if at.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if at.RequiresValue && at.DataType == AttrDataNone {
		return &ValidationError{Field: "data_type", Message: "attribute requiring a value cannot have data type none"}
	}
	return nil
}
