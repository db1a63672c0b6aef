// Package fleet implements the taxi back office around the billing engine:
// cabs, drivers and owners, shifts, shift profiles, and the expense/revenue
// categories that carry application scopes.
package fleet

import (
	"context"

	"github.com/cabfleet/billing-engine/billing"
)

// =============================================================================
// ROSTER ENTITIES
// =============================================================================

// Cab is a vehicle in the fleet.
type Cab struct {
	ID     billing.CabID
	Number string // fleet call number, e.g. "214"
	Plate  string
	Make   string
	Model  string
	Active bool
}

type PersonRole string

const (
	RoleOwner  PersonRole = "owner"
	RoleDriver PersonRole = "driver"
)

// Person is an owner or driver on the roster.
type Person struct {
	ID     billing.PersonID
	Name   string
	Role   PersonRole
	Active bool
}

type ShiftStatus string

const (
	ShiftActive    ShiftStatus = "active"
	ShiftSuspended ShiftStatus = "suspended"
	ShiftRetired   ShiftStatus = "retired"
)

// Shift is a recurring driving slot on a cab (day shift, night shift).
// Operating bounds when the shift exists; Status is its current state.
type Shift struct {
	ID        billing.ShiftID
	CabID     billing.CabID
	Name      string // e.g. "214 / day"
	Status    ShiftStatus
	Operating billing.DateInterval
}

// ActiveOn reports whether the shift counts as active on the date.
func (s Shift) ActiveOn(d billing.Date) bool {
	return s.Status == ShiftActive && s.Operating.Contains(d)
}

// ShiftProfile groups shifts for bulk targeting (e.g. "airport fleet").
type ShiftProfile struct {
	ID   billing.ShiftProfileID
	Name string
}

// ProfileMembership binds a shift to a profile for a date interval.
type ProfileMembership struct {
	ID        string
	ProfileID billing.ShiftProfileID
	ShiftID   billing.ShiftID
	Interval  billing.DateInterval
}

// =============================================================================
// EXPENSE / REVENUE CATEGORIES
// =============================================================================

// ExpenseCategory is a cost bucket targeted by an application scope.
type ExpenseCategory struct {
	ID     string
	Code   string
	Name   string
	Scope  billing.ApplicationScope
	Active bool
}

func (c ExpenseCategory) Validate() error {
	if c.Code == "" {
		return &billing.ValidationError{Field: "code", Message: "code is required"}
	}
	return c.Scope.Validate()
}

// RevenueCategory mirrors ExpenseCategory for the revenue side; both share
// the same scope semantics and the same resolver.
type RevenueCategory struct {
	ID     string
	Code   string
	Name   string
	Scope  billing.ApplicationScope
	Active bool
}

func (c RevenueCategory) Validate() error {
	if c.Code == "" {
		return &billing.ValidationError{Field: "code", Message: "code is required"}
	}
	return c.Scope.Validate()
}

// =============================================================================
// STORE - Persistence interface for the roster
// =============================================================================

type Store interface {
	SaveCab(ctx context.Context, c Cab) error
	GetCab(ctx context.Context, id billing.CabID) (*Cab, error)
	ListCabs(ctx context.Context) ([]Cab, error)

	SavePerson(ctx context.Context, p Person) error
	GetPerson(ctx context.Context, id billing.PersonID) (*Person, error)
	ListPersons(ctx context.Context) ([]Person, error)
	ActivePersons(ctx context.Context, role PersonRole) ([]billing.PersonID, error)

	SaveShift(ctx context.Context, s Shift) error
	GetShift(ctx context.Context, id billing.ShiftID) (*Shift, error)
	ListShifts(ctx context.Context) ([]Shift, error)
	ActiveShifts(ctx context.Context, on billing.Date) ([]billing.ShiftID, error)

	SaveProfile(ctx context.Context, p ShiftProfile) error
	ListProfiles(ctx context.Context) ([]ShiftProfile, error)
	SaveMembership(ctx context.Context, m ProfileMembership) error
	ShiftsInProfile(ctx context.Context, id billing.ShiftProfileID, on billing.Date) ([]billing.ShiftID, error)

	SaveExpenseCategory(ctx context.Context, c ExpenseCategory) error
	ListExpenseCategories(ctx context.Context) ([]ExpenseCategory, error)
	SaveRevenueCategory(ctx context.Context, c RevenueCategory) error
	ListRevenueCategories(ctx context.Context) ([]RevenueCategory, error)
}

// =============================================================================
// DIRECTORY - Adapts the roster to the billing engine's collaborator
// interfaces (ShiftDirectory, PersonnelDirectory, ShiftProfileHistory,
// SubjectDirectory).
// =============================================================================

type Directory struct {
	Store Store
}

func NewDirectory(store Store) *Directory { return &Directory{Store: store} }

func (d *Directory) ShiftExists(ctx context.Context, id billing.ShiftID) (bool, error) {
	s, err := d.Store.GetShift(ctx, id)
	if err != nil {
		return false, err
	}
	return s != nil, nil
}

func (d *Directory) ActiveShifts(ctx context.Context, on billing.Date) ([]billing.ShiftID, error) {
	return d.Store.ActiveShifts(ctx, on)
}

func (d *Directory) ActiveOwners(ctx context.Context) ([]billing.PersonID, error) {
	return d.Store.ActivePersons(ctx, RoleOwner)
}

func (d *Directory) ActiveDrivers(ctx context.Context) ([]billing.PersonID, error) {
	return d.Store.ActivePersons(ctx, RoleDriver)
}

func (d *Directory) ShiftsInProfile(ctx context.Context, id billing.ShiftProfileID, on billing.Date) ([]billing.ShiftID, error) {
	return d.Store.ShiftsInProfile(ctx, id, on)
}

func (d *Directory) SubjectExists(ctx context.Context, subject billing.Subject) (bool, error) {
	switch subject.Kind {
	case billing.SubjectShift:
		s, err := d.Store.GetShift(ctx, billing.ShiftID(subject.ID))
		if err != nil {
			return false, err
		}
		return s != nil, nil
	case billing.SubjectCab:
		c, err := d.Store.GetCab(ctx, billing.CabID(subject.ID))
		if err != nil {
			return false, err
		}
		return c != nil, nil
	default:
		return false, nil
	}
}

// Compile-time checks against the billing collaborator interfaces.
var (
	_ billing.ShiftDirectory      = (*Directory)(nil)
	_ billing.PersonnelDirectory  = (*Directory)(nil)
	_ billing.ShiftProfileHistory = (*Directory)(nil)
	_ billing.SubjectDirectory    = (*Directory)(nil)
)
