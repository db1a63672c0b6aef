/*
scope.go - Application scopes and the scope resolver

PURPOSE:
  An expense or revenue category does not list its targets one by one; it
  carries an ApplicationScope, an abstract "who does this apply to"
  descriptor. The resolver expands a scope into the concrete set of shifts
  and persons it denotes as of a date. Expense and revenue generation use
  the exact same resolution.

SCOPE KINDS:
  SPECIFIC_SHIFT         one shift
  SHIFT_PROFILE          every shift bound to a profile on the date
  SPECIFIC_PERSON        one person
  ALL_OWNERS             the active owner roster
  ALL_DRIVERS            the active driver roster
  ALL_ACTIVE_SHIFTS      every shift whose status is active on the date
  SHIFTS_WITH_ATTRIBUTE  every subject with an active assignment of an
                         attribute type on the date

INVARIANT:
  A scope carries exactly the target id its kind requires, nothing more.
  Build scopes through the constructors; Validate is enforced again at
  every persistence and resolution boundary, and a malformed scope is a
  ValidationError, never a guess.

SEE ALSO:
  - assignment.go: Backs SHIFTS_WITH_ATTRIBUTE
  - fleet: Implements the roster/profile/status collaborators
*/
package billing

import (
	"context"
)

// =============================================================================
// APPLICATION SCOPE
// =============================================================================

type ScopeKind string

const (
	ScopeSpecificShift       ScopeKind = "SPECIFIC_SHIFT"
	ScopeShiftProfile        ScopeKind = "SHIFT_PROFILE"
	ScopeSpecificPerson      ScopeKind = "SPECIFIC_PERSON"
	ScopeAllOwners           ScopeKind = "ALL_OWNERS"
	ScopeAllDrivers          ScopeKind = "ALL_DRIVERS"
	ScopeAllActiveShifts     ScopeKind = "ALL_ACTIVE_SHIFTS"
	ScopeShiftsWithAttribute ScopeKind = "SHIFTS_WITH_ATTRIBUTE"
)

// ApplicationScope is a targeting descriptor: a kind plus the single target
// id that kind requires. Use the constructors; a hand-built scope must pass
// Validate before it is stored or resolved.
type ApplicationScope struct {
	Kind            ScopeKind
	ShiftID         ShiftID
	ShiftProfileID  ShiftProfileID
	PersonID        PersonID
	AttributeTypeID AttributeTypeID
}

func ScopeForShift(id ShiftID) ApplicationScope {
	return ApplicationScope{Kind: ScopeSpecificShift, ShiftID: id}
}

func ScopeForProfile(id ShiftProfileID) ApplicationScope {
	return ApplicationScope{Kind: ScopeShiftProfile, ShiftProfileID: id}
}

func ScopeForPerson(id PersonID) ApplicationScope {
	return ApplicationScope{Kind: ScopeSpecificPerson, PersonID: id}
}

func ScopeForAllOwners() ApplicationScope { return ApplicationScope{Kind: ScopeAllOwners} }

func ScopeForAllDrivers() ApplicationScope { return ApplicationScope{Kind: ScopeAllDrivers} }

func ScopeForActiveShifts() ApplicationScope { return ApplicationScope{Kind: ScopeAllActiveShifts} }

func ScopeForAttribute(id AttributeTypeID) ApplicationScope {
	return ApplicationScope{Kind: ScopeShiftsWithAttribute, AttributeTypeID: id}
}

// Validate checks that exactly the target the kind requires is populated.
func (s ApplicationScope) Validate() error {
	var want, got int

	switch s.Kind {
	case ScopeSpecificShift, ScopeShiftProfile, ScopeSpecificPerson, ScopeShiftsWithAttribute:
		want = 1
	case ScopeAllOwners, ScopeAllDrivers, ScopeAllActiveShifts:
		want = 0
	default:
		return &ValidationError{Field: "scope.kind", Message: "unknown scope kind " + string(s.Kind)}
	}

	if s.ShiftID != "" {
		got++
		if s.Kind != ScopeSpecificShift {
			return &ValidationError{Field: "scope.shift_id", Message: "shift id is only valid for SPECIFIC_SHIFT"}
		}
	}
	if s.ShiftProfileID != "" {
		got++
		if s.Kind != ScopeShiftProfile {
			return &ValidationError{Field: "scope.shift_profile_id", Message: "shift profile id is only valid for SHIFT_PROFILE"}
		}
	}
	if s.PersonID != "" {
		got++
		if s.Kind != ScopeSpecificPerson {
			return &ValidationError{Field: "scope.person_id", Message: "person id is only valid for SPECIFIC_PERSON"}
		}
	}
	if s.AttributeTypeID != "" {
		got++
		if s.Kind != ScopeShiftsWithAttribute {
			return &ValidationError{Field: "scope.attribute_type_id", Message: "attribute type id is only valid for SHIFTS_WITH_ATTRIBUTE"}
		}
	}

	if got != want {
		return &ValidationError{Field: "scope", Message: "scope " + string(s.Kind) + " requires exactly its own target id"}
	}
	return nil
}

// =============================================================================
// SCOPE MEMBERS - Resolution result
// =============================================================================

type MemberKind string

const (
	MemberShift  MemberKind = "shift"
	MemberPerson MemberKind = "person"
	MemberCab    MemberKind = "cab"
)

// ScopeMember is one concrete target a scope resolves to.
type ScopeMember struct {
	Kind MemberKind
	ID   string
}

func shiftMember(id ShiftID) ScopeMember   { return ScopeMember{Kind: MemberShift, ID: string(id)} }
func personMember(id PersonID) ScopeMember { return ScopeMember{Kind: MemberPerson, ID: string(id)} }

// Subject converts a shift or cab member to a billing subject. Person
// members have no subject form.
func (m ScopeMember) Subject() (Subject, bool) {
	switch m.Kind {
	case MemberShift:
		return ShiftSubject(ShiftID(m.ID)), true
	case MemberCab:
		return CabSubject(CabID(m.ID)), true
	default:
		return Subject{}, false
	}
}

// =============================================================================
// EXTERNAL COLLABORATORS
// =============================================================================

// ShiftDirectory knows which shifts exist and which are active on a date.
type ShiftDirectory interface {
	ShiftExists(ctx context.Context, id ShiftID) (bool, error)
	ActiveShifts(ctx context.Context, on Date) ([]ShiftID, error)
}

// PersonnelDirectory enumerates the active roster per role.
type PersonnelDirectory interface {
	ActiveOwners(ctx context.Context) ([]PersonID, error)
	ActiveDrivers(ctx context.Context) ([]PersonID, error)
}

// ShiftProfileHistory knows which shifts were bound to a profile on a date.
type ShiftProfileHistory interface {
	ShiftsInProfile(ctx context.Context, id ShiftProfileID, on Date) ([]ShiftID, error)
}

// =============================================================================
// SCOPE RESOLVER
// =============================================================================

type ScopeResolver struct {
	Shifts      ShiftDirectory
	People      PersonnelDirectory
	Profiles    ShiftProfileHistory
	Assignments AssignmentStore
}

func NewScopeResolver(shifts ShiftDirectory, people PersonnelDirectory, profiles ShiftProfileHistory, assignments AssignmentStore) *ScopeResolver {
	return &ScopeResolver{Shifts: shifts, People: people, Profiles: profiles, Assignments: assignments}
}

// Resolve expands the scope into its concrete members as of the date.
// The scope must already satisfy the kind/target invariant; Resolve
// re-checks and fails fast rather than guessing an interpretation.
func (r *ScopeResolver) Resolve(ctx context.Context, scope ApplicationScope, asOf Date) ([]ScopeMember, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	switch scope.Kind {
	case ScopeSpecificShift:
		return []ScopeMember{shiftMember(scope.ShiftID)}, nil

	case ScopeSpecificPerson:
		return []ScopeMember{personMember(scope.PersonID)}, nil

	case ScopeShiftProfile:
		shifts, err := r.Profiles.ShiftsInProfile(ctx, scope.ShiftProfileID, asOf)
		if err != nil {
			return nil, err
		}
		return shiftMembers(shifts), nil

	case ScopeAllOwners:
		persons, err := r.People.ActiveOwners(ctx)
		if err != nil {
			return nil, err
		}
		return personMembers(persons), nil

	case ScopeAllDrivers:
		persons, err := r.People.ActiveDrivers(ctx)
		if err != nil {
			return nil, err
		}
		return personMembers(persons), nil

	case ScopeAllActiveShifts:
		shifts, err := r.Shifts.ActiveShifts(ctx, asOf)
		if err != nil {
			return nil, err
		}
		return shiftMembers(shifts), nil

	case ScopeShiftsWithAttribute:
		subjects, err := r.Assignments.SubjectsWithAttribute(ctx, scope.AttributeTypeID, asOf)
		if err != nil {
			return nil, err
		}
		members := make([]ScopeMember, 0, len(subjects))
		for _, s := range subjects {
			switch s.Kind {
			case SubjectShift:
				members = append(members, shiftMember(ShiftID(s.ID)))
			case SubjectCab:
				members = append(members, ScopeMember{Kind: MemberCab, ID: s.ID})
			}
		}
		return members, nil
	}

	return nil, &ValidationError{Field: "scope.kind", Message: "unknown scope kind " + string(scope.Kind)}
}

func shiftMembers(ids []ShiftID) []ScopeMember {
	members := make([]ScopeMember, 0, len(ids))
	for _, id := range ids {
		members = append(members, shiftMember(id))
	}
	return members
}

func personMembers(ids []PersonID) []ScopeMember {
	members := make([]ScopeMember, 0, len(ids))
	for _, id := range ids {
		members = append(members, personMember(id))
	}
	return members
}
