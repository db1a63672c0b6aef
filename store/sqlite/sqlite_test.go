package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
	"github.com/cabfleet/billing-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(year int, month time.Month, day int) billing.Date {
	return billing.NewDate(year, month, day)
}

func dp(year int, month time.Month, day int) *billing.Date {
	date := billing.NewDate(year, month, day)
	return &date
}

// =============================================================================
// ATTRIBUTE TYPES
// =============================================================================

func TestSQLiteAttributeTypes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN an empty catalogue
	at, err := store.GetType(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, at, "unknown id returns nil without error")

	// WHEN saving and re-reading a type
	require.NoError(t, store.SaveType(ctx, billing.AttributeType{
		ID: "attr-1", Code: "AIRPORT_LICENSE", Name: "Airport license",
		Category: "licensing", DataType: billing.AttrDataNone, Active: true,
	}))

	at, err = store.GetType(ctx, "attr-1")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, "AIRPORT_LICENSE", at.Code)
	assert.Equal(t, "licensing", at.Category)
	assert.True(t, at.Active)

	// THEN lookup by code resolves the same row
	byCode, err := store.GetTypeByCode(ctx, "AIRPORT_LICENSE")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, at.ID, byCode.ID)

	// AND upserting the same id updates in place
	require.NoError(t, store.SaveType(ctx, billing.AttributeType{
		ID: "attr-1", Code: "AIRPORT_LICENSE", Name: "Airport operating license",
		DataType: billing.AttrDataNone, Active: false,
	}))
	at, err = store.GetType(ctx, "attr-1")
	require.NoError(t, err)
	assert.Equal(t, "Airport operating license", at.Name)
	assert.False(t, at.Active)
}

func TestSQLiteAttributeTypes_DuplicateCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveType(ctx, billing.AttributeType{
		ID: "attr-1", Code: "AIRPORT_LICENSE", Name: "Airport license",
		DataType: billing.AttrDataNone, Active: true,
	}))

	// A different id reusing the code trips the UNIQUE constraint
	err := store.SaveType(ctx, billing.AttributeType{
		ID: "attr-2", Code: "AIRPORT_LICENSE", Name: "Copycat",
		DataType: billing.AttrDataNone, Active: true,
	})
	assert.ErrorIs(t, err, billing.ErrDuplicateCode)
}

func TestSQLiteAttributeTypes_ListOrderedByCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, at := range []billing.AttributeType{
		{ID: "attr-1", Code: "TRANSPONDER", Name: "Transponder", DataType: billing.AttrDataString, Active: true},
		{ID: "attr-2", Code: "AIRPORT_LICENSE", Name: "Airport license", DataType: billing.AttrDataNone, Active: true},
	} {
		require.NoError(t, store.SaveType(ctx, at))
	}

	types, err := store.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "AIRPORT_LICENSE", types[0].Code)
	assert.Equal(t, "TRANSPONDER", types[1].Code)
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func shiftAssignment(id string, attr billing.AttributeTypeID, iv billing.DateInterval) billing.TemporalAssignment {
	return billing.TemporalAssignment{
		ID:              billing.AssignmentID(id),
		Subject:         billing.ShiftSubject("shift-214-day"),
		AttributeTypeID: attr,
		Interval:        iv,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestSQLiteAssignments_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := shiftAssignment("asg-1", "attr-1", billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.March, 31)))
	a.Value = "TR-8841"
	a.Notes = "installed by garage"
	require.NoError(t, store.SaveAssignment(ctx, a))

	got, err := store.GetAssignment(ctx, "asg-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.Subject, got.Subject)
	assert.Equal(t, "TR-8841", got.Value)
	assert.Equal(t, "installed by garage", got.Notes)
	assert.True(t, got.Interval.Start.Equal(d(2025, time.March, 1)))
	require.NotNil(t, got.Interval.End)
	assert.True(t, got.Interval.End.Equal(d(2025, time.March, 31)))
}

func TestSQLiteAssignments_OpenEndSurvivesRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := shiftAssignment("asg-1", "attr-1", billing.OpenInterval(d(2025, time.March, 1)))
	require.NoError(t, store.SaveAssignment(ctx, a))

	got, err := store.GetAssignment(ctx, "asg-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Interval.End)
}

func TestSQLiteAssignments_OverlapRejectedInTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-1", "attr-1", billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.March, 31)))))

	// WHEN a second interval for the same key crosses the first
	err := store.SaveAssignment(ctx,
		shiftAssignment("asg-2", "attr-1", billing.ClosedInterval(d(2025, time.March, 15), d(2025, time.April, 15))))

	// THEN the write is refused and names the conflicting row
	var overlap *billing.OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Contains(t, overlap.ConflictIDs, "asg-1")

	// AND nothing was written
	got, err := store.GetAssignment(ctx, "asg-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteAssignments_OpenEndBlocksLaterStarts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-1", "attr-1", billing.OpenInterval(d(2025, time.March, 1)))))

	err := store.SaveAssignment(ctx,
		shiftAssignment("asg-2", "attr-1", billing.OpenInterval(d(2027, time.January, 1))))

	var overlap *billing.OverlapError
	assert.ErrorAs(t, err, &overlap, "NULL end reads as +infinity")
}

func TestSQLiteAssignments_AdjacentIntervalsAllowed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-1", "attr-1", billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.March, 31)))))
	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-2", "attr-1", billing.OpenInterval(d(2025, time.April, 1)))))

	// Different attribute types never collide
	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-3", "attr-2", billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.March, 31)))))
}

func TestSQLiteAssignments_UpsertExcludesOwnRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := shiftAssignment("asg-1", "attr-1", billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.March, 31)))
	require.NoError(t, store.SaveAssignment(ctx, a))

	// Re-saving the same row with a shifted end is not a self-conflict
	a.Interval = billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.April, 30))
	require.NoError(t, store.SaveAssignment(ctx, a))

	got, err := store.GetAssignment(ctx, "asg-1")
	require.NoError(t, err)
	require.NotNil(t, got.Interval.End)
	assert.True(t, got.Interval.End.Equal(d(2025, time.April, 30)))
}

func TestSQLiteAssignments_ActiveLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	subject := billing.ShiftSubject("shift-214-day")

	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-1", "attr-1", billing.ClosedInterval(d(2025, time.March, 1), d(2025, time.March, 31)))))
	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-2", "attr-1", billing.OpenInterval(d(2025, time.April, 1)))))
	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-3", "attr-2", billing.OpenInterval(d(2025, time.January, 1)))))

	// ActiveOn picks the interval covering the date for one attribute type
	a, err := store.ActiveOn(ctx, subject, "attr-1", d(2025, time.March, 15))
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, billing.AssignmentID("asg-1"), a.ID)

	a, err = store.ActiveOn(ctx, subject, "attr-1", d(2025, time.June, 1))
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, billing.AssignmentID("asg-2"), a.ID)

	a, err = store.ActiveOn(ctx, subject, "attr-1", d(2025, time.February, 1))
	require.NoError(t, err)
	assert.Nil(t, a, "before any interval starts")

	// ActiveAssignments spans all attribute types
	active, err := store.ActiveAssignments(ctx, subject, d(2025, time.June, 1))
	require.NoError(t, err)
	assert.Len(t, active, 2)

	// History returns everything, newest start first
	history, err := store.History(ctx, subject)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, billing.AssignmentID("asg-2"), history[0].ID)
	assert.Equal(t, billing.AssignmentID("asg-3"), history[2].ID)
}

func TestSQLiteAssignments_SubjectsWithAttribute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAssignment(ctx, billing.TemporalAssignment{
		ID: "asg-1", Subject: billing.ShiftSubject("shift-214-day"), AttributeTypeID: "attr-1",
		Interval: billing.OpenInterval(d(2025, time.January, 1)), CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.SaveAssignment(ctx, billing.TemporalAssignment{
		ID: "asg-2", Subject: billing.CabSubject("cab-317"), AttributeTypeID: "attr-1",
		Interval: billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.February, 28)), CreatedAt: time.Now().UTC(),
	}))

	subjects, err := store.SubjectsWithAttribute(ctx, "attr-1", d(2025, time.February, 1))
	require.NoError(t, err)
	assert.Len(t, subjects, 2)

	// The closed assignment drops out after its end date
	subjects, err = store.SubjectsWithAttribute(ctx, "attr-1", d(2025, time.June, 1))
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, billing.SubjectShift, subjects[0].Kind)
}

func TestSQLiteAssignments_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-1", "attr-1", billing.OpenInterval(d(2025, time.March, 1)))))
	require.NoError(t, store.DeleteAssignment(ctx, "asg-1"))

	got, err := store.GetAssignment(ctx, "asg-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// COST SCHEDULE
// =============================================================================

func priceEntry(id string, attr billing.AttributeTypeID, price string, unit billing.BillingUnit, iv billing.DateInterval) billing.CostScheduleEntry {
	return billing.CostScheduleEntry{
		ID:              billing.ScheduleEntryID(id),
		AttributeTypeID: attr,
		Price:           billing.MustParseMoney(price),
		Unit:            unit,
		Validity:        iv,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestSQLiteSchedule_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-1", "attr-1", "1.50", billing.BillingDaily, billing.OpenInterval(d(2025, time.January, 1)))))

	got, err := store.GetEntry(ctx, "sched-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, billing.BillingDaily, got.Unit)
	assert.True(t, got.Price.Equal(billing.MustParseMoney("1.50")), "price stored as exact decimal text")
	assert.Nil(t, got.Validity.End)
}

func TestSQLiteSchedule_OverlapRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-1", "attr-1", "30", billing.BillingMonthly,
			billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.June, 30)))))

	err := store.SaveEntry(ctx,
		priceEntry("sched-2", "attr-1", "35", billing.BillingMonthly,
			billing.OpenInterval(d(2025, time.June, 1))))

	var overlap *billing.OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Contains(t, overlap.ConflictIDs, "sched-1")

	// A follow-up price starting right after the closed entry fits
	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-3", "attr-1", "35", billing.BillingMonthly,
			billing.OpenInterval(d(2025, time.July, 1)))))

	// Another attribute type prices independently
	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-4", "attr-2", "12", billing.BillingMonthly,
			billing.OpenInterval(d(2025, time.January, 1)))))
}

func TestSQLiteSchedule_DuplicateEffectiveFrom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-1", "attr-1", "30", billing.BillingMonthly,
			billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.January, 1)))))

	err := store.SaveEntry(ctx,
		priceEntry("sched-2", "attr-1", "35", billing.BillingMonthly,
			billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.January, 1))))

	var overlap *billing.OverlapError
	assert.ErrorAs(t, err, &overlap)
}

func TestSQLiteSchedule_ActiveOnAndHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-1", "attr-1", "30", billing.BillingMonthly,
			billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.June, 30)))))
	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-2", "attr-1", "35", billing.BillingMonthly,
			billing.OpenInterval(d(2025, time.July, 1)))))

	e, err := store.EntryActiveOn(ctx, "attr-1", d(2025, time.March, 15))
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, billing.ScheduleEntryID("sched-1"), e.ID)

	e, err = store.EntryActiveOn(ctx, "attr-1", d(2025, time.August, 1))
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, billing.ScheduleEntryID("sched-2"), e.ID)

	e, err = store.EntryActiveOn(ctx, "attr-1", d(2024, time.December, 31))
	require.NoError(t, err)
	assert.Nil(t, e, "date before any pricing")

	entries, err := store.EntriesFor(ctx, "attr-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, billing.ScheduleEntryID("sched-2"), entries[0].ID, "newest effective_from first")
}

func TestSQLiteSchedule_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx,
		priceEntry("sched-1", "attr-1", "30", billing.BillingMonthly, billing.OpenInterval(d(2025, time.January, 1)))))
	require.NoError(t, store.DeleteEntry(ctx, "sched-1"))

	got, err := store.GetEntry(ctx, "sched-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// ROSTER
// =============================================================================

func TestSQLiteFleet_CabRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Optional columns stay NULL when empty and scan back as empty strings
	require.NoError(t, store.SaveCab(ctx, fleet.Cab{ID: "cab-317", Number: "317", Active: true}))
	require.NoError(t, store.SaveCab(ctx, fleet.Cab{
		ID: "cab-214", Number: "214", Plate: "B-TX 214", Make: "Mercedes", Model: "E 220", Active: true,
	}))

	c, err := store.GetCab(ctx, "cab-317")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Empty(t, c.Plate)
	assert.Empty(t, c.Make)

	cabs, err := store.ListCabs(ctx)
	require.NoError(t, err)
	require.Len(t, cabs, 2)
	assert.Equal(t, "214", cabs[0].Number, "ordered by call number")
	assert.Equal(t, "Mercedes", cabs[0].Make)
}

func TestSQLiteFleet_ActivePersonsByRole(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, p := range []fleet.Person{
		{ID: "own-garcia", Name: "M. Garcia", Role: fleet.RoleOwner, Active: true},
		{ID: "drv-okafor", Name: "C. Okafor", Role: fleet.RoleDriver, Active: true},
		{ID: "drv-lindqvist", Name: "S. Lindqvist", Role: fleet.RoleDriver, Active: true},
		{ID: "drv-former", Name: "Left the fleet", Role: fleet.RoleDriver, Active: false},
	} {
		require.NoError(t, store.SavePerson(ctx, p))
	}

	owners, err := store.ActivePersons(ctx, fleet.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, []billing.PersonID{"own-garcia"}, owners)

	drivers, err := store.ActivePersons(ctx, fleet.RoleDriver)
	require.NoError(t, err)
	assert.Equal(t, []billing.PersonID{"drv-lindqvist", "drv-okafor"}, drivers, "inactive drivers excluded")
}

func TestSQLiteFleet_ActiveShifts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, sh := range []fleet.Shift{
		{ID: "shift-214-day", CabID: "cab-214", Name: "214 / day", Status: fleet.ShiftActive,
			Operating: billing.OpenInterval(d(2025, time.January, 1))},
		{ID: "shift-214-night", CabID: "cab-214", Name: "214 / night", Status: fleet.ShiftActive,
			Operating: billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.March, 31))},
		{ID: "shift-317-day", CabID: "cab-317", Name: "317 / day", Status: fleet.ShiftSuspended,
			Operating: billing.OpenInterval(d(2025, time.January, 1))},
	} {
		require.NoError(t, store.SaveShift(ctx, sh))
	}

	// GIVEN a date inside every operating interval
	ids, err := store.ActiveShifts(ctx, d(2025, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, []billing.ShiftID{"shift-214-day", "shift-214-night"}, ids, "suspended shift excluded")

	// WHEN the night shift's interval has ended
	ids, err = store.ActiveShifts(ctx, d(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, []billing.ShiftID{"shift-214-day"}, ids)

	sh, err := store.GetShift(ctx, "shift-214-night")
	require.NoError(t, err)
	require.NotNil(t, sh)
	require.NotNil(t, sh.Operating.End)
	assert.True(t, sh.Operating.End.Equal(d(2025, time.March, 31)))
}

func TestSQLiteFleet_ShiftsInProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, fleet.ShiftProfile{ID: "prof-day", Name: "Day fleet"}))
	require.NoError(t, store.SaveMembership(ctx, fleet.ProfileMembership{
		ID: "mem-1", ProfileID: "prof-day", ShiftID: "shift-214-day",
		Interval: billing.OpenInterval(d(2025, time.January, 1)),
	}))
	require.NoError(t, store.SaveMembership(ctx, fleet.ProfileMembership{
		ID: "mem-2", ProfileID: "prof-day", ShiftID: "shift-317-day",
		Interval: billing.ClosedInterval(d(2025, time.January, 1), d(2025, time.March, 31)),
	}))

	ids, err := store.ShiftsInProfile(ctx, "prof-day", d(2025, time.February, 1))
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	// Expired membership drops the shift from the profile
	ids, err = store.ShiftsInProfile(ctx, "prof-day", d(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, []billing.ShiftID{"shift-214-day"}, ids)
}

func TestSQLiteFleet_CategoriesKeepScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveExpenseCategory(ctx, fleet.ExpenseCategory{
		ID: "exp-1", Code: "RADIO_FEE", Name: "Radio fee",
		Scope:  billing.ScopeForProfile("prof-day"),
		Active: true,
	}))
	require.NoError(t, store.SaveRevenueCategory(ctx, fleet.RevenueCategory{
		ID: "rev-1", Code: "AIRPORT_SURCHARGE", Name: "Airport surcharge",
		Scope:  billing.ScopeForAttribute("attr-airport"),
		Active: true,
	}))

	expenses, err := store.ListExpenseCategories(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, billing.ScopeShiftProfile, expenses[0].Scope.Kind)
	assert.Equal(t, billing.ShiftProfileID("prof-day"), expenses[0].Scope.ShiftProfileID)
	assert.Empty(t, expenses[0].Scope.ShiftID, "unset targets come back empty")

	revenues, err := store.ListRevenueCategories(ctx)
	require.NoError(t, err)
	require.Len(t, revenues, 1)
	assert.Equal(t, billing.AttributeTypeID("attr-airport"), revenues[0].Scope.AttributeTypeID)

	// A malformed scope never reaches the table
	err = store.SaveExpenseCategory(ctx, fleet.ExpenseCategory{
		ID: "exp-2", Code: "BROKEN",
		Scope: billing.ApplicationScope{Kind: billing.ScopeSpecificShift},
	})
	assert.ErrorIs(t, err, billing.ErrValidation)
}

// =============================================================================
// RESET
// =============================================================================

func TestSQLiteReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveType(ctx, billing.AttributeType{
		ID: "attr-1", Code: "AIRPORT_LICENSE", Name: "Airport license",
		DataType: billing.AttrDataNone, Active: true,
	}))
	require.NoError(t, store.SaveAssignment(ctx,
		shiftAssignment("asg-1", "attr-1", billing.OpenInterval(d(2025, time.January, 1)))))
	require.NoError(t, store.SaveCab(ctx, fleet.Cab{ID: "cab-214", Number: "214", Active: true}))

	require.NoError(t, store.Reset(ctx))

	types, err := store.ListTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)

	a, err := store.GetAssignment(ctx, "asg-1")
	require.NoError(t, err)
	assert.Nil(t, a)

	cabs, err := store.ListCabs(ctx)
	require.NoError(t, err)
	assert.Empty(t, cabs)
}
