/*
handlers_test.go - HTTP tests for the billing API

Drives the full router against an in-memory SQLite store, wired the same
way cmd/server wires production. Services run with a fixed clock so the
immutable-history rules are deterministic.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
	"github.com/cabfleet/billing-engine/store/sqlite"
)

// "Today" for every service under test.
var testToday = billing.NewDate(2025, time.June, 1)

type testServer struct {
	store   *sqlite.Store
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := func() billing.Date { return testToday }

	registry := billing.NewRegistry(store)
	assignments := billing.NewAssignmentService(store, store)
	assignments.Clock = clock
	schedule := billing.NewScheduleService(store, store)
	schedule.Clock = clock
	directory := fleet.NewDirectory(store)
	calculator := billing.NewChargeCalculator(store, store, store, directory)
	resolver := billing.NewScopeResolver(directory, directory, directory, store)

	handler := NewHandler(Deps{
		Types:       registry,
		Assignments: assignments,
		Schedule:    schedule,
		Charges:     calculator,
		Resolver:    resolver,
		Runs:        fleet.NewChargeRun(resolver, calculator),
		Fleet:       store,
		Resetter:    store,
	})

	return &testServer{store: store, handler: handler, router: NewRouter(handler)}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(into))
}

// registerShift saves a roster shift directly; the assignment and charge
// endpoints require the subject to exist.
func (ts *testServer) registerShift(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, ts.store.SaveShift(context.Background(), fleet.Shift{
		ID: billing.ShiftID(id), CabID: "cab-214", Name: id, Status: fleet.ShiftActive,
		Operating: billing.OpenInterval(billing.NewDate(2025, time.January, 1)),
	}))
}

// =============================================================================
// ATTRIBUTE TYPES
// =============================================================================

func TestAttributeTypeEndpoints(t *testing.T) {
	ts := newTestServer(t)

	// WHEN registering a new attribute type
	w := ts.do(t, "POST", "/api/attribute-types", CreateAttributeTypeRequest{
		Code: "AIRPORT_LICENSE", Name: "Airport license", DataType: "none",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created AttributeTypeDTO
	decodeJSON(t, w, &created)
	assert.NotEmpty(t, created.ID, "server assigns an id when the client omits one")
	assert.True(t, created.Active)

	// THEN it appears in the listing
	w = ts.do(t, "GET", "/api/attribute-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []AttributeTypeDTO
	decodeJSON(t, w, &types)
	require.Len(t, types, 1)

	// AND the code is taken
	w = ts.do(t, "POST", "/api/attribute-types", CreateAttributeTypeRequest{
		Code: "AIRPORT_LICENSE", Name: "Copycat", DataType: "none",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// AND an unknown id is a 404
	w = ts.do(t, "GET", "/api/attribute-types/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Update the name, then retire the type
	name := "Airport operating license"
	w = ts.do(t, "PUT", "/api/attribute-types/"+created.ID, UpdateAttributeTypeRequest{Name: &name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated AttributeTypeDTO
	decodeJSON(t, w, &updated)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "AIRPORT_LICENSE", updated.Code)

	w = ts.do(t, "POST", "/api/attribute-types/"+created.ID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &updated)
	assert.False(t, updated.Active)
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func TestAssignmentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.registerShift(t, "shift-214-day")
	require.NoError(t, ts.store.SaveType(context.Background(), billing.AttributeType{
		ID: "attr-airport", Code: "AIRPORT_LICENSE", Name: "Airport license",
		DataType: billing.AttrDataNone, Active: true,
	}))

	// GIVEN a closed March assignment
	w := ts.do(t, "POST", "/api/subjects/shift/shift-214-day/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-airport",
		EffectiveFrom:   "2025-03-01",
		EffectiveTo:     strPtr("2025-03-31"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var march AssignmentDTO
	decodeJSON(t, w, &march)
	require.NotNil(t, march.EffectiveTo)

	// WHEN posting a crossing interval for the same key
	w = ts.do(t, "POST", "/api/subjects/shift/shift-214-day/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-airport",
		EffectiveFrom:   "2025-03-15",
	})
	assert.Equal(t, http.StatusConflict, w.Code, "overlap maps to 409")

	// An adjacent open follow-up is fine
	w = ts.do(t, "POST", "/api/subjects/shift/shift-214-day/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-airport",
		EffectiveFrom:   "2025-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var open AssignmentDTO
	decodeJSON(t, w, &open)

	// Subject kinds other than shift/cab are rejected at the URL
	w = ts.do(t, "POST", "/api/subjects/person/own-garcia/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-airport", EffectiveFrom: "2025-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// History and active views
	w = ts.do(t, "GET", "/api/subjects/shift/shift-214-day/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []AssignmentDTO
	decodeJSON(t, w, &history)
	assert.Len(t, history, 2)

	w = ts.do(t, "GET", "/api/subjects/shift/shift-214-day/assignments/active?on=2025-03-15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active []AssignmentDTO
	decodeJSON(t, w, &active)
	require.Len(t, active, 1)
	assert.Equal(t, march.ID, active[0].ID)

	w = ts.do(t, "GET", "/api/subjects/shift/shift-214-day/assignments/active?on=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Close the open assignment
	w = ts.do(t, "POST", "/api/assignments/"+open.ID+"/end", EndAssignmentRequest{EffectiveTo: "2025-06-30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ended AssignmentDTO
	decodeJSON(t, w, &ended)
	require.NotNil(t, ended.EffectiveTo)
	assert.Equal(t, "2025-06-30", *ended.EffectiveTo)

	// Started assignments cannot be deleted, future ones can
	w = ts.do(t, "DELETE", "/api/assignments/"+march.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "started assignment is history")

	w = ts.do(t, "POST", "/api/subjects/shift/shift-214-day/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-airport",
		EffectiveFrom:   "2025-08-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var future AssignmentDTO
	decodeJSON(t, w, &future)

	w = ts.do(t, "DELETE", "/api/assignments/"+future.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAssignmentEndpoints_RequiresValue(t *testing.T) {
	ts := newTestServer(t)
	ts.registerShift(t, "shift-214-day")
	require.NoError(t, ts.store.SaveType(context.Background(), billing.AttributeType{
		ID: "attr-transponder", Code: "TRANSPONDER", Name: "Toll transponder",
		DataType: billing.AttrDataString, RequiresValue: true, Active: true,
	}))

	w := ts.do(t, "POST", "/api/subjects/shift/shift-214-day/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-transponder", EffectiveFrom: "2025-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing required value")

	w = ts.do(t, "POST", "/api/subjects/shift/shift-214-day/assignments", CreateAssignmentRequest{
		AttributeTypeID: "attr-transponder", Value: "TP-88213", EffectiveFrom: "2025-03-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// =============================================================================
// COST SCHEDULE
// =============================================================================

func TestScheduleEndpoints(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.SaveType(context.Background(), billing.AttributeType{
		ID: "attr-airport", Code: "AIRPORT_LICENSE", Name: "Airport license",
		DataType: billing.AttrDataNone, Active: true,
	}))

	// Price the license monthly from January
	w := ts.do(t, "POST", "/api/attribute-types/attr-airport/schedule", CreateScheduleEntryRequest{
		Price: "30.00", Unit: "MONTHLY", EffectiveFrom: "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry ScheduleEntryDTO
	decodeJSON(t, w, &entry)
	assert.Equal(t, "30", entry.Price, "decimal trims trailing zeros")

	// Active price lookups
	w = ts.do(t, "GET", "/api/attribute-types/attr-airport/schedule/active?on=2025-03-15", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", "/api/attribute-types/attr-airport/schedule/active?on=2024-06-01", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "unpriced date")

	// Conflicting and malformed entries
	w = ts.do(t, "POST", "/api/attribute-types/attr-airport/schedule", CreateScheduleEntryRequest{
		Price: "35.00", Unit: "MONTHLY", EffectiveFrom: "2025-06-01",
	})
	assert.Equal(t, http.StatusConflict, w.Code, "overlaps the open entry")

	w = ts.do(t, "POST", "/api/attribute-types/attr-airport/schedule", CreateScheduleEntryRequest{
		Price: "thirty", Unit: "MONTHLY", EffectiveFrom: "2025-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", "/api/attribute-types/attr-airport/schedule", CreateScheduleEntryRequest{
		Price: "30.00", Unit: "WEEKLY", EffectiveFrom: "2026-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown billing unit")

	// Close the entry, then a follow-up price fits
	w = ts.do(t, "POST", "/api/schedule-entries/"+entry.ID+"/end", EndAssignmentRequest{EffectiveTo: "2025-06-30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "POST", "/api/attribute-types/attr-airport/schedule", CreateScheduleEntryRequest{
		Price: "35.00", Unit: "MONTHLY", EffectiveFrom: "2025-07-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/api/attribute-types/attr-airport/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []ScheduleEntryDTO
	decodeJSON(t, w, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-07-01", entries[0].EffectiveFrom, "newest first")
}

// =============================================================================
// CHARGES
// =============================================================================

func TestChargesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.registerShift(t, "shift-214-day")
	ctx := context.Background()
	require.NoError(t, ts.store.SaveType(ctx, billing.AttributeType{
		ID: "attr-airport", Code: "AIRPORT_LICENSE", Name: "Airport license",
		DataType: billing.AttrDataNone, Active: true,
	}))
	require.NoError(t, ts.store.SaveEntry(ctx, billing.CostScheduleEntry{
		ID: "sched-1", AttributeTypeID: "attr-airport",
		Price: billing.MustParseMoney("30"), Unit: billing.BillingMonthly,
		Validity:  billing.OpenInterval(billing.NewDate(2025, time.January, 1)),
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, ts.store.SaveAssignment(ctx, billing.TemporalAssignment{
		ID: "asg-1", Subject: billing.ShiftSubject("shift-214-day"), AttributeTypeID: "attr-airport",
		Interval:  billing.OpenInterval(billing.NewDate(2025, time.January, 1)),
		CreatedAt: time.Now().UTC(),
	}))

	// One calendar month of the monthly license
	w := ts.do(t, "GET", "/api/subjects/shift/shift-214-day/charges?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var statement ChargeStatementDTO
	decodeJSON(t, w, &statement)
	require.Len(t, statement.LineItems, 1)
	assert.Equal(t, "30", statement.Total)
	assert.Equal(t, "AIRPORT_LICENSE", statement.LineItems[0].AttributeCode)

	// Period parameters are mandatory
	w = ts.do(t, "GET", "/api/subjects/shift/shift-214-day/charges?to=2025-03-31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown subjects are a 404, inverted periods a 400
	w = ts.do(t, "GET", "/api/subjects/shift/shift-ghost/charges?from=2025-03-01&to=2025-03-31", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "GET", "/api/subjects/shift/shift-214-day/charges?from=2025-03-31&to=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChargeRunEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.registerShift(t, "shift-214-day")
	ts.registerShift(t, "shift-317-day")
	ctx := context.Background()
	require.NoError(t, ts.store.SaveType(ctx, billing.AttributeType{
		ID: "attr-airport", Code: "AIRPORT_LICENSE", Name: "Airport license",
		DataType: billing.AttrDataNone, Active: true,
	}))
	require.NoError(t, ts.store.SaveEntry(ctx, billing.CostScheduleEntry{
		ID: "sched-1", AttributeTypeID: "attr-airport",
		Price: billing.MustParseMoney("30"), Unit: billing.BillingMonthly,
		Validity:  billing.OpenInterval(billing.NewDate(2025, time.January, 1)),
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, ts.store.SaveAssignment(ctx, billing.TemporalAssignment{
		ID: "asg-1", Subject: billing.ShiftSubject("shift-214-day"), AttributeTypeID: "attr-airport",
		Interval:  billing.OpenInterval(billing.NewDate(2025, time.January, 1)),
		CreatedAt: time.Now().UTC(),
	}))

	w := ts.do(t, "POST", "/api/charge-runs", ChargeRunRequest{
		Scope:       ScopeDTO{Kind: "ALL_ACTIVE_SHIFTS"},
		AsOf:        "2025-06-01",
		PeriodStart: "2025-03-01",
		PeriodEnd:   "2025-03-31",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var run ChargeRunDTO
	decodeJSON(t, w, &run)
	assert.Len(t, run.Statements, 2)
	assert.Equal(t, "30", run.GrandTotal)

	// A scope missing its target fails validation
	w = ts.do(t, "POST", "/api/charge-runs", ChargeRunRequest{
		Scope:       ScopeDTO{Kind: "SPECIFIC_SHIFT"},
		PeriodStart: "2025-03-01",
		PeriodEnd:   "2025-03-31",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestChargeRunEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Nothing precomputed yet
	w := ts.do(t, "GET", "/api/charge-runs/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Seed and trigger the scheduler once
	w = ts.do(t, "POST", "/api/seed", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	scheduler := NewStatementScheduler(ts.handler)
	scheduler.RunNow()

	w = ts.do(t, "GET", "/api/charge-runs/latest", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var run ChargeRunDTO
	decodeJSON(t, w, &run)
	assert.Len(t, run.Statements, 3, "one statement per active shift")
	assert.NotEmpty(t, run.ComputedAt)
}

// =============================================================================
// SCOPES
// =============================================================================

func TestResolveScopeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.registerShift(t, "shift-214-day")
	require.NoError(t, ts.store.SavePerson(context.Background(),
		fleet.Person{ID: "drv-okafor", Name: "C. Okafor", Role: fleet.RoleDriver, Active: true}))

	w := ts.do(t, "POST", "/api/scopes/resolve", ResolveScopeRequest{
		Scope: ScopeDTO{Kind: "ALL_ACTIVE_SHIFTS"},
		AsOf:  "2025-06-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resolved struct {
		AsOf    string           `json:"as_of"`
		Members []ScopeMemberDTO `json:"members"`
	}
	decodeJSON(t, w, &resolved)
	assert.Equal(t, "2025-06-01", resolved.AsOf)
	require.Len(t, resolved.Members, 1)
	assert.Equal(t, "shift", resolved.Members[0].Kind)

	w = ts.do(t, "POST", "/api/scopes/resolve", ResolveScopeRequest{
		Scope: ScopeDTO{Kind: "ALL_DRIVERS"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resolved)
	require.Len(t, resolved.Members, 1)
	assert.Equal(t, "person", resolved.Members[0].Kind)

	// Two targets at once is malformed
	w = ts.do(t, "POST", "/api/scopes/resolve", ResolveScopeRequest{
		Scope: ScopeDTO{Kind: "SPECIFIC_SHIFT", ShiftID: "shift-214-day", PersonID: "drv-okafor"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// ROSTER
// =============================================================================

func TestRosterEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/cabs", CabDTO{Number: "214", Plate: "TX-214-CB", Active: true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cab CabDTO
	decodeJSON(t, w, &cab)
	require.NotEmpty(t, cab.ID)

	w = ts.do(t, "GET", "/api/cabs/"+cab.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, "GET", "/api/cabs/cab-ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Persons must carry a known role
	w = ts.do(t, "POST", "/api/persons", PersonDTO{Name: "C. Okafor", Role: "driver", Active: true})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, "POST", "/api/persons", PersonDTO{Name: "Nobody", Role: "mechanic", Active: true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Shifts default to active status
	w = ts.do(t, "POST", "/api/shifts", ShiftDTO{
		CabID: cab.ID, Name: "214 / day", EffectiveFrom: "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var shift ShiftDTO
	decodeJSON(t, w, &shift)
	assert.Equal(t, "active", shift.Status)

	// Profile with a dated membership
	w = ts.do(t, "POST", "/api/profiles", ProfileDTO{ID: "prof-day", Name: "Day fleet"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, "POST", "/api/profiles/prof-day/members", MembershipRequest{
		ShiftID: shift.ID, EffectiveFrom: "2025-01-01", EffectiveTo: strPtr("2025-03-31"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/api/profiles/prof-day/shifts?on=2025-02-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inProfile struct {
		On       string   `json:"on"`
		ShiftIDs []string `json:"shift_ids"`
	}
	decodeJSON(t, w, &inProfile)
	assert.Equal(t, []string{shift.ID}, inProfile.ShiftIDs)

	w = ts.do(t, "GET", "/api/profiles/prof-day/shifts?on=2025-06-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &inProfile)
	assert.Empty(t, inProfile.ShiftIDs, "membership expired")
}

func TestCategoryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/expense-categories", CategoryDTO{
		Code: "RADIO_FEE", Name: "Radio fee",
		Scope:  ScopeDTO{Kind: "ALL_ACTIVE_SHIFTS"},
		Active: true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A scope with the wrong target is rejected before it is stored
	w = ts.do(t, "POST", "/api/revenue-categories", CategoryDTO{
		Code: "AIRPORT_SURCHARGE", Name: "Airport surcharge",
		Scope:  ScopeDTO{Kind: "SHIFTS_WITH_ATTRIBUTE", ShiftID: "shift-214-day"},
		Active: true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/api/expense-categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []CategoryDTO
	decodeJSON(t, w, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "ALL_ACTIVE_SHIFTS", categories[0].Scope.Kind)
}

// =============================================================================
// SEED / RESET
// =============================================================================

func TestSeedAndReset(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/seed", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/api/shifts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shifts []ShiftDTO
	decodeJSON(t, w, &shifts)
	assert.Len(t, shifts, 3)

	w = ts.do(t, "GET", "/api/attribute-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []AttributeTypeDTO
	decodeJSON(t, w, &types)
	assert.Len(t, types, 3)

	// Seeded data supports a charge run out of the box
	year := billing.Today().Time.Year()
	w = ts.do(t, "POST", "/api/charge-runs", ChargeRunRequest{
		Scope:       ScopeDTO{Kind: "SHIFT_PROFILE", ShiftProfileID: "prof-day"},
		PeriodStart: billing.NewDate(year, time.March, 1).String(),
		PeriodEnd:   billing.NewDate(year, time.March, 31).String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var run ChargeRunDTO
	decodeJSON(t, w, &run)
	assert.Len(t, run.Statements, 2, "both day shifts are in the profile")

	// Reset wipes everything
	w = ts.do(t, "POST", "/api/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", "/api/attribute-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &types)
	assert.Empty(t, types)
}
