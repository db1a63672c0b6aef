/*
seed.go - Demo fleet loader for testing and demonstrations

PURPOSE:

	Populates the database with a small realistic fleet for demos and
	manual testing: two cabs with day/night shifts, an owner and two
	drivers, a handful of billable attribute types with priced schedules,
	and a few assignments.

HOW THE SEED WORKS:
 1. Reset database (clear all data)
 2. Create cabs, persons, shifts, one profile
 3. Register attribute types
 4. Price them in the cost schedule
 5. Assign attributes to shifts and cabs

USAGE VIA API:

	POST /api/seed

NOTE:

	Seeding resets the database. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - server.go: Route definitions
*/
package api

import (
	"context"
	"net/http"

	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
)

// SeedDemoFleet resets the database and loads the demo fleet.
func (h *Handler) SeedDemoFleet(w http.ResponseWriter, r *http.Request) {
	if h.Resetter == nil {
		writeError(w, http.StatusForbidden, "Seeding is disabled", nil)
		return
	}
	ctx := r.Context()

	if err := h.Resetter.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.loadDemoFleet(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo fleet", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "seeded"})
}

func (h *Handler) loadDemoFleet(ctx context.Context) error {
	year := billing.Today().Time.Year()
	jan1 := billing.NewDate(year, 1, 1)

	// Cabs
	cabs := []fleet.Cab{
		{ID: "cab-214", Number: "214", Plate: "TX-214-CB", Make: "Toyota", Model: "Camry", Active: true},
		{ID: "cab-317", Number: "317", Plate: "TX-317-CB", Make: "Ford", Model: "Fusion", Active: true},
	}
	for _, c := range cabs {
		if err := h.Fleet.SaveCab(ctx, c); err != nil {
			return err
		}
	}

	// Persons
	persons := []fleet.Person{
		{ID: "own-garcia", Name: "R. Garcia", Role: fleet.RoleOwner, Active: true},
		{ID: "drv-okafor", Name: "C. Okafor", Role: fleet.RoleDriver, Active: true},
		{ID: "drv-lindqvist", Name: "M. Lindqvist", Role: fleet.RoleDriver, Active: true},
	}
	for _, p := range persons {
		if err := h.Fleet.SavePerson(ctx, p); err != nil {
			return err
		}
	}

	// Shifts: day and night on 214, day on 317
	shifts := []fleet.Shift{
		{ID: "shift-214-day", CabID: "cab-214", Name: "214 / day", Status: fleet.ShiftActive,
			Operating: billing.OpenInterval(jan1)},
		{ID: "shift-214-night", CabID: "cab-214", Name: "214 / night", Status: fleet.ShiftActive,
			Operating: billing.OpenInterval(jan1)},
		{ID: "shift-317-day", CabID: "cab-317", Name: "317 / day", Status: fleet.ShiftActive,
			Operating: billing.OpenInterval(jan1)},
	}
	for _, s := range shifts {
		if err := h.Fleet.SaveShift(ctx, s); err != nil {
			return err
		}
	}

	// One profile grouping the day shifts
	if err := h.Fleet.SaveProfile(ctx, fleet.ShiftProfile{ID: "prof-day", Name: "Day shifts"}); err != nil {
		return err
	}
	memberships := []fleet.ProfileMembership{
		{ID: "mem-1", ProfileID: "prof-day", ShiftID: "shift-214-day", Interval: billing.OpenInterval(jan1)},
		{ID: "mem-2", ProfileID: "prof-day", ShiftID: "shift-317-day", Interval: billing.OpenInterval(jan1)},
	}
	for _, m := range memberships {
		if err := h.Fleet.SaveMembership(ctx, m); err != nil {
			return err
		}
	}

	// Attribute types
	types := []billing.AttributeType{
		{ID: "attr-airport", Code: "AIRPORT_LICENSE", Name: "Airport license", Category: "license",
			DataType: billing.AttrDataNone, Active: true},
		{ID: "attr-transponder", Code: "TRANSPONDER", Name: "Toll transponder", Category: "equipment",
			DataType: billing.AttrDataString, RequiresValue: true, Active: true},
		{ID: "attr-cardreader", Code: "CARD_READER", Name: "Card reader", Category: "equipment",
			DataType: billing.AttrDataString, RequiresValue: true, Active: true},
	}
	for _, at := range types {
		if _, err := h.Types.Create(ctx, at); err != nil {
			return err
		}
	}

	// Cost schedule
	entries := []billing.CreateEntryInput{
		{ID: "sch-airport", AttributeTypeID: "attr-airport",
			Price: billing.MustParseMoney("30.00"), Unit: billing.BillingMonthly, EffectiveFrom: jan1},
		{ID: "sch-transponder", AttributeTypeID: "attr-transponder",
			Price: billing.MustParseMoney("1.50"), Unit: billing.BillingDaily, EffectiveFrom: jan1},
		{ID: "sch-cardreader", AttributeTypeID: "attr-cardreader",
			Price: billing.MustParseMoney("12.00"), Unit: billing.BillingMonthly, EffectiveFrom: jan1},
	}
	for _, e := range entries {
		if _, err := h.Schedule.Create(ctx, e); err != nil {
			return err
		}
	}

	// Assignments: licenses on the day shifts, transponder on cab 214
	assignments := []billing.AssignInput{
		{ID: "seed-asg-1", Subject: billing.ShiftSubject("shift-214-day"),
			AttributeTypeID: "attr-airport", Start: jan1},
		{ID: "seed-asg-2", Subject: billing.ShiftSubject("shift-317-day"),
			AttributeTypeID: "attr-airport", Start: jan1},
		{ID: "seed-asg-3", Subject: billing.CabSubject("cab-214"),
			AttributeTypeID: "attr-transponder", Value: "TP-88213", Start: jan1},
		{ID: "seed-asg-4", Subject: billing.ShiftSubject("shift-214-night"),
			AttributeTypeID: "attr-cardreader", Value: "CR-1044", Start: jan1},
	}
	for _, a := range assignments {
		if _, err := h.Assignments.Assign(ctx, a); err != nil {
			return err
		}
	}

	return nil
}
