/*
handlers.go - HTTP API handlers for the fleet billing engine

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Attribute types:
    GET    /api/attribute-types                List attribute types
    POST   /api/attribute-types                Register attribute type
    GET    /api/attribute-types/{id}           Get attribute type
    PUT    /api/attribute-types/{id}           Update attribute type
    POST   /api/attribute-types/{id}/deactivate  Retire attribute type

  Assignments (subject = shift or cab):
    GET    /api/subjects/{kind}/{id}/assignments         Full history
    GET    /api/subjects/{kind}/{id}/assignments/active  Active on ?on=
    POST   /api/subjects/{kind}/{id}/assignments         Assign attribute
    PUT    /api/assignments/{id}               Update assignment
    POST   /api/assignments/{id}/end           Close open assignment
    DELETE /api/assignments/{id}               Delete (future-start only)

  Cost schedule:
    GET    /api/attribute-types/{id}/schedule         Price history
    POST   /api/attribute-types/{id}/schedule         Add price entry
    GET    /api/attribute-types/{id}/schedule/active  Price active on ?on=
    PUT    /api/schedule-entries/{id}          Update entry
    POST   /api/schedule-entries/{id}/end      Close open entry
    DELETE /api/schedule-entries/{id}          Delete (future-start only)

  Charges:
    GET    /api/subjects/{kind}/{id}/charges?from=&to=  Charge statement
    POST   /api/charge-runs                    Scoped charge run
    GET    /api/charge-runs/latest             Last precomputed run

  Scopes:
    POST   /api/scopes/resolve                 Expand scope to members

  Roster:
    /api/cabs, /api/persons, /api/shifts, /api/profiles,
    /api/expense-categories, /api/revenue-categories

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (registry, assignments, schedule, calculator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (interval overlap, immutable history)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  Put a gateway in front for anything beyond a single-office deployment.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Demo fleet loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter clears all persisted data. Dev environments only.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Types       *billing.Registry
	Assignments *billing.AssignmentService
	Schedule    *billing.ScheduleService
	Charges     *billing.ChargeCalculator
	Resolver    *billing.ScopeResolver
	Runs        *fleet.ChargeRun
	Fleet       fleet.Store
	Resetter    Resetter // nil disables /api/reset

	// Last precomputed charge run, written by the statement scheduler.
	mu         sync.RWMutex
	latestRun  *fleet.ChargeRunResult
	computedAt time.Time
}

// Deps bundles the handler's collaborators.
type Deps struct {
	Types       *billing.Registry
	Assignments *billing.AssignmentService
	Schedule    *billing.ScheduleService
	Charges     *billing.ChargeCalculator
	Resolver    *billing.ScopeResolver
	Runs        *fleet.ChargeRun
	Fleet       fleet.Store
	Resetter    Resetter
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		Types:       deps.Types,
		Assignments: deps.Assignments,
		Schedule:    deps.Schedule,
		Charges:     deps.Charges,
		Resolver:    deps.Resolver,
		Runs:        deps.Runs,
		Fleet:       deps.Fleet,
		Resetter:    deps.Resetter,
	}
}

// =============================================================================
// ATTRIBUTE TYPE HANDLERS
// =============================================================================

// ListAttributeTypes returns all registered attribute types.
func (h *Handler) ListAttributeTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Types.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attribute types", err)
		return
	}

	dtos := make([]AttributeTypeDTO, len(types))
	for i, at := range types {
		dtos[i] = toAttributeTypeDTO(at)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAttributeType returns a single attribute type.
func (h *Handler) GetAttributeType(w http.ResponseWriter, r *http.Request) {
	id := billing.AttributeTypeID(chi.URLParam(r, "id"))

	at, err := h.Types.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get attribute type")
		return
	}
	writeJSON(w, http.StatusOK, toAttributeTypeDTO(*at))
}

// CreateAttributeType registers a new attribute type.
func (h *Handler) CreateAttributeType(w http.ResponseWriter, r *http.Request) {
	var req CreateAttributeTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := req.ID
	if id == "" {
		id = newID("attr")
	}
	at, err := h.Types.Create(r.Context(), billing.AttributeType{
		ID:            billing.AttributeTypeID(id),
		Code:          req.Code,
		Name:          req.Name,
		Category:      req.Category,
		DataType:      billing.AttributeDataType(req.DataType),
		RequiresValue: req.RequiresValue,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to create attribute type")
		return
	}
	writeJSON(w, http.StatusCreated, toAttributeTypeDTO(*at))
}

// UpdateAttributeType updates the mutable fields of an attribute type.
func (h *Handler) UpdateAttributeType(w http.ResponseWriter, r *http.Request) {
	id := billing.AttributeTypeID(chi.URLParam(r, "id"))

	var req UpdateAttributeTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input := billing.UpdateTypeInput{
		Name:          req.Name,
		Category:      req.Category,
		RequiresValue: req.RequiresValue,
		Active:        req.Active,
	}
	if req.DataType != nil {
		dt := billing.AttributeDataType(*req.DataType)
		input.DataType = &dt
	}

	at, err := h.Types.Update(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, err, "Failed to update attribute type")
		return
	}
	writeJSON(w, http.StatusOK, toAttributeTypeDTO(*at))
}

// DeactivateAttributeType retires an attribute type. Existing assignments
// and price history are untouched.
func (h *Handler) DeactivateAttributeType(w http.ResponseWriter, r *http.Request) {
	id := billing.AttributeTypeID(chi.URLParam(r, "id"))

	at, err := h.Types.Deactivate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to deactivate attribute type")
		return
	}
	writeJSON(w, http.StatusOK, toAttributeTypeDTO(*at))
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// ListAssignments returns the full assignment history for a subject,
// newest first.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	history, err := h.Assignments.GetHistory(r.Context(), subject)
	if err != nil {
		writeDomainError(w, err, "Failed to get assignment history")
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTOs(history))
}

// ListActiveAssignments returns the assignments active for a subject on
// the ?on= date (default today).
func (h *Handler) ListActiveAssignments(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromURL(w, r)
	if !ok {
		return
	}
	on, ok := queryDate(w, r, "on", billing.Today())
	if !ok {
		return
	}

	active, err := h.Assignments.ActiveAssignments(r.Context(), subject, on)
	if err != nil {
		writeDomainError(w, err, "Failed to get active assignments")
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTOs(active))
}

// CreateAssignment assigns an attribute to the subject in the URL.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := billing.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from (use YYYY-MM-DD)", err)
		return
	}
	end, ok := optionalDate(w, req.EffectiveTo, "effective_to")
	if !ok {
		return
	}

	a, err := h.Assignments.Assign(r.Context(), billing.AssignInput{
		ID:              billing.AssignmentID(newID("asg")),
		Subject:         subject,
		AttributeTypeID: billing.AttributeTypeID(req.AttributeTypeID),
		Value:           req.Value,
		Start:           start,
		End:             end,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to create assignment")
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(*a))
}

// UpdateAssignment updates the mutable fields of an assignment and
// re-runs the overlap check.
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id := billing.AssignmentID(chi.URLParam(r, "id"))

	var req UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input := billing.UpdateAssignmentInput{
		Value:    req.Value,
		ClearEnd: req.ClearEnd,
		Notes:    req.Notes,
	}
	if req.EffectiveFrom != nil {
		start, err := billing.ParseDate(*req.EffectiveFrom)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid effective_from (use YYYY-MM-DD)", err)
			return
		}
		input.Start = &start
	}
	var ok bool
	input.End, ok = optionalDate(w, req.EffectiveTo, "effective_to")
	if !ok {
		return
	}

	a, err := h.Assignments.Update(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, err, "Failed to update assignment")
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(*a))
}

// EndAssignment closes an open assignment as of the given date.
func (h *Handler) EndAssignment(w http.ResponseWriter, r *http.Request) {
	id := billing.AssignmentID(chi.URLParam(r, "id"))

	var req EndAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	end, err := billing.ParseDate(req.EffectiveTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_to (use YYYY-MM-DD)", err)
		return
	}

	a, err := h.Assignments.End(r.Context(), id, end)
	if err != nil {
		writeDomainError(w, err, "Failed to end assignment")
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(*a))
}

// DeleteAssignment deletes an assignment whose start date is still in
// the future. Started assignments are history and must be ended instead.
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := billing.AssignmentID(chi.URLParam(r, "id"))

	if err := h.Assignments.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete assignment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// =============================================================================
// COST SCHEDULE HANDLERS
// =============================================================================

// ListScheduleEntries returns the price history for an attribute type,
// newest first.
func (h *Handler) ListScheduleEntries(w http.ResponseWriter, r *http.Request) {
	id := billing.AttributeTypeID(chi.URLParam(r, "id"))

	entries, err := h.Schedule.History(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get price history")
		return
	}

	dtos := make([]ScheduleEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toScheduleEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetActiveScheduleEntry returns the price entry active on the ?on= date
// (default today). 404 if the attribute type is unpriced on that date.
func (h *Handler) GetActiveScheduleEntry(w http.ResponseWriter, r *http.Request) {
	id := billing.AttributeTypeID(chi.URLParam(r, "id"))
	on, ok := queryDate(w, r, "on", billing.Today())
	if !ok {
		return
	}

	e, err := h.Schedule.GetActiveOn(r.Context(), id, on)
	if err != nil {
		writeDomainError(w, err, "Failed to get active price")
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "No price active on "+on.String(), nil)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleEntryDTO(*e))
}

// CreateScheduleEntry prices the attribute type in the URL from a date.
func (h *Handler) CreateScheduleEntry(w http.ResponseWriter, r *http.Request) {
	id := billing.AttributeTypeID(chi.URLParam(r, "id"))

	var req CreateScheduleEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price", err)
		return
	}
	from, err := billing.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from (use YYYY-MM-DD)", err)
		return
	}
	to, ok := optionalDate(w, req.EffectiveTo, "effective_to")
	if !ok {
		return
	}

	e, err := h.Schedule.Create(r.Context(), billing.CreateEntryInput{
		ID:              billing.ScheduleEntryID(newID("sch")),
		AttributeTypeID: id,
		Price:           price,
		Unit:            billing.BillingUnit(req.Unit),
		EffectiveFrom:   from,
		EffectiveTo:     to,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to create price entry")
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleEntryDTO(*e))
}

// UpdateScheduleEntry updates price, unit, or end date of an entry.
func (h *Handler) UpdateScheduleEntry(w http.ResponseWriter, r *http.Request) {
	id := billing.ScheduleEntryID(chi.URLParam(r, "id"))

	var req UpdateScheduleEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var input billing.UpdateEntryInput
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid price", err)
			return
		}
		input.Price = &price
	}
	if req.Unit != nil {
		unit := billing.BillingUnit(*req.Unit)
		input.Unit = &unit
	}
	var ok bool
	input.EffectiveTo, ok = optionalDate(w, req.EffectiveTo, "effective_to")
	if !ok {
		return
	}

	e, err := h.Schedule.Update(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, err, "Failed to update price entry")
		return
	}
	writeJSON(w, http.StatusOK, toScheduleEntryDTO(*e))
}

// EndScheduleEntry closes an open price entry as of the given date.
func (h *Handler) EndScheduleEntry(w http.ResponseWriter, r *http.Request) {
	id := billing.ScheduleEntryID(chi.URLParam(r, "id"))

	var req EndAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	to, err := billing.ParseDate(req.EffectiveTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_to (use YYYY-MM-DD)", err)
		return
	}

	e, err := h.Schedule.End(r.Context(), id, to)
	if err != nil {
		writeDomainError(w, err, "Failed to end price entry")
		return
	}
	writeJSON(w, http.StatusOK, toScheduleEntryDTO(*e))
}

// DeleteScheduleEntry deletes a price entry whose start date is still in
// the future.
func (h *Handler) DeleteScheduleEntry(w http.ResponseWriter, r *http.Request) {
	id := billing.ScheduleEntryID(chi.URLParam(r, "id"))

	if err := h.Schedule.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete price entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// =============================================================================
// CHARGE HANDLERS
// =============================================================================

// GetCharges returns the itemized charge statement for a subject over
// the ?from= / ?to= period.
func (h *Handler) GetCharges(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	from, err := billing.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := billing.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	statement, err := h.Charges.Calculate(r.Context(), subject, from, to)
	if err != nil {
		writeDomainError(w, err, "Failed to calculate charges")
		return
	}
	writeJSON(w, http.StatusOK, toChargeStatementDTO(*statement))
}

// RunCharges expands a scope and calculates charges for every shift or
// cab member.
func (h *Handler) RunCharges(w http.ResponseWriter, r *http.Request) {
	var req ChargeRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asOf := billing.Today()
	if req.AsOf != "" {
		var err error
		asOf, err = billing.ParseDate(req.AsOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of (use YYYY-MM-DD)", err)
			return
		}
	}
	from, err := billing.ParseDate(req.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_start (use YYYY-MM-DD)", err)
		return
	}
	to, err := billing.ParseDate(req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_end (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Runs.Run(r.Context(), fromScopeDTO(req.Scope), asOf, from, to)
	if err != nil {
		writeDomainError(w, err, "Charge run failed")
		return
	}
	writeJSON(w, http.StatusOK, toChargeRunDTO(*result))
}

// LatestChargeRun returns the last run precomputed by the statement
// scheduler, if any.
func (h *Handler) LatestChargeRun(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	run := h.latestRun
	computedAt := h.computedAt
	h.mu.RUnlock()

	if run == nil {
		writeError(w, http.StatusNotFound, "No charge run computed yet", nil)
		return
	}
	dto := toChargeRunDTO(*run)
	dto.ComputedAt = computedAt.Format(time.RFC3339)
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) storeLatestRun(run *fleet.ChargeRunResult) {
	h.mu.Lock()
	h.latestRun = run
	h.computedAt = time.Now()
	h.mu.Unlock()
}

// =============================================================================
// SCOPE HANDLERS
// =============================================================================

// ResolveScope expands an application scope into its members as of a
// date.
func (h *Handler) ResolveScope(w http.ResponseWriter, r *http.Request) {
	var req ResolveScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asOf := billing.Today()
	if req.AsOf != "" {
		var err error
		asOf, err = billing.ParseDate(req.AsOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of (use YYYY-MM-DD)", err)
			return
		}
	}

	members, err := h.Resolver.Resolve(r.Context(), fromScopeDTO(req.Scope), asOf)
	if err != nil {
		writeDomainError(w, err, "Failed to resolve scope")
		return
	}

	dtos := make([]ScopeMemberDTO, len(members))
	for i, m := range members {
		dtos[i] = ScopeMemberDTO{Kind: string(m.Kind), ID: m.ID}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"as_of":   asOf.String(),
		"members": dtos,
	})
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListCabs returns all cabs.
func (h *Handler) ListCabs(w http.ResponseWriter, r *http.Request) {
	cabs, err := h.Fleet.ListCabs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cabs", err)
		return
	}
	dtos := make([]CabDTO, len(cabs))
	for i, c := range cabs {
		dtos[i] = toCabDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCab returns a single cab.
func (h *Handler) GetCab(w http.ResponseWriter, r *http.Request) {
	id := billing.CabID(chi.URLParam(r, "id"))

	c, err := h.Fleet.GetCab(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get cab", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Cab not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCabDTO(*c))
}

// SaveCab creates or updates a cab.
func (h *Handler) SaveCab(w http.ResponseWriter, r *http.Request) {
	var req CabDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("cab")
	}

	cab := fleet.Cab{
		ID:     billing.CabID(req.ID),
		Number: req.Number,
		Plate:  req.Plate,
		Make:   req.Make,
		Model:  req.Model,
		Active: req.Active,
	}
	if err := h.Fleet.SaveCab(r.Context(), cab); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cab", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCabDTO(cab))
}

// ListPersons returns all owners and drivers.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Fleet.ListPersons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list persons", err)
		return
	}
	dtos := make([]PersonDTO, len(persons))
	for i, p := range persons {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SavePerson creates or updates a person.
func (h *Handler) SavePerson(w http.ResponseWriter, r *http.Request) {
	var req PersonDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("per")
	}
	role := fleet.PersonRole(req.Role)
	if role != fleet.RoleOwner && role != fleet.RoleDriver {
		writeError(w, http.StatusBadRequest, "Role must be owner or driver", nil)
		return
	}

	p := fleet.Person{
		ID:     billing.PersonID(req.ID),
		Name:   req.Name,
		Role:   role,
		Active: req.Active,
	}
	if err := h.Fleet.SavePerson(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save person", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonDTO(p))
}

// ListShifts returns all shifts.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Fleet.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShift returns a single shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := billing.ShiftID(chi.URLParam(r, "id"))

	s, err := h.Fleet.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*s))
}

// SaveShift creates or updates a shift.
func (h *Handler) SaveShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("shift")
	}

	start, err := billing.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from (use YYYY-MM-DD)", err)
		return
	}
	end, ok := optionalDate(w, req.EffectiveTo, "effective_to")
	if !ok {
		return
	}
	status := fleet.ShiftStatus(req.Status)
	if status == "" {
		status = fleet.ShiftActive
	}

	s := fleet.Shift{
		ID:        billing.ShiftID(req.ID),
		CabID:     billing.CabID(req.CabID),
		Name:      req.Name,
		Status:    status,
		Operating: billing.DateInterval{Start: start, End: end},
	}
	if err := h.Fleet.SaveShift(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(s))
}

// ListProfiles returns all shift profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Fleet.ListProfiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles", err)
		return
	}
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = ProfileDTO{ID: string(p.ID), Name: p.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveProfile creates or updates a shift profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("prof")
	}

	p := fleet.ShiftProfile{ID: billing.ShiftProfileID(req.ID), Name: req.Name}
	if err := h.Fleet.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProfileDTO{ID: string(p.ID), Name: p.Name})
}

// AddProfileMember binds a shift to the profile in the URL for a date
// interval.
func (h *Handler) AddProfileMember(w http.ResponseWriter, r *http.Request) {
	profileID := billing.ShiftProfileID(chi.URLParam(r, "id"))

	var req MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("mem")
	}

	start, err := billing.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from (use YYYY-MM-DD)", err)
		return
	}
	end, ok := optionalDate(w, req.EffectiveTo, "effective_to")
	if !ok {
		return
	}

	m := fleet.ProfileMembership{
		ID:        req.ID,
		ProfileID: profileID,
		ShiftID:   billing.ShiftID(req.ShiftID),
		Interval:  billing.DateInterval{Start: start, End: end},
	}
	if err := h.Fleet.SaveMembership(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save membership", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": m.ID})
}

// ListProfileShifts returns the shifts in the profile on the ?on= date.
func (h *Handler) ListProfileShifts(w http.ResponseWriter, r *http.Request) {
	profileID := billing.ShiftProfileID(chi.URLParam(r, "id"))
	on, ok := queryDate(w, r, "on", billing.Today())
	if !ok {
		return
	}

	shifts, err := h.Fleet.ShiftsInProfile(r.Context(), profileID, on)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profile shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"on": on.String(), "shift_ids": shifts})
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListExpenseCategories returns all expense categories.
func (h *Handler) ListExpenseCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Fleet.ListExpenseCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expense categories", err)
		return
	}
	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = CategoryDTO{ID: c.ID, Code: c.Code, Name: c.Name, Scope: toScopeDTO(c.Scope), Active: c.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveExpenseCategory creates or updates an expense category.
func (h *Handler) SaveExpenseCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("exp")
	}

	c := fleet.ExpenseCategory{
		ID:     req.ID,
		Code:   req.Code,
		Name:   req.Name,
		Scope:  fromScopeDTO(req.Scope),
		Active: req.Active,
	}
	if err := h.Fleet.SaveExpenseCategory(r.Context(), c); err != nil {
		writeDomainError(w, err, "Failed to save expense category")
		return
	}
	writeJSON(w, http.StatusCreated, CategoryDTO{ID: c.ID, Code: c.Code, Name: c.Name, Scope: toScopeDTO(c.Scope), Active: c.Active})
}

// ListRevenueCategories returns all revenue categories.
func (h *Handler) ListRevenueCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Fleet.ListRevenueCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list revenue categories", err)
		return
	}
	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = CategoryDTO{ID: c.ID, Code: c.Code, Name: c.Name, Scope: toScopeDTO(c.Scope), Active: c.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveRevenueCategory creates or updates a revenue category.
func (h *Handler) SaveRevenueCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = newID("rev")
	}

	c := fleet.RevenueCategory{
		ID:     req.ID,
		Code:   req.Code,
		Name:   req.Name,
		Scope:  fromScopeDTO(req.Scope),
		Active: req.Active,
	}
	if err := h.Fleet.SaveRevenueCategory(r.Context(), c); err != nil {
		writeDomainError(w, err, "Failed to save revenue category")
		return
	}
	writeJSON(w, http.StatusCreated, CategoryDTO{ID: c.ID, Code: c.Code, Name: c.Name, Scope: toScopeDTO(c.Scope), Active: c.Active})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data. Dev environments only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if h.Resetter == nil {
		writeError(w, http.StatusForbidden, "Reset is disabled", nil)
		return
	}
	if err := h.Resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case billing.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, fallback, err)
	}
}

// subjectFromURL builds the billing subject from the {kind}/{id} path
// segments, writing a 400 on bad input.
func subjectFromURL(w http.ResponseWriter, r *http.Request) (billing.Subject, bool) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	var subject billing.Subject
	switch billing.SubjectKind(kind) {
	case billing.SubjectShift:
		subject = billing.ShiftSubject(billing.ShiftID(id))
	case billing.SubjectCab:
		subject = billing.CabSubject(billing.CabID(id))
	default:
		writeError(w, http.StatusBadRequest, "Subject kind must be shift or cab", nil)
		return billing.Subject{}, false
	}
	if err := subject.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return billing.Subject{}, false
	}
	return subject, true
}

// queryDate parses an optional query-string date, falling back to def.
func queryDate(w http.ResponseWriter, r *http.Request, param string, def billing.Date) (billing.Date, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def, true
	}
	d, err := billing.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+param+" date (use YYYY-MM-DD)", err)
		return billing.Date{}, false
	}
	return d, true
}

// optionalDate parses a nullable body date, writing a 400 on bad input.
func optionalDate(w http.ResponseWriter, raw *string, field string) (*billing.Date, bool) {
	if raw == nil {
		return nil, true
	}
	d, err := billing.ParseDate(*raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+field+" (use YYYY-MM-DD)", err)
		return nil, false
	}
	return &d, true
}

var idCounter uint64
var idMu sync.Mutex

func newID(prefix string) string {
	idMu.Lock()
	idCounter++
	n := idCounter
	idMu.Unlock()
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), n)
}
