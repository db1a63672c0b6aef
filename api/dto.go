/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Attribute types:
    AttributeTypeDTO, CreateAttributeTypeRequest, UpdateAttributeTypeRequest

  Assignments:
    AssignmentDTO, CreateAssignmentRequest, UpdateAssignmentRequest

  Cost schedule:
    ScheduleEntryDTO, CreateScheduleEntryRequest, UpdateScheduleEntryRequest

  Charges:
    ChargeStatementDTO, ChargeLineDTO, ChargeRunDTO

  Scopes:
    ScopeDTO, ScopeMemberDTO, ResolveScopeRequest

  Roster:
    CabDTO, PersonDTO, ShiftDTO, ProfileDTO, MembershipRequest, CategoryDTO

MONEY:
  Prices and amounts travel as JSON strings ("30.00") produced by
  decimal.String, never as floats. Clients that need arithmetic parse
  them; clients that display pass them through.

DATES:
  All dates are ISO "YYYY-MM-DD" strings. An absent or null end date
  means open-ended.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route definitions
*/
package api

import (
	"time"

	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
)

// =============================================================================
// ATTRIBUTE TYPES
// =============================================================================

// AttributeTypeDTO represents an attribute type in API responses.
type AttributeTypeDTO struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	DataType      string `json:"data_type"`
	RequiresValue bool   `json:"requires_value"`
	Active        bool   `json:"active"`
}

// CreateAttributeTypeRequest is the request to register an attribute type.
type CreateAttributeTypeRequest struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	DataType      string `json:"data_type"`
	RequiresValue bool   `json:"requires_value"`
}

// UpdateAttributeTypeRequest carries the mutable attribute type fields.
// The code is immutable; absent fields are left untouched.
type UpdateAttributeTypeRequest struct {
	Name          *string `json:"name,omitempty"`
	Category      *string `json:"category,omitempty"`
	DataType      *string `json:"data_type,omitempty"`
	RequiresValue *bool   `json:"requires_value,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// AssignmentDTO represents a temporal attribute assignment.
type AssignmentDTO struct {
	ID              string  `json:"id"`
	SubjectKind     string  `json:"subject_kind"`
	SubjectID       string  `json:"subject_id"`
	AttributeTypeID string  `json:"attribute_type_id"`
	Value           string  `json:"value,omitempty"`
	EffectiveFrom   string  `json:"effective_from"`
	EffectiveTo     *string `json:"effective_to,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// CreateAssignmentRequest is the request to assign an attribute. The
// subject comes from the URL path, not the body.
type CreateAssignmentRequest struct {
	AttributeTypeID string  `json:"attribute_type_id"`
	Value           string  `json:"value,omitempty"`
	EffectiveFrom   string  `json:"effective_from"`
	EffectiveTo     *string `json:"effective_to,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// UpdateAssignmentRequest carries the mutable assignment fields.
type UpdateAssignmentRequest struct {
	Value         *string `json:"value,omitempty"`
	EffectiveFrom *string `json:"effective_from,omitempty"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	ClearEnd      bool    `json:"clear_end,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// EndAssignmentRequest closes an open assignment.
type EndAssignmentRequest struct {
	EffectiveTo string `json:"effective_to"`
}

// =============================================================================
// COST SCHEDULE
// =============================================================================

// ScheduleEntryDTO represents a cost schedule entry.
type ScheduleEntryDTO struct {
	ID              string  `json:"id"`
	AttributeTypeID string  `json:"attribute_type_id"`
	Price           string  `json:"price"`
	Unit            string  `json:"unit"`
	EffectiveFrom   string  `json:"effective_from"`
	EffectiveTo     *string `json:"effective_to,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// CreateScheduleEntryRequest prices an attribute type from a date. The
// attribute type comes from the URL path.
type CreateScheduleEntryRequest struct {
	Price         string  `json:"price"`
	Unit          string  `json:"unit"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
}

// UpdateScheduleEntryRequest carries the mutable entry fields. The
// effective_from date is immutable; create a new entry instead.
type UpdateScheduleEntryRequest struct {
	Price       *string `json:"price,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	EffectiveTo *string `json:"effective_to,omitempty"`
}

// =============================================================================
// CHARGES
// =============================================================================

// ChargeLineDTO is one line of a charge statement.
type ChargeLineDTO struct {
	AssignmentID    string `json:"assignment_id"`
	AttributeTypeID string `json:"attribute_type_id"`
	AttributeCode   string `json:"attribute_code"`
	AttributeName   string `json:"attribute_name"`
	Value           string `json:"value,omitempty"`
	UnitPrice       string `json:"unit_price"`
	Unit            string `json:"unit"`
	ChargeStart     string `json:"charge_start"`
	ChargeEnd       string `json:"charge_end"`
	ActiveDays      int    `json:"active_days"`
	Amount          string `json:"amount"`
}

// ChargeStatementDTO is the itemized charge result for one subject.
type ChargeStatementDTO struct {
	SubjectKind string          `json:"subject_kind"`
	SubjectID   string          `json:"subject_id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	LineItems   []ChargeLineDTO `json:"line_items"`
	Total       string          `json:"total"`
}

// ChargeRunRequest triggers a scoped charge run.
type ChargeRunRequest struct {
	Scope       ScopeDTO `json:"scope"`
	AsOf        string   `json:"as_of,omitempty"` // default today
	PeriodStart string   `json:"period_start"`
	PeriodEnd   string   `json:"period_end"`
}

// ChargeRunDTO is the outcome of a scoped charge run.
type ChargeRunDTO struct {
	Scope       ScopeDTO             `json:"scope"`
	AsOf        string               `json:"as_of"`
	PeriodStart string               `json:"period_start"`
	PeriodEnd   string               `json:"period_end"`
	Statements  []ChargeStatementDTO `json:"statements"`
	Persons     []string             `json:"persons,omitempty"`
	GrandTotal  string               `json:"grand_total"`
	ComputedAt  string               `json:"computed_at,omitempty"`
}

// =============================================================================
// SCOPES
// =============================================================================

// ScopeDTO represents an application scope. Exactly one target field must
// be set for the kinds that take a target.
type ScopeDTO struct {
	Kind            string `json:"kind"`
	ShiftID         string `json:"shift_id,omitempty"`
	ShiftProfileID  string `json:"shift_profile_id,omitempty"`
	PersonID        string `json:"person_id,omitempty"`
	AttributeTypeID string `json:"attribute_type_id,omitempty"`
}

// ResolveScopeRequest asks for the members of a scope on a date.
type ResolveScopeRequest struct {
	Scope ScopeDTO `json:"scope"`
	AsOf  string   `json:"as_of,omitempty"` // default today
}

// ScopeMemberDTO is one resolved scope member.
type ScopeMemberDTO struct {
	Kind string `json:"kind"` // "shift", "person", or "cab"
	ID   string `json:"id"`
}

// =============================================================================
// ROSTER
// =============================================================================

// CabDTO represents a vehicle.
type CabDTO struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Plate  string `json:"plate,omitempty"`
	Make   string `json:"make,omitempty"`
	Model  string `json:"model,omitempty"`
	Active bool   `json:"active"`
}

// PersonDTO represents an owner or driver.
type PersonDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// ShiftDTO represents a shift on a cab.
type ShiftDTO struct {
	ID            string  `json:"id"`
	CabID         string  `json:"cab_id"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
}

// ProfileDTO represents a shift profile.
type ProfileDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MembershipRequest binds a shift to a profile for a date interval.
type MembershipRequest struct {
	ID            string  `json:"id"`
	ShiftID       string  `json:"shift_id"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
}

// CategoryDTO represents an expense or revenue category with its scope.
type CategoryDTO struct {
	ID     string   `json:"id"`
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Scope  ScopeDTO `json:"scope"`
	Active bool     `json:"active"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAttributeTypeDTO(at billing.AttributeType) AttributeTypeDTO {
	return AttributeTypeDTO{
		ID:            string(at.ID),
		Code:          at.Code,
		Name:          at.Name,
		Category:      at.Category,
		DataType:      string(at.DataType),
		RequiresValue: at.RequiresValue,
		Active:        at.Active,
	}
}

func toAssignmentDTO(a billing.TemporalAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:              string(a.ID),
		SubjectKind:     string(a.Subject.Kind),
		SubjectID:       a.Subject.ID,
		AttributeTypeID: string(a.AttributeTypeID),
		Value:           a.Value,
		EffectiveFrom:   a.Interval.Start.String(),
		Notes:           a.Notes,
	}
	if a.Interval.End != nil {
		dto.EffectiveTo = strPtr(a.Interval.End.String())
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAssignmentDTOs(as []billing.TemporalAssignment) []AssignmentDTO {
	dtos := make([]AssignmentDTO, len(as))
	for i, a := range as {
		dtos[i] = toAssignmentDTO(a)
	}
	return dtos
}

func toScheduleEntryDTO(e billing.CostScheduleEntry) ScheduleEntryDTO {
	dto := ScheduleEntryDTO{
		ID:              string(e.ID),
		AttributeTypeID: string(e.AttributeTypeID),
		Price:           e.Price.String(),
		Unit:            string(e.Unit),
		EffectiveFrom:   e.Validity.Start.String(),
	}
	if e.Validity.End != nil {
		dto.EffectiveTo = strPtr(e.Validity.End.String())
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toChargeStatementDTO(s billing.ChargeStatement) ChargeStatementDTO {
	lines := make([]ChargeLineDTO, len(s.LineItems))
	for i, li := range s.LineItems {
		lines[i] = ChargeLineDTO{
			AssignmentID:    string(li.AssignmentID),
			AttributeTypeID: string(li.AttributeTypeID),
			AttributeCode:   li.AttributeCode,
			AttributeName:   li.AttributeName,
			Value:           li.Value,
			UnitPrice:       li.UnitPrice.String(),
			Unit:            string(li.Unit),
			ChargeStart:     li.ChargeStart.String(),
			ChargeEnd:       li.ChargeEnd.String(),
			ActiveDays:      li.ActiveDays,
			Amount:          li.Amount.String(),
		}
	}
	return ChargeStatementDTO{
		SubjectKind: string(s.Subject.Kind),
		SubjectID:   s.Subject.ID,
		PeriodStart: s.PeriodStart.String(),
		PeriodEnd:   s.PeriodEnd.String(),
		LineItems:   lines,
		Total:       s.Total.String(),
	}
}

func toChargeRunDTO(r fleet.ChargeRunResult) ChargeRunDTO {
	statements := make([]ChargeStatementDTO, len(r.Statements))
	for i, s := range r.Statements {
		statements[i] = toChargeStatementDTO(s)
	}
	persons := make([]string, len(r.Persons))
	for i, p := range r.Persons {
		persons[i] = string(p)
	}
	return ChargeRunDTO{
		Scope:       toScopeDTO(r.Scope),
		AsOf:        r.AsOf.String(),
		PeriodStart: r.PeriodStart.String(),
		PeriodEnd:   r.PeriodEnd.String(),
		Statements:  statements,
		Persons:     persons,
		GrandTotal:  r.GrandTotal.String(),
	}
}

func toScopeDTO(s billing.ApplicationScope) ScopeDTO {
	return ScopeDTO{
		Kind:            string(s.Kind),
		ShiftID:         string(s.ShiftID),
		ShiftProfileID:  string(s.ShiftProfileID),
		PersonID:        string(s.PersonID),
		AttributeTypeID: string(s.AttributeTypeID),
	}
}

func fromScopeDTO(dto ScopeDTO) billing.ApplicationScope {
	return billing.ApplicationScope{
		Kind:            billing.ScopeKind(dto.Kind),
		ShiftID:         billing.ShiftID(dto.ShiftID),
		ShiftProfileID:  billing.ShiftProfileID(dto.ShiftProfileID),
		PersonID:        billing.PersonID(dto.PersonID),
		AttributeTypeID: billing.AttributeTypeID(dto.AttributeTypeID),
	}
}

func toCabDTO(c fleet.Cab) CabDTO {
	return CabDTO{
		ID:     string(c.ID),
		Number: c.Number,
		Plate:  c.Plate,
		Make:   c.Make,
		Model:  c.Model,
		Active: c.Active,
	}
}

func toPersonDTO(p fleet.Person) PersonDTO {
	return PersonDTO{
		ID:     string(p.ID),
		Name:   p.Name,
		Role:   string(p.Role),
		Active: p.Active,
	}
}

func toShiftDTO(s fleet.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:            string(s.ID),
		CabID:         string(s.CabID),
		Name:          s.Name,
		Status:        string(s.Status),
		EffectiveFrom: s.Operating.Start.String(),
	}
	if s.Operating.End != nil {
		dto.EffectiveTo = strPtr(s.Operating.End.String())
	}
	return dto
}

func strPtr(s string) *string {
	return &s
}
