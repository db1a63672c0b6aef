/*
fleet.go - Roster and category persistence (fleet.Store interface)

Cabs, persons, shifts, shift profiles, profile memberships, and the
expense/revenue categories with their application scopes. Scope targets
are stored in per-kind columns; the scope invariant is validated in the
fleet package before anything reaches this layer, and once more here on
read via billing.ApplicationScope.Validate in the service paths.
*/
package sqlite

import (
	"context"
	"database/sql"

	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
)

var _ fleet.Store = (*Store)(nil)

// =============================================================================
// CABS
// =============================================================================

func (s *Store) SaveCab(ctx context.Context, c fleet.Cab) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cabs (id, number, plate, make, model, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			plate = excluded.plate,
			make = excluded.make,
			model = excluded.model,
			active = excluded.active
	`, c.ID, c.Number, c.Plate, c.Make, c.Model, c.Active)
	return err
}

func (s *Store) GetCab(ctx context.Context, id billing.CabID) (*fleet.Cab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c fleet.Cab
	var plate, carMake, model sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, number, plate, make, model, active FROM cabs WHERE id = ?", id,
	).Scan(&c.ID, &c.Number, &plate, &carMake, &model, &c.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Plate, c.Make, c.Model = plate.String, carMake.String, model.String
	return &c, nil
}

func (s *Store) ListCabs(ctx context.Context) ([]fleet.Cab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, number, plate, make, model, active FROM cabs ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cabs []fleet.Cab
	for rows.Next() {
		var c fleet.Cab
		var plate, carMake, model sql.NullString
		if err := rows.Scan(&c.ID, &c.Number, &plate, &carMake, &model, &c.Active); err != nil {
			return nil, err
		}
		c.Plate, c.Make, c.Model = plate.String, carMake.String, model.String
		cabs = append(cabs, c)
	}
	return cabs, rows.Err()
}

// =============================================================================
// PERSONS
// =============================================================================

func (s *Store) SavePerson(ctx context.Context, p fleet.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, name, role, active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			active = excluded.active
	`, p.ID, p.Name, p.Role, p.Active)
	return err
}

func (s *Store) GetPerson(ctx context.Context, id billing.PersonID) (*fleet.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p fleet.Person
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, role, active FROM persons WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Role, &p.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPersons(ctx context.Context) ([]fleet.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, role, active FROM persons ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []fleet.Person
	for rows.Next() {
		var p fleet.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.Active); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *Store) ActivePersons(ctx context.Context, role fleet.PersonRole) ([]billing.PersonID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM persons WHERE role = ? AND active = TRUE ORDER BY id", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []billing.PersonID
	for rows.Next() {
		var id billing.PersonID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =============================================================================
// SHIFTS
// =============================================================================

func (s *Store) SaveShift(ctx context.Context, sh fleet.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (id, cab_id, name, status, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cab_id = excluded.cab_id,
			name = excluded.name,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`, sh.ID, sh.CabID, sh.Name, sh.Status,
		dateString(sh.Operating.Start), nullDate(sh.Operating.End))
	return err
}

func (s *Store) GetShift(ctx context.Context, id billing.ShiftID) (*fleet.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts, err := s.queryShifts(ctx, shiftSelect+" WHERE id = ?", id)
	if err != nil || len(shifts) == 0 {
		return nil, err
	}
	return &shifts[0], nil
}

func (s *Store) ListShifts(ctx context.Context) ([]fleet.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryShifts(ctx, shiftSelect+" ORDER BY name")
}

func (s *Store) ActiveShifts(ctx context.Context, on billing.Date) ([]billing.ShiftID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM shifts
		WHERE status = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY id
	`, fleet.ShiftActive, dateString(on), dateString(on))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []billing.ShiftID
	for rows.Next() {
		var id billing.ShiftID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const shiftSelect = "SELECT id, cab_id, name, status, start_date, end_date FROM shifts"

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]fleet.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []fleet.Shift
	for rows.Next() {
		var sh fleet.Shift
		var start string
		var end sql.NullString
		if err := rows.Scan(&sh.ID, &sh.CabID, &sh.Name, &sh.Status, &start, &end); err != nil {
			return nil, err
		}
		sh.Operating = scanInterval(start, end)
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// =============================================================================
// SHIFT PROFILES
// =============================================================================

func (s *Store) SaveProfile(ctx context.Context, p fleet.ShiftProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shift_profiles (id, name)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, p.ID, p.Name)
	return err
}

func (s *Store) ListProfiles(ctx context.Context) ([]fleet.ShiftProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM shift_profiles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []fleet.ShiftProfile
	for rows.Next() {
		var p fleet.ShiftProfile
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) SaveMembership(ctx context.Context, m fleet.ProfileMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_memberships (id, profile_id, shift_id, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`, m.ID, m.ProfileID, m.ShiftID,
		dateString(m.Interval.Start), nullDate(m.Interval.End))
	return err
}

func (s *Store) ShiftsInProfile(ctx context.Context, id billing.ShiftProfileID, on billing.Date) ([]billing.ShiftID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT shift_id FROM profile_memberships
		WHERE profile_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY shift_id
	`, id, dateString(on), dateString(on))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []billing.ShiftID
	for rows.Next() {
		var shiftID billing.ShiftID
		if err := rows.Scan(&shiftID); err != nil {
			return nil, err
		}
		ids = append(ids, shiftID)
	}
	return ids, rows.Err()
}

// =============================================================================
// EXPENSE / REVENUE CATEGORIES
// =============================================================================

func (s *Store) SaveExpenseCategory(ctx context.Context, c fleet.ExpenseCategory) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.saveCategory(ctx, "expense_categories", c.ID, c.Code, c.Name, c.Scope, c.Active)
}

func (s *Store) ListExpenseCategories(ctx context.Context) ([]fleet.ExpenseCategory, error) {
	rows, err := s.listCategories(ctx, "expense_categories")
	if err != nil {
		return nil, err
	}
	categories := make([]fleet.ExpenseCategory, len(rows))
	for i, r := range rows {
		categories[i] = fleet.ExpenseCategory(r)
	}
	return categories, nil
}

func (s *Store) SaveRevenueCategory(ctx context.Context, c fleet.RevenueCategory) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.saveCategory(ctx, "revenue_categories", c.ID, c.Code, c.Name, c.Scope, c.Active)
}

func (s *Store) ListRevenueCategories(ctx context.Context) ([]fleet.RevenueCategory, error) {
	rows, err := s.listCategories(ctx, "revenue_categories")
	if err != nil {
		return nil, err
	}
	categories := make([]fleet.RevenueCategory, len(rows))
	for i, r := range rows {
		categories[i] = fleet.RevenueCategory(r)
	}
	return categories, nil
}

// categoryRow is the shared shape of both category tables.
type categoryRow struct {
	ID     string
	Code   string
	Name   string
	Scope  billing.ApplicationScope
	Active bool
}

func (s *Store) saveCategory(ctx context.Context, table, id, code, name string, scope billing.ApplicationScope, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+`
		(id, code, name, scope_kind, shift_id, profile_id, person_id, attribute_type_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			scope_kind = excluded.scope_kind,
			shift_id = excluded.shift_id,
			profile_id = excluded.profile_id,
			person_id = excluded.person_id,
			attribute_type_id = excluded.attribute_type_id,
			active = excluded.active
	`, id, code, name, scope.Kind,
		nullString(string(scope.ShiftID)), nullString(string(scope.ShiftProfileID)),
		nullString(string(scope.PersonID)), nullString(string(scope.AttributeTypeID)),
		active)
	return err
}

func (s *Store) listCategories(ctx context.Context, table string) ([]categoryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, scope_kind, shift_id, profile_id, person_id, attribute_type_id, active
		FROM `+table+` ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []categoryRow
	for rows.Next() {
		var c categoryRow
		var kind string
		var shiftID, profileID, personID, attrID sql.NullString
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &kind,
			&shiftID, &profileID, &personID, &attrID, &c.Active); err != nil {
			return nil, err
		}
		c.Scope = billing.ApplicationScope{
			Kind:            billing.ScopeKind(kind),
			ShiftID:         billing.ShiftID(shiftID.String),
			ShiftProfileID:  billing.ShiftProfileID(profileID.String),
			PersonID:        billing.PersonID(personID.String),
			AttributeTypeID: billing.AttributeTypeID(attrID.String),
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
