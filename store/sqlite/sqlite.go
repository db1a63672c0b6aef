/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements billing.AttributeTypeStore, billing.AssignmentStore,
  billing.ScheduleStore and fleet.Store using SQLite. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

OVERLAP ENFORCEMENT:
  SaveAssignment and SaveEntry run the overlap query and the write inside
  one database transaction while holding the store's write lock, so a
  check-then-insert race between two callers for the same key cannot
  produce overlapping intervals. The overlap predicate treats a NULL end
  date as +infinity.

DATE STORAGE:
  Dates are stored as 'YYYY-MM-DD' TEXT. ISO dates compare correctly as
  strings, so the overlap and active-on predicates are plain comparisons.

KEY TABLES:
  attribute_types:     Master catalogue (code UNIQUE)
  assignments:         Temporal attribute assignments
  cost_schedule:       Dated pricing per attribute type
                       (UNIQUE(attribute_type_id, effective_from))
  cabs/persons/shifts: The roster
  shift_profiles, profile_memberships: Profile targeting
  expense_categories, revenue_categories: Scoped categories

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block, a single writer at a time, better crash recovery.

SEE ALSO:
  - billing: Interface definitions
  - billing/store/memory.go: In-memory implementation for tests
  - fleet.go (this package): Roster and category persistence
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cabfleet/billing-engine/billing"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Attribute type catalogue
	CREATE TABLE IF NOT EXISTS attribute_types (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT,
		data_type TEXT NOT NULL,
		requires_value BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Temporal attribute assignments
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		subject_kind TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		attribute_type_id TEXT NOT NULL,
		value TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- Overlap search and active-on-date lookups (hot path)
	CREATE INDEX IF NOT EXISTS idx_assignments_key_dates
		ON assignments(subject_kind, subject_id, attribute_type_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_assignments_attr_dates
		ON assignments(attribute_type_id, start_date);

	-- Cost schedule
	CREATE TABLE IF NOT EXISTS cost_schedule (
		id TEXT PRIMARY KEY,
		attribute_type_id TEXT NOT NULL,
		price TEXT NOT NULL,
		unit TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		effective_to TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(attribute_type_id, effective_from)
	);

	CREATE INDEX IF NOT EXISTS idx_cost_schedule_attr
		ON cost_schedule(attribute_type_id, effective_from DESC);

	-- Roster
	CREATE TABLE IF NOT EXISTS cabs (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		plate TEXT,
		make TEXT,
		model TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_persons_role_active
		ON persons(role, active);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		cab_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_status
		ON shifts(status, start_date);

	CREATE TABLE IF NOT EXISTS shift_profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profile_memberships (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		shift_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_profile
		ON profile_memberships(profile_id, start_date);

	-- Scoped categories
	CREATE TABLE IF NOT EXISTS expense_categories (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		scope_kind TEXT NOT NULL,
		shift_id TEXT,
		profile_id TEXT,
		person_id TEXT,
		attribute_type_id TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS revenue_categories (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		scope_kind TEXT NOT NULL,
		shift_id TEXT,
		profile_id TEXT,
		person_id TEXT,
		attribute_type_id TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTRIBUTE TYPE STORE (billing.AttributeTypeStore interface)
// =============================================================================

// SaveType inserts or updates an attribute type.
func (s *Store) SaveType(ctx context.Context, at billing.AttributeType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO attribute_types (id, code, name, category, data_type, requires_value, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			data_type = excluded.data_type,
			requires_value = excluded.requires_value,
			active = excluded.active
	`

	_, err := s.db.ExecContext(ctx, query,
		at.ID, at.Code, at.Name, at.Category, at.DataType, at.RequiresValue, at.Active,
	)
	if err != nil && isUniqueConstraintError(err) {
		return billing.ErrDuplicateCode
	}
	return err
}

// GetType retrieves an attribute type by ID.
func (s *Store) GetType(ctx context.Context, id billing.AttributeTypeID) (*billing.AttributeType, error) {
	return s.getType(ctx, "id", string(id))
}

// GetTypeByCode retrieves an attribute type by its business key.
func (s *Store) GetTypeByCode(ctx context.Context, code string) (*billing.AttributeType, error) {
	return s.getType(ctx, "code", code)
}

func (s *Store) getType(ctx context.Context, column, value string) (*billing.AttributeType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var at billing.AttributeType
	var category sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, code, name, category, data_type, requires_value, active FROM attribute_types WHERE "+column+" = ?",
		value,
	).Scan(&at.ID, &at.Code, &at.Name, &category, &at.DataType, &at.RequiresValue, &at.Active)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	at.Category = category.String
	return &at, nil
}

// ListTypes returns all attribute types ordered by code.
func (s *Store) ListTypes(ctx context.Context) ([]billing.AttributeType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, code, name, category, data_type, requires_value, active FROM attribute_types ORDER BY code",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []billing.AttributeType
	for rows.Next() {
		var at billing.AttributeType
		var category sql.NullString
		if err := rows.Scan(&at.ID, &at.Code, &at.Name, &category, &at.DataType, &at.RequiresValue, &at.Active); err != nil {
			return nil, err
		}
		at.Category = category.String
		types = append(types, at)
	}
	return types, rows.Err()
}

// =============================================================================
// ASSIGNMENT STORE (billing.AssignmentStore interface)
// =============================================================================

// SaveAssignment persists an assignment. The overlap query and the write
// share one transaction under the store write lock, so concurrent writers
// for the same (subject, attribute type) key serialize here.
func (s *Store) SaveAssignment(ctx context.Context, a billing.TemporalAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// An existing interval overlaps the new one iff it starts on or before
	// the new end and ends on or after the new start. Open ends use a
	// far-future sentinel so the string comparison still works.
	conflicts, err := overlapQuery(ctx, tx, `
		SELECT id FROM assignments
		WHERE subject_kind = ? AND subject_id = ? AND attribute_type_id = ? AND id != ?
		  AND (end_date IS NULL OR end_date >= ?)
		  AND start_date <= ?
		ORDER BY start_date
	`, string(a.Subject.Kind), a.Subject.ID, a.AttributeTypeID, a.ID,
		dateString(a.Interval.Start), endOrMax(a.Interval.End))
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		subject := a.Subject
		return &billing.OverlapError{
			AttributeTypeID: a.AttributeTypeID,
			Subject:         &subject,
			Interval:        a.Interval,
			ConflictIDs:     conflicts,
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assignments
		(id, subject_kind, subject_id, attribute_type_id, value, start_date, end_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			value = excluded.value,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			notes = excluded.notes
	`,
		a.ID, string(a.Subject.Kind), a.Subject.ID, a.AttributeTypeID,
		a.Value, dateString(a.Interval.Start), nullDate(a.Interval.End),
		a.Notes, a.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}

	return tx.Commit()
}

// GetAssignment retrieves an assignment by ID.
func (s *Store) GetAssignment(ctx context.Context, id billing.AssignmentID) (*billing.TemporalAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments, err := s.queryAssignments(ctx, assignmentSelect+" WHERE id = ?", id)
	if err != nil || len(assignments) == 0 {
		return nil, err
	}
	return &assignments[0], nil
}

// ActiveOn returns the assignment of the attribute type covering the date.
func (s *Store) ActiveOn(ctx context.Context, subject billing.Subject, attributeTypeID billing.AttributeTypeID, on billing.Date) (*billing.TemporalAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments, err := s.queryAssignments(ctx, assignmentSelect+`
		WHERE subject_kind = ? AND subject_id = ? AND attribute_type_id = ?
		  AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		LIMIT 1
	`, string(subject.Kind), subject.ID, attributeTypeID, dateString(on), dateString(on))
	if err != nil || len(assignments) == 0 {
		return nil, err
	}
	return &assignments[0], nil
}

// ActiveAssignments returns every assignment covering the date.
func (s *Store) ActiveAssignments(ctx context.Context, subject billing.Subject, on billing.Date) ([]billing.TemporalAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAssignments(ctx, assignmentSelect+`
		WHERE subject_kind = ? AND subject_id = ?
		  AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date DESC
	`, string(subject.Kind), subject.ID, dateString(on), dateString(on))
}

// History returns all assignments for a subject, newest first.
func (s *Store) History(ctx context.Context, subject billing.Subject) ([]billing.TemporalAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAssignments(ctx, assignmentSelect+`
		WHERE subject_kind = ? AND subject_id = ?
		ORDER BY start_date DESC
	`, string(subject.Kind), subject.ID)
}

// SubjectsWithAttribute returns every subject holding an active assignment
// of the attribute type on the date.
func (s *Store) SubjectsWithAttribute(ctx context.Context, attributeTypeID billing.AttributeTypeID, on billing.Date) ([]billing.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT subject_kind, subject_id FROM assignments
		WHERE attribute_type_id = ?
		  AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY subject_kind, subject_id
	`, attributeTypeID, dateString(on), dateString(on))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []billing.Subject
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, err
		}
		subjects = append(subjects, billing.Subject{Kind: billing.SubjectKind(kind), ID: id})
	}
	return subjects, rows.Err()
}

// DeleteAssignment removes an assignment. The "not in the past" rule lives
// in the service layer.
func (s *Store) DeleteAssignment(ctx context.Context, id billing.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
	return err
}

const assignmentSelect = `
	SELECT id, subject_kind, subject_id, attribute_type_id, value, start_date, end_date, notes, created_at
	FROM assignments
`

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]billing.TemporalAssignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []billing.TemporalAssignment
	for rows.Next() {
		var (
			a         billing.TemporalAssignment
			kind      string
			value     sql.NullString
			start     string
			end       sql.NullString
			notes     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&a.ID, &kind, &a.Subject.ID, &a.AttributeTypeID,
			&value, &start, &end, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}

		a.Subject.Kind = billing.SubjectKind(kind)
		a.Value = value.String
		a.Notes = notes.String
		a.Interval = scanInterval(start, end)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// =============================================================================
// SCHEDULE STORE (billing.ScheduleStore interface)
// =============================================================================

// SaveEntry persists a schedule entry with the same atomic overlap
// discipline as SaveAssignment, keyed by attribute type. The schema's
// UNIQUE(attribute_type_id, effective_from) backs up the natural key.
func (s *Store) SaveEntry(ctx context.Context, e billing.CostScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	conflicts, err := overlapQuery(ctx, tx, `
		SELECT id FROM cost_schedule
		WHERE attribute_type_id = ? AND id != ?
		  AND (effective_to IS NULL OR effective_to >= ?)
		  AND effective_from <= ?
		ORDER BY effective_from
	`, e.AttributeTypeID, e.ID,
		dateString(e.Validity.Start), endOrMax(e.Validity.End))
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &billing.OverlapError{
			AttributeTypeID: e.AttributeTypeID,
			Interval:        e.Validity,
			ConflictIDs:     conflicts,
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cost_schedule
		(id, attribute_type_id, price, unit, effective_from, effective_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			price = excluded.price,
			unit = excluded.unit,
			effective_to = excluded.effective_to
	`,
		e.ID, e.AttributeTypeID, e.Price.String(), e.Unit,
		dateString(e.Validity.Start), nullDate(e.Validity.End),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &billing.OverlapError{
				AttributeTypeID: e.AttributeTypeID,
				Interval:        e.Validity,
				ConflictIDs:     []string{"effective_from=" + dateString(e.Validity.Start)},
			}
		}
		return fmt.Errorf("failed to save schedule entry: %w", err)
	}

	return tx.Commit()
}

// GetEntry retrieves a schedule entry by ID.
func (s *Store) GetEntry(ctx context.Context, id billing.ScheduleEntryID) (*billing.CostScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryEntries(ctx, entrySelect+" WHERE id = ?", id)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// EntryActiveOn returns the entry covering the date.
func (s *Store) EntryActiveOn(ctx context.Context, attributeTypeID billing.AttributeTypeID, on billing.Date) (*billing.CostScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryEntries(ctx, entrySelect+`
		WHERE attribute_type_id = ?
		  AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)
		LIMIT 1
	`, attributeTypeID, dateString(on), dateString(on))
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// EntriesFor returns all entries for an attribute type, newest first.
func (s *Store) EntriesFor(ctx context.Context, attributeTypeID billing.AttributeTypeID) ([]billing.CostScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, entrySelect+`
		WHERE attribute_type_id = ?
		ORDER BY effective_from DESC
	`, attributeTypeID)
}

// DeleteEntry removes a schedule entry.
func (s *Store) DeleteEntry(ctx context.Context, id billing.ScheduleEntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM cost_schedule WHERE id = ?", id)
	return err
}

const entrySelect = `
	SELECT id, attribute_type_id, price, unit, effective_from, effective_to, created_at
	FROM cost_schedule
`

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]billing.CostScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []billing.CostScheduleEntry
	for rows.Next() {
		var (
			e         billing.CostScheduleEntry
			price     string
			from      string
			to        sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.AttributeTypeID, &price, &e.Unit, &from, &to, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}

		e.Price = billing.MustParseMoney(price)
		e.Validity = scanInterval(from, to)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"assignments", "cost_schedule", "attribute_types",
		"cabs", "persons", "shifts", "shift_profiles", "profile_memberships",
		"expense_categories", "revenue_categories",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func overlapQuery(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlaps: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func dateString(d billing.Date) string { return d.String() }

func nullDate(d *billing.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// endOrMax substitutes a far-future sentinel for an open end so the
// "existing start <= new end" comparison always passes.
func endOrMax(d *billing.Date) string {
	if d == nil {
		return "9999-12-31"
	}
	return d.String()
}

func scanInterval(start string, end sql.NullString) billing.DateInterval {
	iv := billing.DateInterval{}
	iv.Start, _ = billing.ParseDate(start)
	if end.Valid {
		e, _ := billing.ParseDate(end.String)
		iv.End = &e
	}
	return iv
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
