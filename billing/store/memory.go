// Package store provides in-memory implementations of the billing store
// interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/cabfleet/billing-engine/billing"
)

// =============================================================================
// MEMORY STORE - Implements AttributeTypeStore, AssignmentStore, ScheduleStore
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	types       map[billing.AttributeTypeID]billing.AttributeType
	assignments map[billing.AssignmentID]billing.TemporalAssignment
	entries     map[billing.ScheduleEntryID]billing.CostScheduleEntry
}

func NewMemory() *Memory {
	return &Memory{
		types:       make(map[billing.AttributeTypeID]billing.AttributeType),
		assignments: make(map[billing.AssignmentID]billing.TemporalAssignment),
		entries:     make(map[billing.ScheduleEntryID]billing.CostScheduleEntry),
	}
}

// =============================================================================
// ATTRIBUTE TYPES
// =============================================================================

func (m *Memory) SaveType(_ context.Context, at billing.AttributeType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.types {
		if existing.Code == at.Code && id != at.ID {
			return billing.ErrDuplicateCode
		}
	}
	m.types[at.ID] = at
	return nil
}

func (m *Memory) GetType(_ context.Context, id billing.AttributeTypeID) (*billing.AttributeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	at, ok := m.types[id]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

func (m *Memory) GetTypeByCode(_ context.Context, code string) (*billing.AttributeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, at := range m.types {
		if at.Code == code {
			copied := at
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListTypes(_ context.Context) ([]billing.AttributeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make([]billing.AttributeType, 0, len(m.types))
	for _, at := range m.types {
		types = append(types, at)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Code < types[j].Code })
	return types, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// SaveAssignment holds the write lock across the overlap check and the
// write, so concurrent writers for the same key serialize here.
func (m *Memory) SaveAssignment(_ context.Context, a billing.TemporalAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var conflicts []string
	for id, existing := range m.assignments {
		if id == a.ID {
			continue
		}
		if existing.Subject != a.Subject || existing.AttributeTypeID != a.AttributeTypeID {
			continue
		}
		if existing.Interval.Overlaps(a.Interval) {
			conflicts = append(conflicts, string(id))
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		subject := a.Subject
		return &billing.OverlapError{
			AttributeTypeID: a.AttributeTypeID,
			Subject:         &subject,
			Interval:        a.Interval,
			ConflictIDs:     conflicts,
		}
	}

	m.assignments[a.ID] = a
	return nil
}

func (m *Memory) GetAssignment(_ context.Context, id billing.AssignmentID) (*billing.TemporalAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) ActiveOn(_ context.Context, subject billing.Subject, attributeTypeID billing.AttributeTypeID, on billing.Date) (*billing.TemporalAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.assignments {
		if a.Subject == subject && a.AttributeTypeID == attributeTypeID && a.ActiveOn(on) {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) ActiveAssignments(_ context.Context, subject billing.Subject, on billing.Date) ([]billing.TemporalAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []billing.TemporalAssignment
	for _, a := range m.assignments {
		if a.Subject == subject && a.ActiveOn(on) {
			active = append(active, a)
		}
	}
	sortByStartDesc(active)
	return active, nil
}

func (m *Memory) History(_ context.Context, subject billing.Subject) ([]billing.TemporalAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var history []billing.TemporalAssignment
	for _, a := range m.assignments {
		if a.Subject == subject {
			history = append(history, a)
		}
	}
	sortByStartDesc(history)
	return history, nil
}

func (m *Memory) SubjectsWithAttribute(_ context.Context, attributeTypeID billing.AttributeTypeID, on billing.Date) ([]billing.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var subjects []billing.Subject
	for _, a := range m.assignments {
		if a.AttributeTypeID != attributeTypeID || !a.ActiveOn(on) {
			continue
		}
		if seen[a.Subject.Key()] {
			continue
		}
		seen[a.Subject.Key()] = true
		subjects = append(subjects, a.Subject)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Key() < subjects[j].Key() })
	return subjects, nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id billing.AssignmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.assignments, id)
	return nil
}

func sortByStartDesc(assignments []billing.TemporalAssignment) {
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Interval.Start.After(assignments[j].Interval.Start)
	})
}

// =============================================================================
// COST SCHEDULE
// =============================================================================

func (m *Memory) SaveEntry(_ context.Context, e billing.CostScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var conflicts []string
	for id, existing := range m.entries {
		if id == e.ID || existing.AttributeTypeID != e.AttributeTypeID {
			continue
		}
		if existing.Validity.Overlaps(e.Validity) || existing.Validity.Start.Equal(e.Validity.Start) {
			conflicts = append(conflicts, string(id))
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &billing.OverlapError{
			AttributeTypeID: e.AttributeTypeID,
			Interval:        e.Validity,
			ConflictIDs:     conflicts,
		}
	}

	m.entries[e.ID] = e
	return nil
}

func (m *Memory) GetEntry(_ context.Context, id billing.ScheduleEntryID) (*billing.CostScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) EntryActiveOn(_ context.Context, attributeTypeID billing.AttributeTypeID, on billing.Date) (*billing.CostScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.AttributeTypeID == attributeTypeID && e.ActiveOn(on) {
			copied := e
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) EntriesFor(_ context.Context, attributeTypeID billing.AttributeTypeID) ([]billing.CostScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []billing.CostScheduleEntry
	for _, e := range m.entries {
		if e.AttributeTypeID == attributeTypeID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Validity.Start.After(entries[j].Validity.Start)
	})
	return entries, nil
}

func (m *Memory) DeleteEntry(_ context.Context, id billing.ScheduleEntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
