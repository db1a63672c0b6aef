/*
registry.go - Attribute type catalogue

PURPOSE:
  Master catalogue of attribute kinds. Everything else in the engine refers
  to attribute types by id: assignments carry one, schedule entries price
  one, scopes can target one.

INVARIANTS:
  - Codes are unique and immutable once created.
  - Deactivating a type keeps it resolvable; existing assignments and
    pricing stay intact for historical charge calculation.

SEE ALSO:
  - assignment.go: Enforces RequiresValue on assign/update
  - schedule.go: Prices attribute types
*/
package billing

import (
	"context"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

type AttributeTypeStore interface {
	// SaveType inserts or updates an attribute type. Inserting a duplicate
	// code fails with ErrDuplicateCode.
	SaveType(ctx context.Context, at AttributeType) error

	// GetType returns nil without error when the id is unknown.
	GetType(ctx context.Context, id AttributeTypeID) (*AttributeType, error)

	GetTypeByCode(ctx context.Context, code string) (*AttributeType, error)

	// ListTypes returns all attribute types ordered by code.
	ListTypes(ctx context.Context) ([]AttributeType, error)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry wraps the store with the catalogue's business rules.
type Registry struct {
	Store AttributeTypeStore
}

func NewRegistry(store AttributeTypeStore) *Registry {
	return &Registry{Store: store}
}

// Create registers a new attribute type. The code must be unused.
func (r *Registry) Create(ctx context.Context, at AttributeType) (*AttributeType, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	existing, err := r.Store.GetTypeByCode(ctx, at.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}
	at.Active = true
	if err := r.Store.SaveType(ctx, at); err != nil {
		return nil, err
	}
	return &at, nil
}

// UpdateTypeInput carries the mutable fields of an attribute type. The code
// is the business key and cannot change.
type UpdateTypeInput struct {
	Name          *string
	Category      *string
	DataType      *AttributeDataType
	RequiresValue *bool
	Active        *bool
}

// Update applies the input to an existing type.
func (r *Registry) Update(ctx context.Context, id AttributeTypeID, input UpdateTypeInput) (*AttributeType, error) {
	at, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		at.Name = *input.Name
	}
	if input.Category != nil {
		at.Category = *input.Category
	}
	if input.DataType != nil {
		at.DataType = *input.DataType
	}
	if input.RequiresValue != nil {
		at.RequiresValue = *input.RequiresValue
	}
	if input.Active != nil {
		at.Active = *input.Active
	}
	if err := at.Validate(); err != nil {
		return nil, err
	}
	if err := r.Store.SaveType(ctx, *at); err != nil {
		return nil, err
	}
	return at, nil
}

// Get returns the type or a NotFoundError.
func (r *Registry) Get(ctx context.Context, id AttributeTypeID) (*AttributeType, error) {
	at, err := r.Store.GetType(ctx, id)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, &NotFoundError{Kind: "attribute_type", ID: string(id)}
	}
	return at, nil
}

func (r *Registry) GetByCode(ctx context.Context, code string) (*AttributeType, error) {
	at, err := r.Store.GetTypeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, &NotFoundError{Kind: "attribute_type", ID: code}
	}
	return at, nil
}

func (r *Registry) List(ctx context.Context) ([]AttributeType, error) {
	return r.Store.ListTypes(ctx)
}

// Deactivate retires a type without touching its history.
func (r *Registry) Deactivate(ctx context.Context, id AttributeTypeID) (*AttributeType, error) {
	inactive := false
	return r.Update(ctx, id, UpdateTypeInput{Active: &inactive})
}
