package sensortype

import (
	"fmt"
	"iter"
	"sync"
)

// Registry maps sensor type IDs to their schemas.
//
// Registration normally happens once at startup; afterwards lookups only
// take the read lock. To rebuild the table, construct a new Registry and
// swap the reference held by the owner.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	order   []string // Type IDs in registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Register adds a schema under typeID.
// Returns ErrDuplicateType if typeID is already registered; the existing
// schema is left unchanged.
func (r *Registry) Register(typeID string, schema *Schema) error {
	if typeID == "" {
		return fmt.Errorf("%w: type ID cannot be empty", ErrInvalidSchema)
	}
	if schema == nil {
		return fmt.Errorf("%w: nil schema for %q", ErrInvalidSchema, typeID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[typeID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, typeID)
	}
	r.schemas[typeID] = schema
	r.order = append(r.order, typeID)
	return nil
}

// RegisterDeclaration builds a schema from decl and registers it.
func (r *Registry) RegisterDeclaration(typeID string, decl Declaration) error {
	schema, err := NewSchema(decl)
	if err != nil {
		return fmt.Errorf("type %q: %w", typeID, err)
	}
	return r.Register(typeID, schema)
}

// MustRegister is RegisterDeclaration for static startup tables.
// It panics on error.
func (r *Registry) MustRegister(typeID string, decl Declaration) {
	if err := r.RegisterDeclaration(typeID, decl); err != nil {
		panic(err)
	}
}

// Lookup returns the schema for typeID or ErrUnknownType.
func (r *Registry) Lookup(typeID string) (*Schema, error) {
	r.mu.RLock()
	schema, ok := r.schemas[typeID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeID)
	}
	return schema, nil
}

// List returns the registered type IDs in registration order.
// Each iteration walks a snapshot taken when it starts.
func (r *Registry) List() iter.Seq[string] {
	return func(yield func(string) bool) {
		r.mu.RLock()
		snapshot := make([]string, len(r.order))
		copy(snapshot, r.order)
		r.mu.RUnlock()

		for _, id := range snapshot {
			if !yield(id) {
				return
			}
		}
	}
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
