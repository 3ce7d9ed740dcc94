/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schema"
)

// Registry binds Go types to entity types. Entity names are unique within a
// registry. Schema cache keys carry the descriptor identity as well, so
// registries sharing one cache never collide on a name.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*schema.EntityType
	byName map[string]*schema.EntityType
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*schema.EntityType),
		byName: make(map[string]*schema.EntityType),
	}
}

// Register associates Go type T with et. When et has no Go type bound yet it
// is bound to T, so entity types loaded from definition files can decode
// into T. Registering the same type or name twice is an error.
func Register[T any](r *Registry, et *schema.EntityType) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("registry: %s is not a struct type", t)
	}
	if err := schema.ValidateName(et.Name()); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if et.GoType() == nil {
		et = et.Bind(t)
	} else if et.GoType() != t {
		return fmt.Errorf("registry: entity %s is bound to %s, not %s", et.Name(), et.GoType(), t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.byType[t]; exists {
		return fmt.Errorf("registry: %w", errors.NewAlreadyExistsError("Go type", t.String()+" as "+prev.Name()))
	}
	if _, exists := r.byName[et.Name()]; exists {
		return fmt.Errorf("registry: %w", errors.NewAlreadyExistsError("entity name", et.Name()))
	}
	r.byType[t] = et
	r.byName[et.Name()] = et
	return nil
}

// MustRegister is like Register but panics on error. It suits init-time
// registration where a conflict is a programming error.
func MustRegister[T any](r *Registry, et *schema.EntityType) {
	if err := Register[T](r, et); err != nil {
		panic(err)
	}
}

// Lookup returns the entity type registered for T.
func Lookup[T any](r *Registry) (*schema.EntityType, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.byType[t]
	return et, ok
}

// ByName returns the entity type registered under name.
func (r *Registry) ByName(name string) (*schema.EntityType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.byName[name]
	return et, ok
}

// Names lists registered entity names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
