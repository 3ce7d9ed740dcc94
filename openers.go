/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package partitionstore

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/partitionstore/datastore"
	"github.com/suparena/partitionstore/errors"
)

// openerSet holds one datastore.Opener[T] per Go type T
type openerSet struct {
	mu      sync.RWMutex
	openers map[reflect.Type]any
}

func newOpenerSet() *openerSet {
	return &openerSet{
		openers: make(map[reflect.Type]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func setOpener[T any](s *openerSet, o datastore.Opener[T]) error {
	if o == nil {
		return fmt.Errorf("nil opener for %s", typeOf[T]())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := typeOf[T]()
	if _, exists := s.openers[typ]; exists {
		return errors.NewAlreadyExistsError("opener", typ.String())
	}
	s.openers[typ] = o
	return nil
}

func getOpener[T any](s *openerSet) (datastore.Opener[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.openers[typeOf[T]()]
	if !exists {
		return nil, false
	}
	return o.(datastore.Opener[T]), true
}

// names returns the registered Go type names, sorted
func (s *openerSet) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.openers))
	for typ := range s.openers {
		names = append(names, typ.String())
	}
	sort.Strings(names)
	return names
}

// RegisterOpener sets the storage opener used for sessions over T. Each Go
// type has exactly one opener.
func RegisterOpener[T any](f *Factory, o datastore.Opener[T]) error {
	return setOpener(f.openers, o)
}

// OpenerTypes lists the Go types that have an opener registered
func (f *Factory) OpenerTypes() []string {
	return f.openers.names()
}
