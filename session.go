/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package partitionstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/suparena/partitionstore/datastore"
	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/logger"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/storagemodels"
)

type change[T any] struct {
	entity T
	key    []any
	remove bool
}

// Session is a unit of work bound to one physical object. It owns its
// storage handle and is not safe for concurrent use.
type Session[T any] struct {
	id       string
	artifact *schema.Artifact
	store    datastore.DataStore[T]
	pending  map[string]change[T]
	order    []string
	closed   bool
	log      *logger.Logger
}

func newSession[T any](artifact *schema.Artifact, store datastore.DataStore[T], log *logger.Logger) *Session[T] {
	return &Session[T]{
		id:       uuid.NewString(),
		artifact: artifact,
		store:    store,
		pending:  make(map[string]change[T]),
		log:      log,
	}
}

func (s *Session[T]) ID() string                  { return s.id }
func (s *Session[T]) Artifact() *schema.Artifact  { return s.artifact }
func (s *Session[T]) Partition() schema.Partition { return s.artifact.Partition() }

// TableName is the physical object the session reads and writes
func (s *Session[T]) TableName() string { return s.artifact.TableName() }

// Pending returns the number of staged changes
func (s *Session[T]) Pending() int { return len(s.order) }

// Get reads one entity by primary key values in key order
func (s *Session[T]) Get(ctx context.Context, key ...any) (*T, error) {
	if s.closed {
		return nil, errors.ErrSessionClosed
	}
	return s.store.Get(ctx, key...)
}

// Query reads committed entities; staged changes are not visible
func (s *Session[T]) Query(ctx context.Context, q *storagemodels.Query) ([]T, error) {
	if s.closed {
		return nil, errors.ErrSessionClosed
	}
	return s.store.Query(ctx, q)
}

// Add stages an insert or replace. A later change to the same key
// supersedes it.
func (s *Session[T]) Add(entity T) error {
	if s.closed {
		return errors.ErrSessionClosed
	}
	if _, err := s.artifact.Row(entity); err != nil {
		return err
	}
	key, err := s.artifact.KeyOf(entity)
	if err != nil {
		return err
	}
	s.stage(change[T]{entity: entity, key: key})
	return nil
}

// Remove stages a delete of the entity's primary key
func (s *Session[T]) Remove(entity T) error {
	if s.closed {
		return errors.ErrSessionClosed
	}
	key, err := s.artifact.KeyOf(entity)
	if err != nil {
		return err
	}
	s.stage(change[T]{entity: entity, key: key, remove: true})
	return nil
}

func (s *Session[T]) stage(c change[T]) {
	ks := schema.KeyString(c.key)
	if _, exists := s.pending[ks]; !exists {
		s.order = append(s.order, ks)
	}
	s.pending[ks] = c
}

// Commit writes staged changes and returns how many were applied. Handles
// implementing datastore.BatchWriter get one batch; otherwise changes are
// applied in staging order and those applied before a failure are dropped
// from the pending set. Changes not applied stay pending.
func (s *Session[T]) Commit(ctx context.Context) (int, error) {
	if s.closed {
		return 0, errors.ErrSessionClosed
	}
	if len(s.order) == 0 {
		return 0, nil
	}

	if bw, ok := s.store.(datastore.BatchWriter[T]); ok {
		var puts []T
		var deletes [][]any
		for _, ks := range s.order {
			c := s.pending[ks]
			if c.remove {
				deletes = append(deletes, c.key)
			} else {
				puts = append(puts, c.entity)
			}
		}
		if err := bw.WriteBatch(ctx, puts, deletes); err != nil {
			return 0, err
		}
		n := len(s.order)
		s.reset()
		s.log.Debug("session committed", "session", s.id, "table", s.artifact.TableName(), "changes", n)
		return n, nil
	}

	applied := 0
	for _, ks := range s.order {
		c := s.pending[ks]
		var err error
		if c.remove {
			err = s.store.Delete(ctx, c.key...)
		} else {
			err = s.store.Put(ctx, c.entity)
		}
		if err != nil {
			for _, done := range s.order[:applied] {
				delete(s.pending, done)
			}
			s.order = append([]string(nil), s.order[applied:]...)
			return applied, err
		}
		applied++
	}
	s.reset()
	s.log.Debug("session committed", "session", s.id, "table", s.artifact.TableName(), "changes", applied)
	return applied, nil
}

// Discard drops all staged changes
func (s *Session[T]) Discard() {
	s.reset()
}

func (s *Session[T]) reset() {
	s.pending = make(map[string]change[T])
	s.order = nil
}

// Close releases the storage handle. Staged changes are discarded. The
// cached artifact is left untouched. Closing twice is a no-op.
func (s *Session[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.reset()
	s.log.Debug("session closed", "session", s.id, "table", s.artifact.TableName())
	return s.store.Close()
}
