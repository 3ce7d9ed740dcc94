/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"sync"

	"github.com/suparena/partitionstore/datastore"
	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/storagemodels"
)

// NewOpener returns an opener handing out handles on s
func NewOpener[T any](s *Server) datastore.Opener[T] {
	return datastore.OpenerFunc[T](func(ctx context.Context, artifact *schema.Artifact) (datastore.DataStore[T], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.openErr != nil {
			return nil, s.openErr
		}
		s.opened++
		return &DataStore[T]{server: s, artifact: artifact}, nil
	})
}

// DataStore is an in-memory implementation of datastore.DataStore[T] bound
// to one table of a Server
type DataStore[T any] struct {
	server    *Server
	artifact  *schema.Artifact
	closeOnce sync.Once
}

var (
	_ datastore.DataStore[struct{}]   = (*DataStore[struct{}])(nil)
	_ datastore.BatchWriter[struct{}] = (*DataStore[struct{}])(nil)
)

// Get retrieves an entity by primary key
func (m *DataStore[T]) Get(ctx context.Context, key ...any) (*T, error) {
	k, err := m.artifact.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	s := m.server
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	t, err := s.table(m.artifact.TableName(), false)
	if err != nil {
		return nil, err
	}
	row, ok := t[schema.KeyString(k)]
	if !ok {
		return nil, errors.NewNotFoundError(m.artifact.Entity(), schema.KeyString(k))
	}
	var entity T
	if err := m.artifact.Scan(copyRow(row), &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Query filters the table in process
func (m *DataStore[T]) Query(ctx context.Context, q *storagemodels.Query) ([]T, error) {
	plan, err := datastore.PlanQuery(m.artifact, q)
	if err != nil {
		return nil, err
	}
	s := m.server
	s.mu.RLock()
	if s.queryErr != nil {
		s.mu.RUnlock()
		return nil, s.queryErr
	}
	t, err := s.table(m.artifact.TableName(), false)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	rows := sortedRows(t)
	s.mu.RUnlock()

	rows, err = plan.Apply(rows)
	if err != nil {
		return nil, err
	}
	results := make([]T, len(rows))
	for i, row := range rows {
		if err := m.artifact.Scan(row, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Put stores an entity, replacing any row with the same primary key
func (m *DataStore[T]) Put(ctx context.Context, entity T) error {
	return m.WriteBatch(ctx, []T{entity}, nil)
}

// Delete removes an entity by primary key
func (m *DataStore[T]) Delete(ctx context.Context, key ...any) error {
	return m.WriteBatch(ctx, nil, [][]any{key})
}

// WriteBatch applies all puts and deletes or none of them
func (m *DataStore[T]) WriteBatch(ctx context.Context, puts []T, deletes [][]any) error {
	rows := make(map[string]map[string]any, len(puts))
	order := make([]string, 0, len(puts))
	for _, entity := range puts {
		row, err := m.artifact.Row(entity)
		if err != nil {
			return err
		}
		k, err := m.artifact.KeyOf(entity)
		if err != nil {
			return err
		}
		ks := schema.KeyString(k)
		if _, seen := rows[ks]; !seen {
			order = append(order, ks)
		}
		rows[ks] = row
	}
	dels := make([]string, len(deletes))
	for i, key := range deletes {
		k, err := m.artifact.NormalizeKey(key)
		if err != nil {
			return err
		}
		dels[i] = schema.KeyString(k)
	}

	s := m.server
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(puts) > 0 && s.putErr != nil {
		return s.putErr
	}
	if len(deletes) > 0 && s.deleteErr != nil {
		return s.deleteErr
	}
	t, err := s.table(m.artifact.TableName(), len(puts) > 0)
	if err != nil {
		return err
	}
	for _, ks := range dels {
		if _, ok := t[ks]; !ok {
			if _, staged := rows[ks]; !staged {
				return errors.NewNotFoundError(m.artifact.Entity(), ks)
			}
		}
	}
	for _, ks := range order {
		t[ks] = rows[ks]
	}
	for _, ks := range dels {
		delete(t, ks)
	}
	return nil
}

// Close releases the handle. Closing twice is a no-op.
func (m *DataStore[T]) Close() error {
	m.closeOnce.Do(func() {
		m.server.mu.Lock()
		m.server.closed++
		m.server.mu.Unlock()
	})
	return nil
}
