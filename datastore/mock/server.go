/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory storage backend for testing sessions
// without a database.
package mock

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/partitionstore/errors"
)

// Server is an in-memory backend holding named tables of column rows.
// Tables only exist once provisioned, so opening a session for an
// unprovisioned partition behaves like a missing physical table.
type Server struct {
	mu            sync.RWMutex
	tables        map[string]map[string]map[string]any
	autoProvision bool
	openErr       error
	getErr        error
	queryErr      error
	putErr        error
	deleteErr     error
	opened        int
	closed        int
}

// NewServer creates a server with no tables
func NewServer() *Server {
	return &Server{
		tables: make(map[string]map[string]map[string]any),
	}
}

// WithAutoProvision makes handles create their table on first write
func (s *Server) WithAutoProvision(enabled bool) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoProvision = enabled
	return s
}

// WithOpenError makes Open return an error
func (s *Server) WithOpenError(err error) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
	return s
}

// WithGetError makes Get operations return an error
func (s *Server) WithGetError(err error) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
	return s
}

// WithQueryError makes Query operations return an error
func (s *Server) WithQueryError(err error) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErr = err
	return s
}

// WithPutError makes Put operations (and batches containing puts) return an error
func (s *Server) WithPutError(err error) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
	return s
}

// WithDeleteError makes Delete operations (and batches containing deletes) return an error
func (s *Server) WithDeleteError(err error) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
	return s
}

// Provision creates empty tables. Existing tables are left untouched.
func (s *Server) Provision(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if _, ok := s.tables[name]; !ok {
			s.tables[name] = make(map[string]map[string]any)
		}
	}
}

// Drop removes a table and its rows
func (s *Server) Drop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, name)
}

// Tables returns the provisioned table names, sorted
func (s *Server) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rows returns copies of a table's rows ordered by primary key
func (s *Server) Rows(table string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRows(s.tables[table])
}

// Count returns the number of rows in a table
func (s *Server) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// OpenHandles returns the number of handles opened and not yet closed
func (s *Server) OpenHandles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opened - s.closed
}

// table returns the named table, provisioning it when create is set and the
// server auto provisions. Callers hold s.mu.
func (s *Server) table(name string, create bool) (map[string]map[string]any, error) {
	t, ok := s.tables[name]
	if ok {
		return t, nil
	}
	if create && s.autoProvision {
		t = make(map[string]map[string]any)
		s.tables[name] = t
		return t, nil
	}
	return nil, errors.NewStorageUnavailableError(name, fmt.Errorf("table %s is not provisioned", name))
}

func sortedRows(t map[string]map[string]any) []map[string]any {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]map[string]any, len(keys))
	for i, k := range keys {
		rows[i] = copyRow(t[k])
	}
	return rows
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = append([]byte(nil), b...)
		}
		out[k] = v
	}
	return out
}
