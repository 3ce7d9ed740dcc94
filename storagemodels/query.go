/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
)

// Op is a comparison operator usable in a Filter.
type Op string

const (
	OpEq         Op = "="
	OpNe         Op = "<>"
	OpLt         Op = "<"
	OpLe         Op = "<="
	OpGt         Op = ">"
	OpGe         Op = ">="
	OpBeginsWith Op = "begins_with"
)

func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpBeginsWith:
		return true
	}
	return false
}

// Filter restricts a query to rows where Field Op Value holds. Field is the
// logical field name, not the physical column.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query is a backend neutral read against one partition. All filters must
// hold (AND). An empty query returns every row.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	// Limit caps the number of returned rows; zero means no limit.
	Limit int
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{}
}

// Where adds a filter
func (q *Query) Where(field string, op Op, value any) *Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	return q
}

// Eq is shorthand for Where(field, OpEq, value)
func (q *Query) Eq(field string, value any) *Query {
	return q.Where(field, OpEq, value)
}

// SortBy orders results by field
func (q *Query) SortBy(field string, descending bool) *Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// WithLimit sets the maximum number of results
func (q *Query) WithLimit(limit int) *Query {
	q.Limit = limit
	return q
}

// Validate checks operators and limits. Field names are checked against the
// schema by the storage backend.
func (q *Query) Validate() error {
	if q == nil {
		return nil
	}
	for i, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("filter %d: empty field", i)
		}
		if !f.Op.Valid() {
			return fmt.Errorf("filter %d: unsupported operator %q", i, f.Op)
		}
		if f.Op == OpBeginsWith {
			if _, ok := f.Value.(string); !ok {
				return fmt.Errorf("filter %d: begins_with needs a string, got %T", i, f.Value)
			}
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("negative limit %d", q.Limit)
	}
	return nil
}
