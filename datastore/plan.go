/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"sort"

	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/storagemodels"
)

// Condition is a filter resolved to a physical column with a normalized value.
type Condition struct {
	Column string
	Op     storagemodels.Op
	Value  any
}

// Plan is a query translated against one artifact.
type Plan struct {
	Conditions []Condition
	OrderBy    string // column name, empty for backend order
	Descending bool
	Limit      int
}

// PlanQuery resolves the field names in q to the artifact's columns and
// normalizes filter values to each column's kind. A nil query plans a full
// read.
func PlanQuery(artifact *schema.Artifact, q *storagemodels.Query) (*Plan, error) {
	plan := &Plan{}
	if q == nil {
		return plan, nil
	}
	if err := q.Validate(); err != nil {
		return nil, errors.NewValidationError("query", err.Error())
	}
	for _, f := range q.Filters {
		c, ok := artifact.Column(f.Field)
		if !ok {
			return nil, errors.NewValidationError(f.Field, fmt.Sprintf("unknown field on %s", artifact.Entity()))
		}
		if f.Op == storagemodels.OpBeginsWith && c.Kind != schema.KindString {
			return nil, errors.NewValidationError(f.Field, "begins_with requires a string column")
		}
		v, err := artifact.ColumnValue(c, f.Value)
		if err != nil {
			return nil, errors.NewValidationError(f.Field, err.Error())
		}
		plan.Conditions = append(plan.Conditions, Condition{Column: c.Name, Op: f.Op, Value: v})
	}
	if q.OrderBy != "" {
		c, ok := artifact.Column(q.OrderBy)
		if !ok {
			return nil, errors.NewValidationError(q.OrderBy, fmt.Sprintf("unknown field on %s", artifact.Entity()))
		}
		plan.OrderBy = c.Name
		plan.Descending = q.Descending
	}
	plan.Limit = q.Limit
	return plan, nil
}

// Matches evaluates every condition against a normalized row.
func (p *Plan) Matches(row map[string]any) (bool, error) {
	for _, c := range p.Conditions {
		ok, err := storagemodels.Match(c.Op, row[c.Column], c.Value)
		if err != nil {
			return false, fmt.Errorf("column %s: %w", c.Column, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Apply filters, orders and limits rows in process, for backends that cannot
// do so natively. Rows must hold normalized values.
func (p *Plan) Apply(rows []map[string]any) ([]map[string]any, error) {
	out := rows[:0:0]
	for _, row := range rows {
		ok, err := p.Matches(row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	if p.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c, err := storagemodels.Compare(out[i][p.OrderBy], out[j][p.OrderBy])
			if err != nil {
				return false
			}
			if p.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}
