/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"time"
)

// Column is the physical mapping of one logical field.
type Column struct {
	Field      string
	Name       string
	Kind       Kind
	Nullable   bool
	PrimaryKey bool
}

// Artifact describes how one entity type maps onto one physical object.
// Artifacts are only constructed by Builder and never change afterwards;
// every accessor returns copies.
type Artifact struct {
	key        Key
	table      string
	columns    []Column
	primaryKey []int
	byField    map[string]int
	byColumn   map[string]int
	indexMap   map[string]string
	builtAt    time.Time
}

func (a *Artifact) Key() Key             { return a.key }
func (a *Artifact) Entity() string       { return a.key.entity }
func (a *Artifact) Partition() Partition { return a.key.partition }

// TableName is the name of the physical object (table, collection) addressed.
func (a *Artifact) TableName() string { return a.table }

func (a *Artifact) BuiltAt() time.Time { return a.builtAt }

func (a *Artifact) Columns() []Column {
	return append([]Column(nil), a.columns...)
}

// PrimaryKey returns the primary key columns in key order.
func (a *Artifact) PrimaryKey() []Column {
	out := make([]Column, len(a.primaryKey))
	for i, idx := range a.primaryKey {
		out[i] = a.columns[idx]
	}
	return out
}

// Column looks a column up by logical field name.
func (a *Artifact) Column(field string) (Column, bool) {
	idx, ok := a.byField[field]
	if !ok {
		return Column{}, false
	}
	return a.columns[idx], true
}

// ColumnByName looks a column up by physical column name.
func (a *Artifact) ColumnByName(name string) (Column, bool) {
	idx, ok := a.byColumn[name]
	if !ok {
		return Column{}, false
	}
	return a.columns[idx], true
}

// IndexMap returns the key templates with partition macros already expanded.
func (a *Artifact) IndexMap() map[string]string {
	if a.indexMap == nil {
		return nil
	}
	m := make(map[string]string, len(a.indexMap))
	for k, v := range a.indexMap {
		m[k] = v
	}
	return m
}

// Equal reports whether a and o describe the same mapping. Build time is ignored.
func (a *Artifact) Equal(o *Artifact) bool {
	if a == o {
		return true
	}
	if a == nil || o == nil {
		return false
	}
	if a.key != o.key || a.table != o.table || len(a.columns) != len(o.columns) ||
		len(a.primaryKey) != len(o.primaryKey) || len(a.indexMap) != len(o.indexMap) {
		return false
	}
	for i := range a.columns {
		if a.columns[i] != o.columns[i] {
			return false
		}
	}
	for i := range a.primaryKey {
		if a.primaryKey[i] != o.primaryKey[i] {
			return false
		}
	}
	for k, v := range a.indexMap {
		if o.indexMap[k] != v {
			return false
		}
	}
	return true
}

func (a *Artifact) String() string {
	return fmt.Sprintf("%s -> %s (%d columns)", a.key, a.table, len(a.columns))
}
