/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/suparena/partitionstore/errors"
)

// Kind is the storage-level type of a mapped field.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindBytes
)

var kindNames = map[Kind]string{
	KindString: "string",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindBool:   "bool",
	KindTime:   "time",
	KindBytes:  "bytes",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// ParseKind maps a kind name as written in definition files to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown field kind %q", s)
}

// Field is one logical field of an entity.
type Field struct {
	// Name is the logical field name; for struct-backed entities it is the Go field name.
	Name string
	// Column is the default physical column. Empty means snake_case(Name).
	Column     string
	Kind       Kind
	Nullable   bool
	PrimaryKey bool
}

// Rename maps Field onto Column for every partition at or after Since.
type Rename struct {
	Field  string
	Column string
	Since  Partition
}

var entityNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// EntityType describes a logical entity shape. It is immutable once built
// and is expected to be defined once at process start.
type EntityType struct {
	id          uint64
	name        string
	tableName   string
	tablePrefix string
	granularity Granularity
	fields      []Field
	goType      reflect.Type
	renames     []Rename
	indexMap    map[string]string
}

// entityIDs hands out descriptor identities. Copies made by Named and Bind
// get a fresh id.
var entityIDs atomic.Uint64

// EntityOption configures an EntityType.
type EntityOption func(*EntityType)

// WithTableName sets the base table used by unpartitioned sessions.
func WithTableName(name string) EntityOption {
	return func(et *EntityType) { et.tableName = name }
}

// WithTablePrefix sets the prefix prepended to formatted partition names.
func WithTablePrefix(prefix string) EntityOption {
	return func(et *EntityType) { et.tablePrefix = prefix }
}

func WithGranularity(g Granularity) EntityOption {
	return func(et *EntityType) { et.granularity = g }
}

// WithFields declares the entity's fields explicitly instead of reflecting them.
func WithFields(fields ...Field) EntityOption {
	return func(et *EntityType) { et.fields = append([]Field(nil), fields...) }
}

// WithGoType sets the struct type fields are reflected from.
func WithGoType(t reflect.Type) EntityOption {
	return func(et *EntityType) {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		et.goType = t
	}
}

// WithRename overrides the column of field for partitions at or after since.
func WithRename(field, column string, since Partition) EntityOption {
	return func(et *EntityType) {
		et.renames = append(et.renames, Rename{Field: field, Column: column, Since: since})
	}
}

// WithIndexMap attaches key templates such as {"PK": "NEWS#{ID}", "SK": "{Partition}"}.
func WithIndexMap(m map[string]string) EntityOption {
	return func(et *EntityType) {
		et.indexMap = make(map[string]string, len(m))
		for k, v := range m {
			et.indexMap[k] = v
		}
	}
}

// NewEntityType creates an entity type named name.
func NewEntityType(name string, opts ...EntityOption) *EntityType {
	et := &EntityType{id: entityIDs.Add(1), name: name}
	for _, opt := range opts {
		opt(et)
	}
	return et
}

// EntityTypeOf creates an entity type whose fields are reflected from T.
// The entity is named after T unless opts say otherwise.
func EntityTypeOf[T any](opts ...EntityOption) *EntityType {
	t := reflect.TypeOf((*T)(nil)).Elem()
	all := append([]EntityOption{WithGoType(t)}, opts...)
	et := NewEntityType(t.Name(), all...)
	return et
}

// Named returns a copy of et with a different name.
func (et *EntityType) Named(name string) *EntityType {
	cp := *et
	cp.id = entityIDs.Add(1)
	cp.name = name
	return &cp
}

// Bind returns a copy of et that reflects and decodes into t. Declared
// fields, if any, are kept.
func (et *EntityType) Bind(t reflect.Type) *EntityType {
	cp := *et
	cp.id = entityIDs.Add(1)
	WithGoType(t)(&cp)
	return &cp
}

// ID distinguishes descriptors that share a name, e.g. the same entity
// registered in two registries with different shapes.
func (et *EntityType) ID() uint64 { return et.id }

func (et *EntityType) Name() string             { return et.name }
func (et *EntityType) TableName() string        { return et.tableName }
func (et *EntityType) TablePrefix() string      { return et.tablePrefix }
func (et *EntityType) Granularity() Granularity { return et.granularity }
func (et *EntityType) GoType() reflect.Type     { return et.goType }

// Fields returns a copy of the declared fields.
func (et *EntityType) Fields() []Field { return append([]Field(nil), et.fields...) }

// Renames returns a copy of the partition-specific column overrides.
func (et *EntityType) Renames() []Rename { return append([]Rename(nil), et.renames...) }

// IndexMap returns a copy of the raw key templates.
func (et *EntityType) IndexMap() map[string]string {
	if et.indexMap == nil {
		return nil
	}
	m := make(map[string]string, len(et.indexMap))
	for k, v := range et.indexMap {
		m[k] = v
	}
	return m
}

// ValidateName checks the entity name is usable as a cache key component.
func ValidateName(name string) error {
	if !entityNamePattern.MatchString(name) {
		return fmt.Errorf("entity name %q must match %s", name, entityNamePattern)
	}
	return nil
}

// ValidatePartition checks p is well formed and addressable for et: a
// partitioned descriptor needs an entity partitioned at the same granularity.
func (et *EntityType) ValidatePartition(p Partition) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !p.IsPartitioned() {
		return nil
	}
	if et.granularity == GranularityNone {
		return errors.NewDescriptorError(p.String(), "entity "+et.name+" is not partitioned")
	}
	if p.granularity != et.granularity {
		return errors.NewDescriptorError(p.String(), "entity "+et.name+" is partitioned by "+et.granularity.String())
	}
	return nil
}

// ObjectName returns the physical object name for p, using the same rule as
// the Builder. External tools enumerating partitions rely on it.
func (et *EntityType) ObjectName(p Partition) (string, error) {
	if err := et.ValidatePartition(p); err != nil {
		return "", err
	}
	if !p.IsPartitioned() {
		return et.tableName, nil
	}
	return et.tablePrefix + p.digits(), nil
}

var timeType = reflect.TypeOf(time.Time{})

// kindOf maps a Go type onto a Kind. Pointers map to their element's kind
// and are reported as nullable.
func kindOf(t reflect.Type) (Kind, bool) {
	nullable := false
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		nullable = true
	}
	if t == timeType {
		return KindTime, nullable
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, nullable
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt, nullable
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindUint, nullable
	case reflect.Float32, reflect.Float64:
		return KindFloat, nullable
	case reflect.Bool:
		return KindBool, nullable
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes, true
		}
	}
	return KindInvalid, nullable
}

// snakeCase turns "PublishedAt" into "published_at" and "ID" into "id".
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z' || runes[i-1] >= '0' && runes[i-1] <= '9'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || (nextLower && runes[i-1] != '_') {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
