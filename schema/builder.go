/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/suparena/partitionstore/errors"
)

// PartitionMacro is replaced by the formatted partition in index map templates.
const PartitionMacro = "{Partition}"

// Builder turns an entity type and a partition into an Artifact. It never
// touches storage: the physical object is assumed to exist or to be created
// by an external provisioner.
type Builder struct {
	now  func() time.Time
	hook func(et *EntityType, p Partition)
}

type BuilderOption func(*Builder)

// WithBuildHook registers fn to be called at the start of every build.
func WithBuildHook(fn func(et *EntityType, p Partition)) BuilderOption {
	return func(b *Builder) { b.hook = fn }
}

// WithBuildClock overrides the clock used to stamp artifacts.
func WithBuildClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build derives the artifact for et at p.
//
// Failures are DescriptorError when p cannot be formatted or does not suit
// et's granularity, and MappingError when et's metadata is incomplete.
func (b *Builder) Build(et *EntityType, p Partition) (*Artifact, error) {
	if b.hook != nil {
		b.hook(et, p)
	}
	if err := ValidateName(et.name); err != nil {
		return nil, errors.NewMappingError(et.name, "", err.Error())
	}

	table, err := b.tableName(et, p)
	if err != nil {
		return nil, err
	}

	fields, err := resolveFields(et)
	if err != nil {
		return nil, err
	}

	overrides, err := activeRenames(et, p)
	if err != nil {
		return nil, err
	}

	a := &Artifact{
		key:      DeriveKey(et, p),
		table:    table,
		columns:  make([]Column, 0, len(fields)),
		byField:  make(map[string]int, len(fields)),
		byColumn: make(map[string]int, len(fields)),
		builtAt:  b.now(),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.NewMappingError(et.name, "", "field with empty name")
		}
		if f.Kind == KindInvalid || f.Kind > KindBytes {
			return nil, errors.NewMappingError(et.name, f.Name, "unsupported field kind")
		}
		if _, dup := a.byField[f.Name]; dup {
			return nil, errors.NewMappingError(et.name, f.Name, "duplicate field")
		}
		col := f.Column
		if col == "" {
			col = snakeCase(f.Name)
		}
		if override, ok := overrides[f.Name]; ok {
			col = override
		}
		if _, dup := a.byColumn[col]; dup {
			return nil, errors.NewMappingError(et.name, f.Name, "duplicate column "+col)
		}
		idx := len(a.columns)
		a.columns = append(a.columns, Column{
			Field:      f.Name,
			Name:       col,
			Kind:       f.Kind,
			Nullable:   f.Nullable,
			PrimaryKey: f.PrimaryKey,
		})
		a.byField[f.Name] = idx
		a.byColumn[col] = idx
		if f.PrimaryKey {
			if f.Nullable {
				return nil, errors.NewMappingError(et.name, f.Name, "primary key field cannot be nullable")
			}
			a.primaryKey = append(a.primaryKey, idx)
		}
	}
	if len(a.primaryKey) == 0 {
		return nil, errors.NewMappingError(et.name, "", "no primary key declared")
	}
	for field := range overrides {
		if _, ok := a.byField[field]; !ok {
			return nil, errors.NewMappingError(et.name, field, "rename targets unknown field")
		}
	}

	if len(et.indexMap) > 0 {
		suffix := ""
		if p.IsPartitioned() {
			suffix = p.digits()
		}
		a.indexMap = make(map[string]string, len(et.indexMap))
		for k, tmpl := range et.indexMap {
			a.indexMap[k] = strings.ReplaceAll(tmpl, PartitionMacro, suffix)
		}
	}
	return a, nil
}

func (b *Builder) tableName(et *EntityType, p Partition) (string, error) {
	if err := et.ValidatePartition(p); err != nil {
		return "", err
	}
	if !p.IsPartitioned() {
		if et.tableName == "" {
			return "", errors.NewMappingError(et.name, "", "no base table name for unpartitioned sessions")
		}
		return et.tableName, nil
	}
	return et.tablePrefix + p.digits(), nil
}

// resolveFields returns declared fields, or reflects them from the bound Go type.
func resolveFields(et *EntityType) ([]Field, error) {
	if len(et.fields) > 0 {
		return et.fields, nil
	}
	if et.goType == nil {
		return nil, errors.NewMappingError(et.name, "", "no fields declared and no Go type bound")
	}
	if et.goType.Kind() != reflect.Struct {
		return nil, errors.NewMappingError(et.name, "", "bound Go type "+et.goType.String()+" is not a struct")
	}
	return reflectFields(et.name, et.goType)
}

// reflectFields reads `store:"column,pk"` tags. A tag of "-" skips the field.
func reflectFields(entity string, t reflect.Type) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("store")
		if tag == "-" {
			continue
		}
		if sf.Anonymous {
			return nil, errors.NewMappingError(entity, sf.Name, "embedded fields are not supported")
		}
		kind, nullable := kindOf(sf.Type)
		if kind == KindInvalid {
			return nil, errors.NewMappingError(entity, sf.Name, "unsupported Go type "+sf.Type.String())
		}
		f := Field{Name: sf.Name, Kind: kind, Nullable: nullable}
		parts := strings.Split(tag, ",")
		f.Column = strings.TrimSpace(parts[0])
		for _, opt := range parts[1:] {
			switch strings.TrimSpace(opt) {
			case "pk":
				f.PrimaryKey = true
			case "":
			default:
				return nil, errors.NewMappingError(entity, sf.Name, "unknown tag option "+opt)
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// activeRenames picks, per field, the latest rename whose Since is at or
// before p. The base table never sees renames.
func activeRenames(et *EntityType, p Partition) (map[string]string, error) {
	if len(et.renames) == 0 || !p.IsPartitioned() {
		return nil, nil
	}
	renames := append([]Rename(nil), et.renames...)
	for _, r := range renames {
		if r.Since.granularity != et.granularity {
			return nil, errors.NewMappingError(et.name, r.Field, "rename since "+r.Since.String()+" does not match entity granularity")
		}
		if r.Column == "" {
			return nil, errors.NewMappingError(et.name, r.Field, "rename to empty column")
		}
	}
	sort.SliceStable(renames, func(i, j int) bool {
		return renames[i].Since.Compare(renames[j].Since) < 0
	})
	out := make(map[string]string)
	for _, r := range renames {
		if p.Compare(r.Since) >= 0 {
			out[r.Field] = r.Column
		}
	}
	return out, nil
}
