/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definitions is the root of an entity definitions file.
type Definitions struct {
	Entities []EntityDefinition `yaml:"entities"`
}

// EntityDefinition is the YAML form of an EntityType.
type EntityDefinition struct {
	Name        string             `yaml:"name"`
	TableName   string             `yaml:"tableName,omitempty"`
	TablePrefix string             `yaml:"tablePrefix,omitempty"`
	Granularity string             `yaml:"granularity,omitempty"`
	Fields      []FieldDefinition  `yaml:"fields,omitempty"`
	Renames     []RenameDefinition `yaml:"renames,omitempty"`
	IndexMap    map[string]string  `yaml:"indexMap,omitempty"`
}

type FieldDefinition struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column,omitempty"`
	Kind       string `yaml:"kind"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	PrimaryKey bool   `yaml:"primaryKey,omitempty"`
}

type RenameDefinition struct {
	Field  string `yaml:"field"`
	Column string `yaml:"column"`
	// Since is a full-date for day entities and a year-month for month entities.
	Since string `yaml:"since"`
}

// LoadDefinitions decodes entity types from YAML:
//
//	entities:
//	  - name: News
//	    tableName: news
//	    granularity: day
//	    fields:
//	      - {name: ID, column: id, kind: string, primaryKey: true}
//	      - {name: Title, kind: string}
//	    renames:
//	      - {field: Title, column: headline, since: "2020-06-01"}
//	    indexMap:
//	      PK: "NEWS#{ID}"
//	      SK: "DAY#{Partition}"
func LoadDefinitions(r io.Reader) ([]*EntityType, error) {
	var defs Definitions
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode entity definitions: %w", err)
	}
	out := make([]*EntityType, 0, len(defs.Entities))
	seen := make(map[string]bool, len(defs.Entities))
	for _, d := range defs.Entities {
		et, err := d.EntityType()
		if err != nil {
			return nil, err
		}
		if seen[et.Name()] {
			return nil, fmt.Errorf("entity %q defined twice", et.Name())
		}
		seen[et.Name()] = true
		out = append(out, et)
	}
	return out, nil
}

// LoadDefinitionsFile reads entity definitions from path.
func LoadDefinitionsFile(path string) ([]*EntityType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDefinitions(f)
}

// EntityType converts the definition into an EntityType.
func (d EntityDefinition) EntityType() (*EntityType, error) {
	if err := ValidateName(d.Name); err != nil {
		return nil, err
	}
	g, err := ParseGranularity(d.Granularity)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", d.Name, err)
	}
	opts := []EntityOption{
		WithTableName(d.TableName),
		WithTablePrefix(d.TablePrefix),
		WithGranularity(g),
	}
	if len(d.Fields) > 0 {
		fields := make([]Field, 0, len(d.Fields))
		for _, fd := range d.Fields {
			kind, err := ParseKind(fd.Kind)
			if err != nil {
				return nil, fmt.Errorf("entity %s field %s: %w", d.Name, fd.Name, err)
			}
			fields = append(fields, Field{
				Name:       fd.Name,
				Column:     fd.Column,
				Kind:       kind,
				Nullable:   fd.Nullable,
				PrimaryKey: fd.PrimaryKey,
			})
		}
		opts = append(opts, WithFields(fields...))
	}
	for _, rd := range d.Renames {
		since, err := ParsePartition(g, rd.Since)
		if err != nil {
			return nil, fmt.Errorf("entity %s rename %s: %w", d.Name, rd.Field, err)
		}
		opts = append(opts, WithRename(rd.Field, rd.Column, since))
	}
	if len(d.IndexMap) > 0 {
		opts = append(opts, WithIndexMap(d.IndexMap))
	}
	return NewEntityType(d.Name, opts...), nil
}
