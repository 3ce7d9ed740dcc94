/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schemacache"
)

const definitions = `
entities:
  - name: News
    granularity: day
    fields:
      - name: ID
        kind: string
        primaryKey: true
  - name: Audit
    granularity: month
    tablePrefix: audit_
    fields:
      - name: ID
        kind: int
        primaryKey: true
  - name: Settings
    tableName: settings
    fields:
      - name: Key
        kind: string
        primaryKey: true
`

type fakeProber map[string]bool

func (f fakeProber) Exists(ctx context.Context, table string) (bool, error) { return f[table], nil }
func (f fakeProber) Close() error                                           { return nil }

func writeDefinitions(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definitions), 0o600))
	return path
}

func TestRunListsDays(t *testing.T) {
	var out bytes.Buffer
	cache := schemacache.New()
	err := run(context.Background(), &out, cache, nil, request{
		schemaFile: writeDefinitions(t), entity: "News", from: "2020-02-28", to: "2020-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "20200228\n20200229\n20200301\n", out.String())
	assert.Equal(t, 3, cache.Len())
}

func TestRunListsMonthsWithPrefix(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, schemacache.New(), nil, request{
		schemaFile: writeDefinitions(t), entity: "Audit", from: "2019-12", to: "2020-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "audit_201912\naudit_202001\naudit_202002\n", out.String())
}

func TestRunProbes(t *testing.T) {
	var out bytes.Buffer
	probe := fakeProber{"20200327": true}
	err := run(context.Background(), &out, schemacache.New(), probe, request{
		schemaFile: writeDefinitions(t), entity: "News", from: "2020-03-26", to: "2020-03-27",
	})
	require.NoError(t, err)
	assert.Equal(t, "20200326\tmissing\n20200327\tpresent\n", out.String())
}

func TestRunRejectsBadInput(t *testing.T) {
	path := writeDefinitions(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  request
	}{
		{"MissingFlags", request{schemaFile: path}},
		{"UnknownEntity", request{schemaFile: path, entity: "Nope", from: "2020-03-01"}},
		{"Unpartitioned", request{schemaFile: path, entity: "Settings", from: "2020-03-01"}},
		{"Reversed", request{schemaFile: path, entity: "News", from: "2020-03-02", to: "2020-03-01"}},
		{"TooMany", request{schemaFile: path, entity: "News", from: "1990-01-01", to: "2030-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(ctx, &bytes.Buffer{}, schemacache.New(), nil, tt.req))
		})
	}

	err := run(ctx, &bytes.Buffer{}, schemacache.New(), nil, request{schemaFile: path, entity: "News", from: "2020-13-01"})
	assert.True(t, errors.IsInvalidDescriptor(err))
}

func setFlags(t *testing.T, schemaPath, entity, from string, probe bool) {
	t.Helper()
	prev := []any{*envFile, *schemaFile, *entityName, *fromFlag, *toFlag, *probeFlag}
	t.Cleanup(func() {
		*envFile, *schemaFile, *entityName = prev[0].(string), prev[1].(string), prev[2].(string)
		*fromFlag, *toFlag, *probeFlag = prev[3].(string), prev[4].(string), prev[5].(bool)
	})
	*envFile = filepath.Join(t.TempDir(), "missing.env")
	*schemaFile, *entityName, *fromFlag, *toFlag, *probeFlag = schemaPath, entity, from, "", probe
}

func TestExecuteReturnsExitCodes(t *testing.T) {
	t.Setenv("PARTITIONSTORE_BACKEND", "memory")
	t.Setenv("PARTITIONSTORE_SCHEMA_FILE", "")
	t.Setenv("PARTITIONSTORE_LOG_MODE", "prod")
	path := writeDefinitions(t)

	setFlags(t, path, "News", "2020-03-27", false)
	assert.Equal(t, 0, execute())

	setFlags(t, path, "", "", false)
	assert.Equal(t, 1, execute())

	// memory has nothing to probe
	setFlags(t, path, "News", "2020-03-27", true)
	assert.Equal(t, 1, execute())
}
