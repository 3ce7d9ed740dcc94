/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PARTITIONSTORE_BACKEND", "")
	require.NoError(t, os.Unsetenv("PARTITIONSTORE_BACKEND"))
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "sqlite", cfg.SQL.Dialect)
	assert.Equal(t, 0, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Duration(0), cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PARTITIONSTORE_BACKEND=SQL\n" +
		"PARTITIONSTORE_SQL_DSN=file:news.db\n" +
		"PARTITIONSTORE_CACHE_MAX_ENTRIES=31\n" +
		"PARTITIONSTORE_CACHE_TTL=48h\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that are already set, so make
	// sure the ones under test start out unset.
	for _, k := range []string{"PARTITIONSTORE_BACKEND", "PARTITIONSTORE_SQL_DSN", "PARTITIONSTORE_CACHE_MAX_ENTRIES", "PARTITIONSTORE_CACHE_TTL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQL, cfg.Backend)
	assert.Equal(t, "file:news.db", cfg.SQL.DSN)
	assert.Equal(t, 31, cfg.Cache.MaxEntries)
	assert.Equal(t, 48*time.Hour, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{Backend: BackendMemory}},
		{name: "unknown backend", cfg: Config{Backend: "cassandra"}, wantErr: true},
		{name: "dynamodb without region", cfg: Config{Backend: BackendDynamoDB}, wantErr: true},
		{name: "dynamodb", cfg: Config{Backend: BackendDynamoDB, AWS: AWSConfig{Region: "eu-west-1"}}},
		{name: "sql without dsn", cfg: Config{Backend: BackendSQL, SQL: SQLConfig{Dialect: "sqlite"}}, wantErr: true},
		{name: "sql bad dialect", cfg: Config{Backend: BackendSQL, SQL: SQLConfig{Dialect: "oracle", DSN: "x"}}, wantErr: true},
		{name: "negative ttl", cfg: Config{Backend: BackendMemory, Cache: CacheConfig{TTL: -time.Second}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
