/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads process configuration from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names accepted in PARTITIONSTORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendSQL      = "sql"
)

// Config holds everything needed to wire a factory and its storage backend.
type Config struct {
	Backend    string `env:"PARTITIONSTORE_BACKEND" envDefault:"memory"`
	SchemaFile string `env:"PARTITIONSTORE_SCHEMA_FILE"`
	LogMode    string `env:"PARTITIONSTORE_LOG_MODE" envDefault:"dev"`

	AWS   AWSConfig
	SQL   SQLConfig
	Cache CacheConfig
}

// AWSConfig mirrors the variable names used by the DynamoDB store tests.
type AWSConfig struct {
	AccessKey string `env:"AWS_ACCESS_KEY"`
	SecretKey string `env:"AWS_SECRET_KEY"`
	Region    string `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"AWS_DDB_ENDPOINT"`
}

type SQLConfig struct {
	Dialect string `env:"PARTITIONSTORE_SQL_DIALECT" envDefault:"sqlite"`
	DSN     string `env:"PARTITIONSTORE_SQL_DSN"`
}

// CacheConfig bounds the schema cache. Zero values mean unbounded.
type CacheConfig struct {
	MaxEntries int           `env:"PARTITIONSTORE_CACHE_MAX_ENTRIES" envDefault:"0"`
	TTL        time.Duration `env:"PARTITIONSTORE_CACHE_TTL" envDefault:"0s"`
}

// Load reads the given .env files (missing files are skipped) and then parses
// the environment. Variables already set in the environment win over files.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

// Validate checks backend specific requirements.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.AWS.Region == "" {
			return errors.New("AWS_REGION is required for the dynamodb backend")
		}
	case BackendSQL:
		switch c.SQL.Dialect {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("unsupported sql dialect %q", c.SQL.Dialect)
		}
		if c.SQL.DSN == "" {
			return errors.New("PARTITIONSTORE_SQL_DSN is required for the sql backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Cache.MaxEntries < 0 {
		return errors.New("cache max entries must not be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	return nil
}
