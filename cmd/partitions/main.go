/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command partitions prints the physical object names an entity's
// partitions map to over a date range, optionally probing the configured
// backend for each object.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/suparena/partitionstore"
	"github.com/suparena/partitionstore/config"
	"github.com/suparena/partitionstore/logger"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/schemacache"
)

// maxPartitions bounds a single listing
const maxPartitions = 10000

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	envFile     = flag.String("env", ".env", "Optional .env file")
	schemaFile  = flag.String("schema", "", "Entity definitions YAML (default $PARTITIONSTORE_SCHEMA_FILE)")
	entityName  = flag.String("entity", "", "Entity name")
	fromFlag    = flag.String("from", "", "First partition, YYYY-MM-DD for days or YYYY-MM for months")
	toFlag      = flag.String("to", "", "Last partition (default: -from)")
	probeFlag   = flag.Bool("probe", false, "Report whether each object exists in the configured backend")
)

func main() {
	// Parse flags early to catch version flag
	flag.Parse()

	// Handle version flag
	if *versionFlag || *vFlag {
		info := partitionstore.GetVersionInfo()
		fmt.Printf("partitionstore partitions version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	os.Exit(execute())
}

// execute wires configuration, logging and the optional backend probe and
// returns the process exit code. Deferred cleanup runs before main exits.
func execute() int {
	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Sync()

	if *schemaFile == "" {
		*schemaFile = cfg.SchemaFile
	}
	req := request{schemaFile: *schemaFile, entity: *entityName, from: *fromFlag, to: *toFlag}

	var probe prober
	if *probeFlag {
		if err := cfg.Validate(); err != nil {
			log.Error("invalid configuration", "error", err)
			return 1
		}
		probe, err = newProber(context.Background(), cfg)
		if err != nil {
			log.Error("cannot reach backend", "backend", cfg.Backend, "error", err)
			return 1
		}
		defer probe.Close()
	}

	cache := schemacache.New(
		schemacache.WithMaxEntries(cfg.Cache.MaxEntries),
		schemacache.WithTTL(cfg.Cache.TTL),
		schemacache.WithLogger(log),
	)
	if err := run(context.Background(), os.Stdout, cache, probe, req); err != nil {
		log.Error("partitions failed", "error", err)
		return 1
	}
	return 0
}

type request struct {
	schemaFile string
	entity     string
	from       string
	to         string
}

// run resolves every partition in the requested range through the schema
// cache and writes one object name per line
func run(ctx context.Context, w io.Writer, cache *schemacache.Cache, probe prober, req request) error {
	if req.schemaFile == "" || req.entity == "" || req.from == "" {
		return fmt.Errorf("-schema, -entity and -from are required")
	}
	defs, err := schema.LoadDefinitionsFile(req.schemaFile)
	if err != nil {
		return err
	}
	var et *schema.EntityType
	for _, t := range defs {
		if t.Name() == req.entity {
			et = t
		}
	}
	if et == nil {
		return fmt.Errorf("entity %q not defined in %s", req.entity, req.schemaFile)
	}
	if et.Granularity() == schema.GranularityNone {
		return fmt.Errorf("entity %s is not partitioned", et.Name())
	}

	from, err := schema.ParsePartition(et.Granularity(), req.from)
	if err != nil {
		return err
	}
	to := from
	if req.to != "" {
		if to, err = schema.ParsePartition(et.Granularity(), req.to); err != nil {
			return err
		}
	}
	if to.Compare(from) < 0 {
		return fmt.Errorf("-to %s is before -from %s", to, from)
	}

	builder := schema.NewBuilder()
	n := 0
	for p := from; p.Compare(to) <= 0; p = p.Next() {
		if n++; n > maxPartitions {
			return fmt.Errorf("range exceeds %d partitions", maxPartitions)
		}
		a, err := cache.GetOrBuild(ctx, schema.DeriveKey(et, p), func() (*schema.Artifact, error) {
			return builder.Build(et, p)
		})
		if err != nil {
			return err
		}
		if probe == nil {
			fmt.Fprintln(w, a.TableName())
			continue
		}
		exists, err := probe.Exists(ctx, a.TableName())
		if err != nil {
			return err
		}
		status := "present"
		if !exists {
			status = "missing"
		}
		fmt.Fprintf(w, "%s\t%s\n", a.TableName(), status)
	}
	return nil
}
