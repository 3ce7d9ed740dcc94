/*
Package partitionstore maps one logical entity model onto many physically
partitioned storage objects, typically one table per day.

Each (entity type, partition) pair resolves to a schema artifact naming the
physical table and describing its columns. Artifacts are built once per
pair and shared through a schemacache.Cache; concurrent first opens of the
same partition trigger exactly one build, and failed builds are never cached.

The library follows a register → open → work workflow:
  - Register: describe entity types in a registry.Registry (Go struct tags
    or a YAML definitions file) and set a storage opener per Go type
  - Open: bind a Session to one partition
  - Work: query, stage changes, commit, close

Basic Usage:

	reg := registry.New()
	registry.MustRegister[News](reg, schema.EntityTypeOf[News](
	    schema.WithGranularity(schema.GranularityDay)))

	factory := partitionstore.NewFactory(reg, schemacache.New())
	partitionstore.RegisterOpener[News](factory, sqlstore.NewOpener[News](db))

	session, err := partitionstore.Open[News](ctx, factory,
	    schema.DayOf(2020, time.March, 27)) // table "20200327"
	if err != nil {
	    return err
	}
	defer session.Close()

	session.Add(News{ID: "n-1", Title: "Hello"})
	if _, err := session.Commit(ctx); err != nil {
	    return err
	}

Provisioning physical tables is outside the library: opening a session for a
partition whose table does not exist succeeds, and storage operations then
fail with errors.ErrStorageUnavailable.
*/
package partitionstore
