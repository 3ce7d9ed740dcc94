/*
Package registry binds Go types to partitionstore entity types.

A Registry is created explicitly and handed to the session factory; it is
usually populated once during start-up:

	reg := registry.New()
	registry.MustRegister[News](reg, schema.EntityTypeOf[News](
	    schema.WithGranularity(schema.GranularityDay),
	    schema.WithTableName("news"),
	))

Entity types loaded from a definitions file are bound to a Go type when
registered:

	types, _ := schema.LoadDefinitionsFile("entities.yaml")
	for _, et := range types {
	    if et.Name() == "News" {
	        registry.MustRegister[News](reg, et)
	    }
	}

Entity names are unique per registry. Since schema cache keys are built from
the entity name, uniqueness here is what prevents two entity types from
sharing a cached schema.
*/
package registry
