/*
Package schemacache caches schema artifacts per (entity type, partition) key.

Building an artifact reflects over entity metadata and validates the
mapping, so it should happen once per partition rather than once per
session. The cache guarantees:

  - at most one build per key at a time; concurrent callers for a key
    whose build is in flight block until it finishes and share its result
  - a failed build is reported to every waiter and caches nothing, so
    the next call for the key builds again
  - once published an artifact is reused until it is invalidated, evicted
    by the optional LRU bound or expired by the optional TTL
  - a caller that gives up waiting (context cancelled) does not cancel
    the build other callers depend on

Usage:

	cache := schemacache.New(
	    schemacache.WithMaxEntries(400),
	    schemacache.WithMetricsScope(scope),
	)
	key := schema.DeriveKey(newsType, schema.Day(now))
	artifact, err := cache.GetOrBuild(ctx, key, func() (*schema.Artifact, error) {
	    return builder.Build(newsType, key.Partition())
	})

Builder errors that are not descriptor or mapping errors are wrapped as
errors.BuildFailureError, as are panics raised by the build function.
*/
package schemacache
