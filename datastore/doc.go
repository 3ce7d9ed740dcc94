/*
Package datastore defines the storage collaborator interfaces used by
partitionstore sessions.

A DataStore[T] is bound to exactly one physical object, the table named by
the schema artifact it was opened with:

	type DataStore[T any] interface {
	    Get(ctx context.Context, key ...any) (*T, error)
	    Query(ctx context.Context, q *storagemodels.Query) ([]T, error)
	    Put(ctx context.Context, entity T) error
	    Delete(ctx context.Context, key ...any) error
	    Close() error
	}

Handles are produced by an Opener[T]. Handles that can write several
changes at once also implement BatchWriter[T].

PlanQuery translates a backend neutral storagemodels.Query into column
conditions using the artifact's field mapping.

Implementations:
  - ddb: DynamoDB, one table per artifact
  - sqlstore: gorm (sqlite, postgres), one table per artifact
  - mock: in-memory server with provisioned tables, for tests
*/
package datastore
