/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/storagemodels"
)

// DataStore is a storage handle bound to the single physical object named by
// the artifact it was opened with. Keys are primary key values in the
// artifact's key order.
type DataStore[T any] interface {
	Get(ctx context.Context, key ...any) (*T, error)

	Query(ctx context.Context, q *storagemodels.Query) ([]T, error)

	Put(ctx context.Context, entity T) error

	Delete(ctx context.Context, key ...any) error

	// Close releases the handle. It must not affect other handles opened
	// against the same artifact.
	Close() error
}

// BatchWriter is implemented by handles that can apply a set of writes in
// one round trip. Implementations apply all changes or none when the backend
// supports it.
type BatchWriter[T any] interface {
	WriteBatch(ctx context.Context, puts []T, deletes [][]any) error
}

// Opener acquires a storage handle for the object described by an artifact.
// Opening does not provision the object; a missing object surfaces as
// errors.ErrStorageUnavailable, at open time or on first use.
type Opener[T any] interface {
	Open(ctx context.Context, artifact *schema.Artifact) (DataStore[T], error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc[T any] func(ctx context.Context, artifact *schema.Artifact) (DataStore[T], error)

func (f OpenerFunc[T]) Open(ctx context.Context, artifact *schema.Artifact) (DataStore[T], error) {
	return f(ctx, artifact)
}
