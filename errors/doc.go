/*
Package errors provides semantic error types for partitionstore.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Schema errors:

	var (
	    ErrInvalidDescriptor  = errors.New("invalid partition descriptor")
	    ErrInvalidMapping     = errors.New("invalid entity mapping")
	    ErrBuildFailure       = errors.New("schema build failed")
	    ErrStorageUnavailable = errors.New("storage unavailable")
	)

InvalidDescriptor and InvalidMapping are local validation failures surfaced
synchronously by Open. BuildFailure wraps anything unexpected raised while a
schema artifact was being built. StorageUnavailable is produced by storage
backends when a physical object (for example a daily table) does not exist yet.

Usage:

	session, err := partitionstore.Open[News](ctx, factory, schema.Day(ts))
	if err != nil {
	    if errors.IsInvalidDescriptor(err) {
	        return fmt.Errorf("bad partition date: %w", err)
	    }
	    return err
	}

	if _, err := session.Commit(ctx); errors.IsStorageUnavailable(err) {
	    // the partition has not been provisioned yet
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
