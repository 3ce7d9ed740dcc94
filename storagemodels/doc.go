/*
Package storagemodels defines the data structures shared by partitionstore
storage backends.

Query:
A backend neutral read against the physical object a session is bound to.
Filters name logical fields; backends translate them to columns through
the session's schema artifact:

	q := storagemodels.NewQuery().
	    Eq("Category", "sports").
	    Where("Title", storagemodels.OpBeginsWith, "Local").
	    SortBy("PublishedAt", true).
	    WithLimit(20)

ScanOptions:
Configuration for paginated reads and batched writes:

	opts := []storagemodels.ScanOption{
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(progressFunc),
	}

Compare and Match evaluate filters over normalized column values for
backends that filter in process.
*/
package storagemodels
