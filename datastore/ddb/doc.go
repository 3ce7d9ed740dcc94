/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Every handle addresses the single table named by its schema artifact, so a
day partitioned entity uses one DynamoDB table per day. Tables are
provisioned outside the library; operations against a missing table report
errors.ErrStorageUnavailable.

Item layout:
Each column of the artifact becomes one attribute, plus an EntityType
attribute. Without an index map, the table key is the primary key columns.
With an index map containing PK, items are addressed through expanded
templates instead (single-table design):

	indexMap := map[string]string{
	    "PK":     "NEWS#{Partition}", // {Partition} expands at build time
	    "SK":     "ITEM#{ID}",        // field macros expand per item
	    "GSI1PK": "TITLE#{Title}",
	}

Queries:
Query scans the table with a filter expression built from the query's
filters, re-checks the filters in process and applies ordering and limits
there. Paging, retries and progress reporting are configured with scan
options:

	opener := ddb.NewOpener[News](client,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.ScanProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)
*/
package ddb
