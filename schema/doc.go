/*
Package schema derives per-partition schema artifacts for logical entities.

One logical entity (for example News) is stored in many physical objects,
one per partition (for example one table per day). This package holds the
pure parts of that mapping:

  - EntityType describes the logical shape: fields, primary key, the base
    table, the partition granularity and partition-specific column renames.
  - Partition is the normalized descriptor a session targets. Day(t) drops
    the clock, Month(t) drops the day; the zero value is Unpartitioned.
  - DeriveKey pairs an entity with a partition into a comparable Key.
  - Builder turns (EntityType, Partition) into an immutable Artifact:
    physical table name, primary key and field-to-column mapping.

Naming rule:
Physical object names are the entity's table prefix followed by the
partition in a fixed-width, sortable layout:

	day   -> YYYYMMDD   News at 2020-03-27 -> "20200327"
	month -> YYYYMM     Audit in 2020-03   -> "audit_202003" (prefix "audit_")

Unpartitioned sessions address the entity's base table name. Tools that
enumerate partitions should call EntityType.ObjectName rather than
re-implement the rule.

Field mapping:
Fields are either declared (WithFields, or YAML definitions) or reflected
from a struct using `store` tags:

	type News struct {
	    ID          string    `store:"id,pk"`
	    Title       string    `store:"title"`
	    PublishedAt time.Time // column "published_at"
	    Draft       bool      `store:"-"`
	}

Artifact.Row and Artifact.Scan convert between such structs and
column-keyed rows for storage backends.
*/
package schema
