/*
Package sqlstore provides a gorm implementation of the DataStore interface
for sqlite and postgres.

Each handle addresses the table named by its schema artifact, one table per
partition. Rows are written as column maps derived from the artifact, so no
gorm model structs are needed:

	db, err := sqlstore.Open(sqlstore.DialectSQLite, "news.db")
	opener := sqlstore.NewOpener[News](db)

Tables are expected to exist. EnsureTable creates one from an artifact for
tests and tooling. A missing table is reported as
errors.ErrStorageUnavailable ("no such table" on sqlite, SQLSTATE 42P01 on
postgres).

sqlite uses the pure Go modernc.org/sqlite driver, so no cgo is required.
*/
package sqlstore
