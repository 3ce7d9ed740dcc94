/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suparena/partitionstore/datastore"
	pserrors "github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/storagemodels"
)

// sqliteTimeLayout is fixed width so stored times compare correctly as text
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Opener hands out handles on one gorm connection pool
type Opener[T any] struct {
	db *gorm.DB
}

// NewOpener constructs an opener for T on db
func NewOpener[T any](db *gorm.DB) *Opener[T] {
	return &Opener[T]{db: db}
}

// Open binds a handle to the artifact's table. Each handle gets its own
// gorm session; the pool stays shared.
func (o *Opener[T]) Open(ctx context.Context, artifact *schema.Artifact) (datastore.DataStore[T], error) {
	return &DataStore[T]{
		db:       o.db.Session(&gorm.Session{NewDB: true}),
		artifact: artifact,
		table:    artifact.TableName(),
		dialect:  o.db.Dialector.Name(),
	}, nil
}

// DataStore implements datastore.DataStore[T] on one SQL table
type DataStore[T any] struct {
	db       *gorm.DB
	artifact *schema.Artifact
	table    string
	dialect  string
}

var (
	_ datastore.DataStore[struct{}]   = (*DataStore[struct{}])(nil)
	_ datastore.BatchWriter[struct{}] = (*DataStore[struct{}])(nil)
)

// encode converts a normalized value to what the driver stores
func (d *DataStore[T]) encode(v any) any {
	if t, ok := v.(time.Time); ok && d.dialect != DialectPostgres {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return v
}

func (d *DataStore[T]) keyConditions(tx *gorm.DB, key []any) (*gorm.DB, error) {
	k, err := d.artifact.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	for i, c := range d.artifact.PrimaryKey() {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: c.Name}, Value: d.encode(k[i])})
	}
	return tx, nil
}

// Get retrieves a single row by primary key values
func (d *DataStore[T]) Get(ctx context.Context, key ...any) (*T, error) {
	tx, err := d.keyConditions(d.db.WithContext(ctx).Table(d.table), key)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := tx.Limit(1).Find(&rows).Error; err != nil {
		return nil, mapError(d.table, "select", err)
	}
	if len(rows) == 0 {
		return nil, pserrors.NewNotFoundError(d.artifact.Entity(), schema.KeyString(key))
	}
	result := new(T)
	if err := d.artifact.Scan(rows[0], result); err != nil {
		return nil, err
	}
	return result, nil
}

func condition(c datastore.Condition, value any) clause.Expression {
	col := clause.Column{Name: c.Column}
	switch c.Op {
	case storagemodels.OpNe:
		return clause.Neq{Column: col, Value: value}
	case storagemodels.OpLt:
		return clause.Lt{Column: col, Value: value}
	case storagemodels.OpLe:
		return clause.Lte{Column: col, Value: value}
	case storagemodels.OpGt:
		return clause.Gt{Column: col, Value: value}
	case storagemodels.OpGe:
		return clause.Gte{Column: col, Value: value}
	case storagemodels.OpBeginsWith:
		return clause.Expr{SQL: `? LIKE ? ESCAPE '\'`, Vars: []any{col, escapeLike(value.(string)) + "%"}}
	default:
		return clause.Eq{Column: col, Value: value}
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Query pushes filters, ordering and limits down to SQL. Prefix filters
// are re-checked in process because LIKE folds case on sqlite.
func (d *DataStore[T]) Query(ctx context.Context, q *storagemodels.Query) ([]T, error) {
	plan, err := datastore.PlanQuery(d.artifact, q)
	if err != nil {
		return nil, err
	}

	recheck := false
	tx := d.db.WithContext(ctx).Table(d.table)
	for _, c := range plan.Conditions {
		if c.Op == storagemodels.OpBeginsWith {
			recheck = true
		}
		tx = tx.Where(condition(c, d.encode(c.Value)))
	}
	if plan.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: plan.OrderBy}, Desc: plan.Descending})
	}
	for _, c := range d.artifact.PrimaryKey() {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: c.Name}})
	}
	if plan.Limit > 0 && !recheck {
		tx = tx.Limit(plan.Limit)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, mapError(d.table, "select", err)
	}

	results := make([]T, 0, len(rows))
	for _, row := range rows {
		var entity T
		if err := d.artifact.Scan(row, &entity); err != nil {
			return nil, err
		}
		if recheck {
			normalized, err := d.artifact.Row(entity)
			if err != nil {
				return nil, err
			}
			ok, err := plan.Matches(normalized)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		results = append(results, entity)
		if plan.Limit > 0 && len(results) == plan.Limit {
			break
		}
	}
	return results, nil
}

func (d *DataStore[T]) put(tx *gorm.DB, entity T) error {
	row, err := d.artifact.Row(entity)
	if err != nil {
		return err
	}
	values := make(map[string]any, len(row))
	for k, v := range row {
		values[k] = d.encode(v)
	}

	var conflict clause.OnConflict
	var updates []string
	for _, c := range d.artifact.Columns() {
		if c.PrimaryKey {
			conflict.Columns = append(conflict.Columns, clause.Column{Name: c.Name})
		} else {
			updates = append(updates, c.Name)
		}
	}
	if len(updates) > 0 {
		conflict.DoUpdates = clause.AssignmentColumns(updates)
	} else {
		conflict.DoNothing = true
	}

	if err := tx.Table(d.table).Clauses(conflict).Create(values).Error; err != nil {
		return mapError(d.table, "upsert", err)
	}
	return nil
}

func (d *DataStore[T]) delete(tx *gorm.DB, key []any) error {
	k, err := d.artifact.NormalizeKey(key)
	if err != nil {
		return err
	}
	pk := d.artifact.PrimaryKey()
	conds := make([]string, len(pk))
	vars := []any{clause.Table{Name: d.table}}
	for i, c := range pk {
		conds[i] = "? = ?"
		vars = append(vars, clause.Column{Name: c.Name}, d.encode(k[i]))
	}

	res := tx.Exec("DELETE FROM ? WHERE "+strings.Join(conds, " AND "), vars...)
	if res.Error != nil {
		return mapError(d.table, "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return pserrors.NewNotFoundError(d.artifact.Entity(), schema.KeyString(k))
	}
	return nil
}

// Put inserts entity or replaces the row with the same primary key
func (d *DataStore[T]) Put(ctx context.Context, entity T) error {
	return d.put(d.db.WithContext(ctx), entity)
}

// Delete removes a row by primary key values
func (d *DataStore[T]) Delete(ctx context.Context, key ...any) error {
	return d.delete(d.db.WithContext(ctx), key)
}

// WriteBatch applies puts then deletes in one transaction
func (d *DataStore[T]) WriteBatch(ctx context.Context, puts []T, deletes [][]any) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entity := range puts {
			if err := d.put(tx, entity); err != nil {
				return err
			}
		}
		for _, key := range deletes {
			if err := d.delete(tx, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close is a no-op: the pool belongs to the opener's owner.
func (d *DataStore[T]) Close() error {
	return nil
}

// mapError reports a missing table as StorageUnavailable; other errors are
// wrapped with the operation.
func mapError(table, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "42P01" {
		return pserrors.NewStorageUnavailableError(table, err) // undefined_table
	}
	if strings.Contains(strings.ToLower(err.Error()), "no such table") {
		return pserrors.NewStorageUnavailableError(table, err)
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
