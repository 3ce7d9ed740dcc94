/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/suparena/partitionstore/schema"
)

// columnType maps a field kind onto the dialect's column type. Times are
// stored as fixed-width UTC text on sqlite so they sort lexically.
func columnType(dialect string, k schema.Kind) (string, error) {
	if dialect == DialectPostgres {
		switch k {
		case schema.KindString:
			return "TEXT", nil
		case schema.KindInt, schema.KindUint:
			return "BIGINT", nil
		case schema.KindFloat:
			return "DOUBLE PRECISION", nil
		case schema.KindBool:
			return "BOOLEAN", nil
		case schema.KindTime:
			return "TIMESTAMPTZ", nil
		case schema.KindBytes:
			return "BYTEA", nil
		}
	} else {
		switch k {
		case schema.KindString, schema.KindTime:
			return "TEXT", nil
		case schema.KindInt, schema.KindUint, schema.KindBool:
			return "INTEGER", nil
		case schema.KindFloat:
			return "REAL", nil
		case schema.KindBytes:
			return "BLOB", nil
		}
	}
	return "", fmt.Errorf("no %s column type for kind %s", dialect, k)
}

func quote(db *gorm.DB, name string) string {
	var b strings.Builder
	db.Dialector.QuoteTo(&b, name)
	return b.String()
}

// EnsureTable creates the artifact's table if it does not exist. Production
// partitions are provisioned externally; this serves tests and tooling.
func EnsureTable(ctx context.Context, db *gorm.DB, a *schema.Artifact) error {
	dialect := db.Dialector.Name()
	cols := a.Columns()
	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		typ, err := columnType(dialect, c.Kind)
		if err != nil {
			return err
		}
		def := quote(db, c.Name) + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	pk := a.PrimaryKey()
	pkNames := make([]string, len(pk))
	for i, c := range pk {
		pkNames[i] = quote(db, c.Name)
	}
	defs = append(defs, "PRIMARY KEY ("+strings.Join(pkNames, ", ")+")")

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(db, a.TableName()), strings.Join(defs, ", "))
	if err := db.WithContext(ctx).Exec(ddl).Error; err != nil {
		return fmt.Errorf("create table %s: %w", a.TableName(), err)
	}
	return nil
}
