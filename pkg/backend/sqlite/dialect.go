// Package sqlite provides the embedded file-based engine via modernc.org/sqlite.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/schema"
)

type dialect struct{}

func (dialect) Name() string { return "sqlite" }

func (dialect) Placeholder(n int) string { return "?" }

func (dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d dialect) ColumnDDL(col schema.Column) (string, error) {
	switch col.Type {
	case schema.TypeString:
		if col.Size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", col.Size), nil
		}
		return "TEXT", nil
	case schema.TypeText:
		return "TEXT", nil
	case schema.TypeInteger:
		return "INTEGER", nil
	case schema.TypeBigInteger:
		return "BIGINT", nil
	case schema.TypeFloat:
		return "REAL", nil
	case schema.TypeDate:
		return "DATE", nil
	case schema.TypeDateTime:
		return "TIMESTAMP", nil
	case schema.TypeBoolean:
		return "BOOLEAN", nil
	default:
		return "", fmt.Errorf("sqlite: unsupported column type %s", col.Type)
	}
}

func (d dialect) PrimaryKeyDDL() string {
	return `"id" INTEGER PRIMARY KEY AUTOINCREMENT`
}

func (dialect) TableExistsSQL() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (d dialect) CurrentVersionIndexSQL(table, identifier string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE %s IS NULL",
		d.QuoteIdentifier("ux_"+table+"_current"),
		d.QuoteIdentifier(table),
		d.QuoteIdentifier(identifier),
		d.QuoteIdentifier(schema.ColExpiryDate))
}

// SQLite serializes writers on the database file; the write transaction of
// the unit-of-work already excludes concurrent revisions.
func (dialect) LockHint() string   { return "" }
func (dialect) LockSuffix() string { return "" }

func (d dialect) InsertSQL(table string, columns []string) (string, bool) {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(marks, ", ")), false
}

var _ backend.Dialect = dialect{}
