// Package postgres provides PostgreSQL connectivity via the pgx stdlib driver.
package postgres

import (
	"fmt"
	"strings"

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/schema"
)

type dialect struct{}

func (dialect) Name() string { return "postgres" }

func (dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

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
		return "DOUBLE PRECISION", nil
	case schema.TypeDate:
		return "DATE", nil
	case schema.TypeDateTime:
		return "TIMESTAMPTZ", nil
	case schema.TypeBoolean:
		return "BOOLEAN", nil
	default:
		return "", fmt.Errorf("postgres: unsupported column type %s", col.Type)
	}
}

func (d dialect) PrimaryKeyDDL() string {
	return `"id" BIGSERIAL PRIMARY KEY`
}

func (dialect) TableExistsSQL() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
}

func (d dialect) CurrentVersionIndexSQL(table, identifier string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE %s IS NULL",
		d.QuoteIdentifier("ux_"+table+"_current"),
		d.QuoteIdentifier(table),
		d.QuoteIdentifier(identifier),
		d.QuoteIdentifier(schema.ColExpiryDate))
}

func (dialect) LockHint() string   { return "" }
func (dialect) LockSuffix() string { return "FOR UPDATE" }

func (d dialect) InsertSQL(table string, columns []string) (string, bool) {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		d.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(marks, ", "),
		d.QuoteIdentifier(schema.ColID)), true
}

var _ backend.Dialect = dialect{}
