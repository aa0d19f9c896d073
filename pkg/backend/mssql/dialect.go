// Package mssql provides SQL Server connectivity via microsoft/go-mssqldb.
package mssql

import (
	"fmt"
	"strings"

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/schema"
)

type dialect struct{}

func (dialect) Name() string { return "sqlserver" }

func (dialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

// QuoteIdentifier uses square brackets and escapes ] as ]], the QUOTENAME
// convention.
func (dialect) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d dialect) ColumnDDL(col schema.Column) (string, error) {
	switch col.Type {
	case schema.TypeString:
		size := col.Size
		if size == 0 {
			size = 255
		}
		return fmt.Sprintf("NVARCHAR(%d)", size), nil
	case schema.TypeText:
		return "NVARCHAR(MAX)", nil
	case schema.TypeInteger:
		return "INT", nil
	case schema.TypeBigInteger:
		return "BIGINT", nil
	case schema.TypeFloat:
		return "FLOAT", nil
	case schema.TypeDate:
		return "DATE", nil
	case schema.TypeDateTime:
		return "DATETIME2", nil
	case schema.TypeBoolean:
		return "BIT", nil
	default:
		return "", fmt.Errorf("sqlserver: unsupported column type %s", col.Type)
	}
}

func (d dialect) PrimaryKeyDDL() string {
	return "[id] BIGINT IDENTITY(1,1) PRIMARY KEY"
}

func (dialect) TableExistsSQL() string {
	return "SELECT name FROM sys.tables WHERE name = @p1"
}

// SQL Server supports filtered unique indexes.
func (d dialect) CurrentVersionIndexSQL(table, identifier string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE %s IS NULL",
		d.QuoteIdentifier("ux_"+table+"_current"),
		d.QuoteIdentifier(table),
		d.QuoteIdentifier(identifier),
		d.QuoteIdentifier(schema.ColExpiryDate))
}

func (dialect) LockHint() string   { return "WITH (UPDLOCK, HOLDLOCK)" }
func (dialect) LockSuffix() string { return "" }

func (d dialect) InsertSQL(table string, columns []string) (string, bool) {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.[id] VALUES (%s)",
		d.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(marks, ", ")), true
}

var _ backend.Dialect = dialect{}
