// Package mysql provides MySQL connectivity via go-sql-driver/mysql.
package mysql

import (
	"fmt"
	"strings"

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/schema"
)

type dialect struct{}

func (dialect) Name() string { return "mysql" }

func (dialect) Placeholder(n int) string { return "?" }

func (dialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d dialect) ColumnDDL(col schema.Column) (string, error) {
	switch col.Type {
	case schema.TypeString:
		size := col.Size
		if size == 0 {
			size = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", size), nil
	case schema.TypeText:
		return "TEXT", nil
	case schema.TypeInteger:
		return "INT", nil
	case schema.TypeBigInteger:
		return "BIGINT", nil
	case schema.TypeFloat:
		return "DOUBLE", nil
	case schema.TypeDate:
		return "DATE", nil
	case schema.TypeDateTime:
		return "DATETIME", nil
	case schema.TypeBoolean:
		return "BOOLEAN", nil
	default:
		return "", fmt.Errorf("mysql: unsupported column type %s", col.Type)
	}
}

func (d dialect) PrimaryKeyDDL() string {
	return "`id` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
}

func (dialect) TableExistsSQL() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

// MySQL has no partial indexes; the locking read in the store carries the
// one-current-version invariant instead.
func (dialect) CurrentVersionIndexSQL(table, identifier string) string { return "" }

func (dialect) LockHint() string   { return "" }
func (dialect) LockSuffix() string { return "FOR UPDATE" }

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
