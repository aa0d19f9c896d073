// Package backend abstracts the relational engines the versioned store can
// write to. Engine adapters live in subpackages and register themselves in
// an init function; importing an adapter package compiles its engine in.
package backend

import (
	"context"
	"database/sql"

	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/schema"
)

// Querier is the subset of database/sql used by the versioned store.
// Both *sql.DB and *sql.Tx satisfy it; the store always receives the
// transaction of the active unit-of-work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect captures the per-engine SQL differences the store and the
// connector need: placeholder style, identifier quoting, DDL type mapping,
// schema introspection and row locking.
type Dialect interface {
	// Name returns the backend kind this dialect belongs to.
	Name() string

	// Placeholder returns the 1-based bind parameter marker ($1, ?, @p1).
	Placeholder(n int) string

	// QuoteIdentifier safely quotes a table or column name.
	QuoteIdentifier(name string) string

	// ColumnDDL returns the storage type clause for a declared column.
	ColumnDDL(col schema.Column) (string, error)

	// PrimaryKeyDDL returns the full definition of the auto-assigned
	// surrogate key column.
	PrimaryKeyDDL() string

	// TableExistsSQL returns an introspection query with one bind parameter
	// (the table name) that yields a row iff the table exists.
	TableExistsSQL() string

	// CurrentVersionIndexSQL returns the DDL for the partial unique index
	// enforcing one current version per identifier, or "" when the engine
	// has no partial indexes and the store's locking read must serve instead.
	CurrentVersionIndexSQL(table, identifier string) string

	// LockHint returns a table hint placed after the table name in the
	// current-version query ("" for most engines).
	LockHint() string

	// LockSuffix returns the clause appended to the current-version query
	// ("FOR UPDATE" where supported, "" otherwise).
	LockSuffix() string

	// InsertSQL builds the insert statement for the given columns. When
	// returning is true the statement yields the new surrogate key as a
	// result row; otherwise the driver's LastInsertId is used.
	InsertSQL(table string, columns []string) (query string, returning bool)
}

// DSNBuilder builds a driver DSN from the process configuration.
// Missing required parameters surface as apperrors.ErrConfiguration.
type DSNBuilder func(cfg *config.Config) (string, error)

// Registration couples a backend kind with its driver and dialect.
type Registration struct {
	Kind       string
	DriverName string
	Dialect    Dialect
	DSN        DSNBuilder
}
