package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/logging"
	"github.com/wifor-platform/statstore/pkg/retry"
	"github.com/wifor-platform/statstore/pkg/schema"
)

// Open connects to the configured backend and verifies reachability.
// The ping is retried for transient failures. Driver errors can echo the
// DSN, so they are sanitized before wrapping.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, Dialect, error) {
	reg, ok := Get(cfg.Backend)
	if !ok {
		return nil, nil, fmt.Errorf("%w: backend %q not compiled in (have %s)",
			apperrors.ErrConfiguration, cfg.Backend, strings.Join(RegisteredKinds(), ", "))
	}

	dsn, err := reg.DSN(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(reg.DriverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %s", apperrors.ErrBackend, cfg.Backend, logging.SanitizeError(err))
	}

	if err := retry.DoIfRetryable(ctx, nil, func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: ping %s: %s", apperrors.ErrBackend, cfg.Backend, logging.SanitizeError(err))
	}

	return db, reg.Dialect, nil
}

// CreateTableSQL builds the DDL for an entity table: the declared columns
// plus the surrogate key and the three versioning columns.
func CreateTableSQL(d Dialect, et *schema.EntityType) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", d.QuoteIdentifier(et.Table))
	fmt.Fprintf(&b, "\t%s,\n", d.PrimaryKeyDDL())

	for _, col := range et.Columns {
		ddl, err := d.ColumnDDL(col)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\t%s %s,\n", d.QuoteIdentifier(col.Name), ddl)
	}

	fmt.Fprintf(&b, "\t%s INTEGER NOT NULL,\n", d.QuoteIdentifier(schema.ColVersionNumber))
	fmt.Fprintf(&b, "\t%s DATE NOT NULL,\n", d.QuoteIdentifier(schema.ColEffectiveDate))
	fmt.Fprintf(&b, "\t%s DATE\n", d.QuoteIdentifier(schema.ColExpiryDate))
	b.WriteString(")")
	return b.String(), nil
}

// TableExists reports whether the entity table is already present.
func TableExists(ctx context.Context, q Querier, d Dialect, table string) (bool, error) {
	var name string
	err := q.QueryRowContext(ctx, d.TableExistsSQL(), table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: introspect table %q: %v", apperrors.ErrBackend, table, err)
	}
	return true, nil
}
