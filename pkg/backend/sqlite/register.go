package sqlite

import (
	"fmt"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/config"
)

func init() {
	backend.Register(backend.Registration{
		Kind:       config.BackendSQLite,
		DriverName: "sqlite",
		Dialect:    dialect{},
		DSN:        buildDSN,
	})
}

// buildDSN builds the modernc.org/sqlite DSN. WAL keeps readers unblocked
// during the import transaction; busy_timeout covers short writer overlap.
func buildDSN(cfg *config.Config) (string, error) {
	if cfg.SQLite.Path == "" {
		return "", fmt.Errorf("%w: sqlite backend requires path", apperrors.ErrConfiguration)
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.SQLite.Path), nil
}
