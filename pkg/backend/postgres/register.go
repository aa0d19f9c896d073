package postgres

import (
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/config"
)

func init() {
	backend.Register(backend.Registration{
		Kind:       config.BackendPostgres,
		DriverName: "pgx",
		Dialect:    dialect{},
		DSN:        buildDSN,
	})
}

// buildDSN builds a PostgreSQL URL with proper escaping. User-provided
// fields must be URL-escaped to handle special characters in passwords
// (e.g. @, /, #, ?) that would otherwise break URL parsing.
func buildDSN(cfg *config.Config) (string, error) {
	pg := cfg.Postgres
	sslMode := pg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(pg.User),
		url.QueryEscape(pg.Password),
		pg.Host,
		pg.Port,
		url.QueryEscape(pg.Database),
		sslMode,
	), nil
}
