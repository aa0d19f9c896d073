package mssql

import (
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb" // database/sql driver

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/config"
)

func init() {
	backend.Register(backend.Registration{
		Kind:       config.BackendSQLServer,
		DriverName: "sqlserver",
		Dialect:    dialect{},
		DSN:        buildDSN,
	})
}

// buildDSN builds a sqlserver:// URL; url.URL escapes credentials for us.
func buildDSN(cfg *config.Config) (string, error) {
	ms := cfg.SQLServer

	query := url.Values{}
	query.Set("database", ms.Database)

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(ms.User, ms.Password),
		Host:     fmt.Sprintf("%s:%d", ms.Host, ms.Port),
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}
