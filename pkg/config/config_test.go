package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

func validSQLiteConfig() *Config {
	return &Config{
		Env:       "test",
		Backend:   BackendSQLite,
		SchemaDir: "schemas",
		SQLite:    SQLiteConfig{Path: "statstore.db"},
	}
}

func TestValidateSQLite(t *testing.T) {
	require.NoError(t, validSQLiteConfig().Validate())

	cfg := validSQLiteConfig()
	cfg.SQLite.Path = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
	assert.Contains(t, err.Error(), "requires path")
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := validSQLiteConfig()
	cfg.Backend = "mongodb"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestValidateServerBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		strip  func(*Config)
	}{
		{
			name: "postgres",
			mutate: func(c *Config) {
				c.Backend = BackendPostgres
				c.Postgres = PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d"}
			},
			strip: func(c *Config) { c.Postgres.Password = "" },
		},
		{
			name: "mysql",
			mutate: func(c *Config) {
				c.Backend = BackendMySQL
				c.MySQL = MySQLConfig{Host: "db", Port: 3306, User: "u", Password: "p", Database: "d"}
			},
			strip: func(c *Config) { c.MySQL.Database = "" },
		},
		{
			name: "sqlserver",
			mutate: func(c *Config) {
				c.Backend = BackendSQLServer
				c.SQLServer = SQLServerConfig{Host: "db", Port: 1433, User: "u", Password: "p", Database: "d"}
			},
			strip: func(c *Config) { c.SQLServer.User = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validSQLiteConfig()
			tt.mutate(cfg)
			require.NoError(t, cfg.Validate())

			tt.strip(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
		})
	}
}
