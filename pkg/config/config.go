package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/wifor-platform/statstore/pkg/apperrors"
)

// Backend kinds supported by the connector.
const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendMySQL     = "mysql"
	BackendSQLServer = "sqlserver"
)

// Config holds all configuration for statstore.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Backend selects the relational engine: sqlite, postgres, mysql or sqlserver.
	Backend string `yaml:"backend" env:"STATSTORE_BACKEND" env-default:"sqlite"`

	// SchemaDir is the directory holding entity descriptor documents.
	SchemaDir string `yaml:"schema_dir" env:"STATSTORE_SCHEMA_DIR" env-default:"schemas"`

	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	SQLServer SQLServerConfig `yaml:"sqlserver"`

	Eurostat EurostatConfig `yaml:"eurostat"`
	Regions  RegionsConfig  `yaml:"regions"`
}

// RegionsConfig points at the NUTS region GeoJSON file. Empty skips the
// region import.
type RegionsConfig struct {
	File string `yaml:"file" env:"REGIONS_GEOJSON" env-default:""`
}

// SQLiteConfig holds the embedded file-based engine configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_DB_PATH" env-default:""`
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:""`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:""`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// MySQLConfig holds MySQL connection configuration.
type MySQLConfig struct {
	Host     string `yaml:"host" env:"MYSQL_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"MYSQL_DB_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"MYSQL_DB_USER" env-default:""`
	Password string `yaml:"-" env:"MYSQL_DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"MYSQL_DB_NAME" env-default:""`
}

// SQLServerConfig holds SQL Server connection configuration.
type SQLServerConfig struct {
	Host     string `yaml:"host" env:"MSSQL_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"MSSQL_DB_PORT" env-default:"1433"`
	User     string `yaml:"user" env:"MSSQL_DB_USER" env-default:""`
	Password string `yaml:"-" env:"MSSQL_DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"MSSQL_DB_NAME" env-default:""`
}

// EurostatConfig holds the statistics API client configuration.
type EurostatConfig struct {
	BaseURL        string `yaml:"base_url" env:"EUROSTAT_BASE_URL" env-default:"https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"EUROSTAT_TIMEOUT_SECONDS" env-default:"120"`
}

// Load reads configuration from config.yaml with environment variable overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected backend has all required parameters.
// Only the selected backend's parameters are checked.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite backend requires path", apperrors.ErrConfiguration)
		}
	case BackendPostgres:
		if err := requireAll(c.Backend, map[string]string{
			"host":     c.Postgres.Host,
			"user":     c.Postgres.User,
			"password": c.Postgres.Password,
			"database": c.Postgres.Database,
		}); err != nil {
			return err
		}
	case BackendMySQL:
		if err := requireAll(c.Backend, map[string]string{
			"host":     c.MySQL.Host,
			"user":     c.MySQL.User,
			"password": c.MySQL.Password,
			"database": c.MySQL.Database,
		}); err != nil {
			return err
		}
	case BackendSQLServer:
		if err := requireAll(c.Backend, map[string]string{
			"host":     c.SQLServer.Host,
			"user":     c.SQLServer.User,
			"password": c.SQLServer.Password,
			"database": c.SQLServer.Database,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unsupported backend %q", apperrors.ErrConfiguration, c.Backend)
	}
	return nil
}

func requireAll(backend string, params map[string]string) error {
	for name, value := range params {
		if value == "" {
			return fmt.Errorf("%w: %s backend requires %s", apperrors.ErrConfiguration, backend, name)
		}
	}
	return nil
}
