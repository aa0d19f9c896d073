package mysql

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/config"
)

func init() {
	backend.Register(backend.Registration{
		Kind:       config.BackendMySQL,
		DriverName: "mysql",
		Dialect:    dialect{},
		DSN:        buildDSN,
	})
}

// buildDSN builds the driver DSN through the driver's own config type so
// special characters in credentials are handled for us. ParseTime makes the
// driver return time.Time for DATE/DATETIME columns.
func buildDSN(cfg *config.Config) (string, error) {
	my := cfg.MySQL

	driverCfg := gomysql.NewConfig()
	driverCfg.User = my.User
	driverCfg.Passwd = my.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = fmt.Sprintf("%s:%d", my.Host, my.Port)
	driverCfg.DBName = my.Database
	driverCfg.ParseTime = true

	return driverCfg.FormatDSN(), nil
}
