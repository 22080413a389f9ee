package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver

	"modelmove/logger"
)

const (
	DriverPq  = "postgres"
	DriverPgx = "pgx"
)

//Opens and pings a Postgres connection pool through either registered driver.
func Open(driver string, dsn string) (*sql.DB, error) {
	if driver != DriverPq && driver != DriverPgx {
		return nil, NewDdlError(ErrUnknownDriver, fmt.Sprintf("unknown database driver '%s'", driver), "")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, NewDdlError(ErrConnectionLost, err.Error(), "")
	}
	db.SetConnMaxLifetime(0)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(5)
	if err := db.Ping(); err != nil {
		logger.Error("Could not connect to Postgres: %s", err)
		db.Close()
		return nil, NewDdlError(ErrConnectionLost, err.Error(), "")
	}
	return db, nil
}
