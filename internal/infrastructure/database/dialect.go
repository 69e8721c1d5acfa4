package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect captures the few places where SQLite and PostgreSQL disagree.
//
// Queries elsewhere are written with ? placeholders and passed through
// Rebind, so only DDL fragments and locking live here.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string

	// SerialPrimaryKey declares an auto-incrementing integer primary key column.
	SerialPrimaryKey string

	// FloatType is the column type for double precision measurements.
	FloatType string

	// TimestampType is the column type for instants.
	TimestampType string

	// LockStatement, when set, takes a transaction-scoped exclusive lock keyed
	// on its single text argument. Empty for engines that serialise writers.
	LockStatement string
}

var (
	sqliteDialect = Dialect{
		Name:             "sqlite3",
		SerialPrimaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
		FloatType:        "REAL",
		TimestampType:    "TIMESTAMP",
	}

	postgresDialect = Dialect{
		Name:             "postgres",
		SerialPrimaryKey: "BIGSERIAL PRIMARY KEY",
		FloatType:        "DOUBLE PRECISION",
		TimestampType:    "TIMESTAMPTZ",
		LockStatement:    "SELECT pg_advisory_xact_lock(hashtext(?)::bigint)",
	}
)

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", sqliteDialect.Name:
		return sqliteDialect, nil
	case postgresDialect.Name:
		return postgresDialect, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Rebind converts ? placeholders to the dialect's bind variable style.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(d.Name), query)
}

// QuoteIdent returns name as a double-quoted SQL identifier.
//
// Embedded quotes are doubled, but callers must still restrict names to a
// validated character set before building DDL from them.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
