package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// pgUndefinedTable is the PostgreSQL SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

// Sentinel errors for the database package.
var (
	// ErrConnection matches every ConnectionError via errors.Is.
	ErrConnection = errors.New("database: connection failed")

	// ErrUnsupportedDriver is returned when Config.Driver names no known dialect.
	ErrUnsupportedDriver = errors.New("database: unsupported driver")
)

// ConnectionError reports a failure to obtain a usable connection.
//
// At startup Attempts is the number of tries made before giving up. For a
// per-operation acquisition it is always 1, because those are never retried.
type ConnectionError struct {
	Attempts int
	Err      error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database: connection failed after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap exposes both ErrConnection and the underlying cause to errors.Is/As.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

// IsMissingTable reports whether err is a driver error for a table that
// does not exist.
func IsMissingTable(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return strings.Contains(sqliteErr.Error(), "no such table")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUndefinedTable
	}
	return false
}
