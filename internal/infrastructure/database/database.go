package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/sensor-core/internal/infrastructure/config"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// pingTimeout bounds each startup connectivity check.
	pingTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute

	// Defaults applied when Config leaves the retry settings at zero.
	defaultConnectAttempts = 3
	defaultRetryDelay      = 5 * time.Second
	defaultAcquireTimeout  = 30 * time.Second
)

// Logger receives startup retry diagnostics. Compatible with logging.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// DB is the connection manager for the reading store.
//
// It owns a connection pool but never hands out a long-lived connection:
// callers borrow one per operation through WithConn or WithTx and it is
// returned to the pool on every exit path.
type DB struct {
	*sqlx.DB
	path           string
	dialect        Dialect
	acquireTimeout time.Duration
}

// Config contains database configuration options.
type Config struct {
	// Driver is "sqlite3" (default) or "postgres".
	Driver string

	// Path is the SQLite database file. The directory is created if needed.
	Path string

	// DSN is the PostgreSQL connection string.
	DSN string

	// WALMode enables SQLite Write-Ahead Logging.
	WALMode bool

	// BusyTimeout is the maximum time SQLite waits for a lock (seconds).
	BusyTimeout int

	// MaxOpenConns caps the pool. SQLite is always limited to one writer connection.
	MaxOpenConns int

	// ConnectAttempts is how many times Connect tries before failing.
	ConnectAttempts int

	// RetryDelay is the fixed pause between startup attempts.
	RetryDelay time.Duration

	// AcquireTimeout bounds how long WithConn waits for a pooled connection.
	AcquireTimeout time.Duration

	// Logger, when set, is told about each failed startup attempt.
	Logger Logger
}

// ConfigFromSettings maps the database section of config.yaml onto Config.
func ConfigFromSettings(s config.DatabaseConfig) Config {
	return Config{
		Driver:          s.Driver,
		Path:            s.Path,
		DSN:             s.DSN,
		WALMode:         s.WALMode,
		BusyTimeout:     s.BusyTimeout,
		MaxOpenConns:    s.MaxOpenConns,
		ConnectAttempts: s.Connect.Attempts,
		RetryDelay:      time.Duration(s.Connect.RetryDelay) * time.Second,
		AcquireTimeout:  time.Duration(s.Connect.AcquireTimeout) * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = defaultConnectAttempts
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = defaultAcquireTimeout
	}
	return c
}

// Connect opens the reading store, retrying failed attempts with a fixed delay.
//
// Each attempt opens the pool and verifies it with a ping. Between attempts it
// sleeps RetryDelay, returning early if ctx is cancelled. When every attempt
// fails the result is a *ConnectionError carrying the attempt count and the
// last cause; the caller is expected to treat that as fatal.
//
// Parameters:
//   - ctx: Context for cancellation of the retry loop
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database
//   - error: ErrUnsupportedDriver, or *ConnectionError
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.withDefaults()

	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		db, openErr := open(ctx, cfg, dialect)
		if openErr == nil {
			return db, nil
		}
		lastErr = openErr

		if cfg.Logger != nil {
			cfg.Logger.Warn("database connection attempt failed",
				"attempt", attempt,
				"max_attempts", cfg.ConnectAttempts,
				"error", openErr,
			)
		}

		if attempt == cfg.ConnectAttempts {
			break
		}

		timer := time.NewTimer(cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &ConnectionError{Attempts: attempt, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return nil, &ConnectionError{Attempts: cfg.ConnectAttempts, Err: lastErr}
}

// open performs a single connection attempt.
func open(ctx context.Context, cfg Config, dialect Dialect) (*DB, error) {
	var (
		sqlDB *sqlx.DB
		err   error
	)

	switch dialect.Name {
	case postgresDialect.Name:
		sqlDB, err = sqlx.Open(dialect.Name, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}

		// See: https://github.com/mattn/go-sqlite3#connection-string
		connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_txlock=immediate",
			cfg.Path,
			cfg.BusyTimeout*msPerSecond,
		)
		if cfg.WALMode {
			connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
		}

		sqlDB, err = sqlx.Open(dialect.Name, connStr)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
		sqlDB.SetMaxIdleConns(1)
	}

	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if dialect.Name == sqliteDialect.Name {
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist until first write
	}

	return &DB{
		DB:             sqlDB,
		path:           cfg.Path,
		dialect:        dialect,
		acquireTimeout: cfg.AcquireTimeout,
	}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem path of a SQLite database (empty for PostgreSQL).
func (db *DB) Path() string {
	return db.path
}

// Dialect returns the SQL dialect of the connected engine.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Stats returns connection pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// WithConn borrows one connection for the duration of fn.
//
// Acquisition waits at most the configured acquire timeout. A failure to
// acquire is returned immediately as a *ConnectionError without retrying.
// The connection is released when fn returns, errors, or panics.
func (db *DB) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sqlx.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	conn, err := db.DB.Connx(acquireCtx)
	cancel()
	if err != nil {
		return &ConnectionError{Attempts: 1, Err: err}
	}
	defer conn.Close() //nolint:errcheck // Returns the connection to the pool

	return fn(ctx, conn)
}

// WithTx runs fn inside a transaction on a borrowed connection.
//
// The transaction is committed if fn returns nil and rolled back otherwise,
// including when fn panics.
//
// Example:
//
//	err := db.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
//	    _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO t (v) VALUES (?)"), v)
//	    return err
//	})
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

		if err := fn(ctx, tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

// HealthCheck borrows a connection and runs a no-op query.
//
// Returns:
//   - error: nil if healthy, *ConnectionError if no connection could be
//     acquired, or the query failure otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		var result int
		if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		return nil
	})
}
