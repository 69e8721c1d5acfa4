// Package database is the connection manager for the sensor reading store.
//
// This package manages:
//   - Opening the store with a bounded startup retry (3 attempts, 5s apart by default)
//   - Scoped connection use: WithConn and WithTx always return the connection
//   - Dialect differences between SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq)
//   - Registry schema migrations, one directory per dialect
//
// Connections are never retried per operation. If a pooled connection cannot
// be acquired within the acquire timeout (30s by default) the caller gets a
// *ConnectionError straight away.
//
// Security Considerations:
//   - All values are bound as parameters; identifiers go through QuoteIdent
//     only after the caller has validated them against an allow-list
//   - SQLite database file permissions are set to 0600
//
// Usage:
//
//	db, err := database.Connect(ctx, database.ConfigFromSettings(cfg.Database))
//	if err != nil {
//	    return err // *ConnectionError after the final attempt
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
//	err = db.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
//	    ...
//	})
package database
