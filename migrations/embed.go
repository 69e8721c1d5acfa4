// Package migrations embeds the sensor registry schema into the binary.
//
// Files live in one directory per database dialect (sqlite3/, postgres/) so
// the same version can carry engine-specific DDL.
package migrations

import (
	"embed"

	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
)

//go:embed sqlite3/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
}
