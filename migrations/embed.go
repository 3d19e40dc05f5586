// Package migrations embeds SQL migration files into the binary.
//
// This allows the coordinator to run migrations without the SQL files
// being present on the filesystem.
package migrations

import (
	"embed"

	"github.com/Humanoidear/PR2-Frontend-Backend/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
