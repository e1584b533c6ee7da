// Package assets embeds the SQL migrations for every supported database.
package assets

import "embed"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var Migrations embed.FS

const (
	PostgresMigrations = "migrations/postgres"
	SQLiteMigrations   = "migrations/sqlite"
)
