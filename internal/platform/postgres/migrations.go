package postgres

import "embed"

// MigrationsFS holds the embedded schema migrations, applied with goose at
// startup.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the root of the migration files inside MigrationsFS.
const MigrationsDir = "migrations"
