package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects the schema changes; each file registers one step named after itself.
var Migrations = migrate.NewMigrations()
