package migrations

import "github.com/uptrace/bun/migrate"

// DbMigrations - registry of database migrations
var DbMigrations = migrate.NewMigrations()
