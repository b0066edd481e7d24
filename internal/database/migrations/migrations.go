// Package migrations registers the schema migrations of the sticky message store.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema migration of the bot.
var Migrations = migrate.NewMigrations() //nolint:gochecknoglobals // filled by init functions
