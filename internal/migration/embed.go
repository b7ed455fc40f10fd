package migration

import "embed"

const migrationsDir = "migrations"

//go:embed migrations/*.up.sql migrations/*.down.sql
var embeddedMigrations embed.FS
