// Package db embeds the goose SQL migrations so binaries and tests can apply
// them without a checkout of this directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"
