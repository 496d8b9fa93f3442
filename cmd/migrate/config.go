package main

import (
	"errors"
	"io/fs"
	"os"

	"bookreview/db"
	"bookreview/internal/config"
)

// migrationSource returns the filesystem and directory goose reads from.
// MIGRATIONS_DIR switches from the migrations compiled into the binary to a
// directory on disk.
func migrationSource() (fs.FS, string) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return nil, v
	}
	return db.Migrations, db.MigrationsDir
}

// createDir is where "create" writes new migration files.
func createDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}

func databaseURL() (string, error) {
	config.LoadEnvFiles()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "", errors.New("missing required environment variable: DATABASE_URL")
	}
	return dsn, nil
}
