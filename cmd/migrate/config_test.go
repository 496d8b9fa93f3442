package main

import (
	"os"
	"path/filepath"
	"testing"

	"bookreview/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	fsys, dir := migrationSource()
	assert.Nil(t, fsys)
	assert.Equal(t, "/custom/migrations", dir)
	assert.Equal(t, "/custom/migrations", createDir())
}

func TestMigrationSource_DefaultIsEmbedded(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	fsys, dir := migrationSource()
	assert.Equal(t, db.Migrations, fsys)
	assert.Equal(t, db.MigrationsDir, dir)
	assert.Equal(t, "db/migrations", createDir())
}

func TestDatabaseURL(t *testing.T) {
	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	t.Setenv("DATABASE_URL", "")
	_, err := databaseURL()
	assert.ErrorContains(t, err, "DATABASE_URL")

	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("DATABASE_URL=from_file\n"), 0o644))
	t.Setenv("DATABASE_URL", "from_env")
	got, err := databaseURL()
	require.NoError(t, err)
	assert.Equal(t, "from_env", got, "existing environment must win over .env")
}
