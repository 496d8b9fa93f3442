package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/books")
	t.Setenv("GOODREADS_API_KEY", "key")
	t.Setenv("SESSION_SECRET", "secret")
}

// chdir into an empty directory so a developer's .env does not leak in
func isolate(t *testing.T) {
	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://www.goodreads.com", cfg.GoodreadsBaseURL)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, SessionStorePostgres, cfg.SessionStore)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_MissingRequired(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GOODREADS_API_KEY", "")
	t.Setenv("SESSION_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, "missing required environment variables: DATABASE_URL, GOODREADS_API_KEY", err.Error())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("GATEWAY_TIMEOUT", "500ms")
	t.Setenv("SESSION_STORE", "REDIS")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.GatewayTimeout)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	setRequired(t)

	t.Run("duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "forever")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid SESSION_TTL")
	})

	t.Run("session store", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "memcached")
		_, err := Load()
		assert.ErrorContains(t, err, "SESSION_STORE")
	})
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("DATABASE_URL=from_file\nGOODREADS_API_KEY=file_key\n"), 0o644))

	t.Setenv("DATABASE_URL", "from_env")
	t.Setenv("GOODREADS_API_KEY", "")
	_ = os.Unsetenv("GOODREADS_API_KEY")

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DATABASE_URL"))
	assert.Equal(t, "file_key", os.Getenv("GOODREADS_API_KEY"))
}
