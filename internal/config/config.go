package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

type Config struct {
	Addr        string
	DatabaseURL string
	DBTimeout   time.Duration

	GoodreadsAPIKey  string
	GoodreadsBaseURL string
	GatewayTimeout   time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	CookieSecure  bool
	RedisAddr     string
	RedisPassword string

	LogLevel string
}

// LoadEnvFiles reads .env and .env.local. Variables already present in the
// environment are never overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the web server configuration from the environment. A missing
// required variable or an unparsable value is an error.
func Load() (Config, error) {
	LoadEnvFiles()

	cfg := Config{
		Addr:             getEnv("APP_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GoodreadsAPIKey:  os.Getenv("GOODREADS_API_KEY"),
		GoodreadsBaseURL: getEnv("GOODREADS_BASE_URL", "https://www.goodreads.com"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SessionStore:     strings.ToLower(getEnv("SESSION_STORE", SessionStorePostgres)),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	var missing []string
	for key, value := range map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"GOODREADS_API_KEY": cfg.GoodreadsAPIKey,
		"SESSION_SECRET":    cfg.SessionSecret,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.DBTimeout, err = getDuration("DB_TIMEOUT", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GatewayTimeout, err = getDuration("GATEWAY_TIMEOUT", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}

	switch cfg.SessionStore {
	case SessionStorePostgres, SessionStoreRedis:
	default:
		return Config{}, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStorePostgres, SessionStoreRedis, cfg.SessionStore)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
