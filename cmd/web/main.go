package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/logging"
	"bookreview/internal/platform/goodreads"
	"bookreview/internal/review"
	"bookreview/internal/session"
	"bookreview/internal/user"
	"bookreview/internal/web"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxRequestBytes = 64 << 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.DatabaseURL)
	defer dbPool.Close()

	sessionStore, closeStore := mustSessionStore(ctx, cfg, dbPool, logger)
	defer closeStore()
	sessions := session.NewManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL,
		session.WithSecureCookie(cfg.CookieSecure))

	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout))
	handler, err := web.NewHandler(web.Deps{
		Catalog:  book.NewService(book.NewPostgresRepo(dbPool, cfg.DBTimeout)),
		Reviews:  review.NewService(review.NewPostgresRepo(dbPool, cfg.DBTimeout), logger),
		Ratings:  goodreads.NewClient(cfg.GoodreadsAPIKey, cfg.GatewayTimeout, goodreads.WithBaseURL(cfg.GoodreadsBaseURL)),
		Accounts: auth.NewService(userService),
		Sessions: sessions,
		DB:       dbPool,
		Log:      logger,

		GatewayTimeout: cfg.GatewayTimeout,
	})
	if err != nil {
		log.Fatalf("views: %v", err)
	}

	root := httpx.Chain(handler.Routes(),
		httpx.RequestIDMiddleware,
		httpx.AccessLog(logger),
		httpx.Recovery(logger),
		httpx.SecurityHeaders(cfg.CookieSecure),
		httpx.RequestSizeLimit(maxRequestBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      root,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.Addr, "session_store", cfg.SessionStore)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	return pool
}

// mustSessionStore picks the configured store. The returned func releases
// whatever the store holds open.
func mustSessionStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) (session.Store, func()) {
	if cfg.SessionStore == config.SessionStoreRedis {
		client, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("session store: %v", err)
		}
		return session.NewRedisStore(client, cfg.DBTimeout), func() { _ = client.Close() }
	}

	repo := session.NewPostgresRepo(pool, cfg.DBTimeout)
	if removed, err := repo.CleanupExpired(ctx); err != nil {
		logger.Warn("cleanup expired sessions", "error", err)
	} else if removed > 0 {
		logger.Info("removed expired sessions", "count", removed)
	}
	return repo, func() {}
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
