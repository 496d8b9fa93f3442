// Command import loads books from a CSV file (isbn,title,author,year) into
// the catalog in a single transaction.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookreview/internal/catalogimport"
	"bookreview/internal/config"
	"bookreview/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	file := flag.String("file", "books.csv", "CSV file with the columns isbn,title,author,year")
	flag.Parse()

	config.LoadEnvFiles()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("missing required environment variable: DATABASE_URL")
	}
	logger := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		log.Fatalf("cannot ping database: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	defer f.Close()

	svc := catalogimport.NewService(catalogimport.NewPostgresRepo(pool), logger)
	res, err := svc.Run(ctx, f)
	if err != nil {
		log.Fatalf("import %s: %v", *file, err)
	}
	log.Printf("imported %s: %d rows, %d inserted, %d skipped", *file, res.Rows, res.Inserted, res.Skipped)
}
