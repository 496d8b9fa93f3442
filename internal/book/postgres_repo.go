package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q literally anywhere.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func (r *PostgresRepo) Search(ctx context.Context, q string) ([]Summary, error) {
	const query = `
		SELECT isbn, title, author
		FROM books
		WHERE isbn ILIKE $1 ESCAPE '\'
		   OR title ILIKE $1 ESCAPE '\'
		   OR author ILIKE $1 ESCAPE '\'
		ORDER BY id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, containsPattern(q))
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ISBN, &s.Title, &s.Author); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	const query = `
		SELECT id, isbn, title, author, year
		FROM books
		WHERE isbn = $1
		LIMIT 1
	`
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, isbn).Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Year)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) GetAggregate(ctx context.Context, isbn string) (Aggregate, error) {
	const query = `
		SELECT b.id, b.isbn, b.title, b.author, b.year,
		       COUNT(rv.rating), AVG(rv.rating)::FLOAT8
		FROM books b
		LEFT JOIN reviews rv ON rv.book_isbn = b.isbn
		WHERE b.isbn = $1
		GROUP BY b.id, b.isbn, b.title, b.author, b.year
	`
	var a Aggregate
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, isbn).Scan(
		&a.Book.ID, &a.Book.ISBN, &a.Book.Title, &a.Book.Author, &a.Book.Year,
		&a.ReviewCount, &a.AverageRating,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Aggregate{}, ErrNotFound
		}
		return Aggregate{}, err
	}
	return a, nil
}
