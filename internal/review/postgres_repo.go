package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreview/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (repo *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, repo.timeout)
}

func (repo *PostgresRepo) Insert(ctx context.Context, r *Review) (bool, error) {
	const query = `
		INSERT INTO reviews (book_isbn, author_id, text, rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (book_isbn, author_id) DO NOTHING
		RETURNING id
	`
	timeoutCtx, cancel := repo.withTimeout(ctx)
	defer cancel()
	err := repo.db.QueryRow(timeoutCtx, query, r.BookISBN, r.AuthorID, r.Text, r.Rating).Scan(&r.ID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// conflict: the earlier review stays as it was
		return false, nil
	case apperr.IsForeignKeyViolation(err):
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "author") {
			return false, apperr.NotFound("user %d not found", r.AuthorID)
		}
		return false, apperr.NotFound("book %s not found", r.BookISBN)
	case apperr.IsCheckViolation(err):
		return false, apperr.Validation("Rating must be between %d and %d.", MinRating, MaxRating)
	default:
		return false, fmt.Errorf("insert review: %w", err)
	}
}

func (repo *PostgresRepo) ListForBook(ctx context.Context, isbn string) ([]BookReview, error) {
	const query = `
		SELECT u.username, rv.rating, rv.text
		FROM reviews rv
		INNER JOIN users u ON u.id = rv.author_id
		WHERE rv.book_isbn = $1
		ORDER BY rv.id
	`
	timeoutCtx, cancel := repo.withTimeout(ctx)
	defer cancel()
	rows, err := repo.db.Query(timeoutCtx, query, isbn)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []BookReview{}
	for rows.Next() {
		var br BookReview
		if err := rows.Scan(&br.Username, &br.Rating, &br.Text); err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, rows.Err()
}

func (repo *PostgresRepo) Exists(ctx context.Context, isbn string, authorID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE book_isbn = $1 AND author_id = $2)`
	timeoutCtx, cancel := repo.withTimeout(ctx)
	defer cancel()
	var exists bool
	if err := repo.db.QueryRow(timeoutCtx, query, isbn, authorID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
