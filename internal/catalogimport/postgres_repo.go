package catalogimport

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// InsertBooks writes rows in one transaction and returns how many were
	// new. Nothing is written if any row fails.
	InsertBooks(ctx context.Context, rows []Row) (int, error)
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) InsertBooks(ctx context.Context, rows []Row) (inserted int, err error) {
	const sql = `
		INSERT INTO books (isbn, title, author, year)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (isbn) DO NOTHING`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(sql, row.ISBN, row.Title, row.Author, row.Year)
	}
	results := tx.SendBatch(ctx, batch)
	for _, row := range rows {
		tag, execErr := results.Exec()
		if execErr != nil {
			_ = results.Close()
			return 0, fmt.Errorf("line %d: insert %s: %w", row.Line, row.ISBN, execErr)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}
