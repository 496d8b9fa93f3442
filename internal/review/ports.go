package review

import "context"

type Repository interface {
	// Insert stores r unless its author already reviewed the book, and
	// reports whether a row was written.
	Insert(ctx context.Context, r *Review) (bool, error)
	ListForBook(ctx context.Context, isbn string) ([]BookReview, error)
	Exists(ctx context.Context, isbn string, authorID int64) (bool, error)
}
