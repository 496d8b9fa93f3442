package book

import (
	"context"
)

// Repository defines the contract for book data storage.
type Repository interface {
	Search(ctx context.Context, q string) ([]Summary, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	GetAggregate(ctx context.Context, isbn string) (Aggregate, error)
}
