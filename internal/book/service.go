package book

import (
	"context"
	"strings"
)

// Service answers catalog queries.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns books whose isbn, title or author contains q, ignoring
// case. A query that is empty after trimming matches nothing.
func (s *Service) Search(ctx context.Context, q string) ([]Summary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Summary{}, nil
	}
	return s.repo.Search(ctx, q)
}

func (s *Service) GetBook(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

func (s *Service) GetAggregate(ctx context.Context, isbn string) (Aggregate, error) {
	return s.repo.GetAggregate(ctx, isbn)
}
