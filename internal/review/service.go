package review

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"bookreview/internal/apperr"
)

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SubmitReview records one review per (book, author). A second submission
// by the same author is accepted and discarded; the first review is never
// overwritten.
func (s *Service) SubmitReview(ctx context.Context, isbn string, authorID int64, rating int, text string) error {
	// no catalog isbn is longer than the column
	if len(isbn) > maxISBNLength {
		return apperr.NotFound("book %s not found", isbn)
	}
	if rating < MinRating || rating > MaxRating {
		return apperr.Validation("Rating must be between %d and %d.", MinRating, MaxRating)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return apperr.Validation("Review text required.")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return apperr.Validation("Review must be at most %d characters.", MaxTextLength)
	}

	inserted, err := s.repo.Insert(ctx, &Review{
		BookISBN: isbn,
		AuthorID: authorID,
		Text:     text,
		Rating:   rating,
	})
	if err != nil {
		return err
	}
	if !inserted {
		s.log.DebugContext(ctx, "duplicate review ignored", "isbn", isbn, "author_id", authorID)
	}
	return nil
}

func (s *Service) ReviewsForBook(ctx context.Context, isbn string) ([]BookReview, error) {
	return s.repo.ListForBook(ctx, isbn)
}

func (s *Service) HasReviewed(ctx context.Context, isbn string, authorID int64) (bool, error) {
	return s.repo.Exists(ctx, isbn, authorID)
}
