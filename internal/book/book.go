package book

import "bookreview/internal/apperr"

// ErrNotFound is returned when no book has the requested isbn. It matches
// apperr.ErrNotFound under errors.Is.
var ErrNotFound error = &apperr.Error{Kind: apperr.ErrNotFound, Message: "book not found"}

type Book struct {
	ID     int64
	ISBN   string
	Title  string
	Author string
	Year   int
}

// Summary is one search hit.
type Summary struct {
	ISBN   string
	Title  string
	Author string
}

// Aggregate is a book together with its local review statistics.
// AverageRating is nil when the book has no reviews.
type Aggregate struct {
	Book          Book
	ReviewCount   int
	AverageRating *float64
}
