package review

const (
	MinRating     = 1
	MaxRating     = 5
	MaxTextLength = 1000

	// maxISBNLength matches reviews.book_isbn VARCHAR(15).
	maxISBNLength = 15
)

type Review struct {
	ID       int64
	BookISBN string
	AuthorID int64
	Text     string
	Rating   int
}

// BookReview is a review as shown on a book page.
type BookReview struct {
	Username string
	Rating   int
	Text     string
}
