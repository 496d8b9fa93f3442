package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookreview/internal/apperr"
	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/goodreads"
	"bookreview/internal/review"

	"golang.org/x/sync/errgroup"
)

const noMatchesMessage = "Could not find books matching your query"

type searchForm struct {
	Q string `form:"q" label:"Search query" validate:"required"`
}

type reviewForm struct {
	Rating int    `form:"review-rating" label:"Rating" validate:"gte=1,lte=5"`
	Text   string `form:"review-text" label:"Review" validate:"required,max=1000"`
}

func (h *Handler) searchForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageSearch, pageData{Title: "Search"})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	form := searchForm{Q: strings.TrimSpace(r.PostFormValue("q"))}
	data := pageData{Title: "Search", Query: form.Q}

	if errs := httpx.ValidateStruct(form); len(errs) > 0 {
		data.Flash = errs[0].Message
		h.render(w, r, http.StatusOK, pageSearch, data)
		return
	}

	books, err := h.catalog.Search(r.Context(), form.Q)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(books) == 0 {
		data.Flash = noMatchesMessage
	}
	data.Books = books
	h.render(w, r, http.StatusOK, pageSearch, data)
}

// bookPage reads the book, its reviews and the viewer's review state
// together while the Goodreads lookup runs on its own deadline. A failed or
// slow lookup only drops the Goodreads section.
func (h *Handler) bookPage(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	userID, _ := httpx.UserIDFrom(r)

	external := make(chan *goodreads.ReviewCounts, 1)
	go func() {
		ctx, cancel := context.WithTimeout(r.Context(), h.gatewayTimeout)
		defer cancel()
		counts, err := h.ratings.FetchReviewCounts(ctx, isbn)
		if err != nil {
			h.log.WarnContext(ctx, "goodreads lookup failed", "isbn", isbn, "error", err, "request_id", httpx.RequestIDFrom(r))
			external <- nil
			return
		}
		external <- &counts
	}()

	var (
		agg      book.Aggregate
		reviews  []review.BookReview
		reviewed bool
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		agg, err = h.catalog.GetAggregate(ctx, isbn)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = h.reviews.ReviewsForBook(ctx, isbn)
		return err
	})
	g.Go(func() error {
		var err error
		reviewed, err = h.reviews.HasReviewed(ctx, isbn, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageBook, pageData{
		Title:           agg.Book.Title,
		Book:            &agg,
		Reviews:         reviews,
		Goodreads:       <-external,
		AlreadyReviewed: reviewed,
		RatingChoices:   []int{review.MinRating, 2, 3, 4, review.MaxRating},
		MaxReviewLength: review.MaxTextLength,
	})
}

// submitReview always answers with a redirect back to the book page, so a
// reload never re-posts the form.
func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	userID, _ := httpx.UserIDFrom(r)
	back := "/books/" + isbn

	rating, err := strconv.Atoi(r.PostFormValue("review-rating"))
	if err != nil {
		httpx.SetFlash(w, "Rating must be a number between 1 and 5.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	form := reviewForm{Rating: rating, Text: strings.TrimSpace(r.PostFormValue("review-text"))}
	if errs := httpx.ValidateStruct(form); len(errs) > 0 {
		httpx.SetFlash(w, errs[0].Message)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err := h.reviews.SubmitReview(r.Context(), isbn, userID, form.Rating, form.Text); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		msg, ok := userMessage(err)
		if !ok {
			h.serverError(w, r, err)
			return
		}
		httpx.SetFlash(w, msg)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

type apiBookResponse struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Year         int      `json:"year"`
	ISBN         string   `json:"isbn"`
	ReviewCount  int      `json:"review_count"`
	AverageScore *float64 `json:"average_score"`
}

func (h *Handler) apiBook(w http.ResponseWriter, r *http.Request) {
	agg, err := h.catalog.GetAggregate(r.Context(), r.PathValue("isbn"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "book not found")
			return
		}
		h.log.ErrorContext(r.Context(), "api lookup failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, apiBookResponse{
		Title:        agg.Book.Title,
		Author:       agg.Book.Author,
		Year:         agg.Book.Year,
		ISBN:         agg.Book.ISBN,
		ReviewCount:  agg.ReviewCount,
		AverageScore: agg.AverageRating,
	})
}
