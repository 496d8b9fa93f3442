// Package web serves the HTML pages and the JSON book lookup.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bookreview/internal/apperr"
	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/goodreads"
	"bookreview/internal/review"
)

type Catalog interface {
	Search(ctx context.Context, q string) ([]book.Summary, error)
	GetAggregate(ctx context.Context, isbn string) (book.Aggregate, error)
}

type Reviews interface {
	SubmitReview(ctx context.Context, isbn string, authorID int64, rating int, text string) error
	ReviewsForBook(ctx context.Context, isbn string) ([]review.BookReview, error)
	HasReviewed(ctx context.Context, isbn string, authorID int64) (bool, error)
}

type RatingGateway interface {
	FetchReviewCounts(ctx context.Context, isbn string) (goodreads.ReviewCounts, error)
}

type Accounts interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

type Sessions interface {
	httpx.UserResolver
	Login(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) error
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Catalog  Catalog
	Reviews  Reviews
	Ratings  RatingGateway
	Accounts Accounts
	Sessions Sessions
	DB       Pinger
	Log      *slog.Logger

	// GatewayTimeout bounds the Goodreads call made for a book page.
	GatewayTimeout time.Duration
}

type Handler struct {
	catalog        Catalog
	reviews        Reviews
	ratings        RatingGateway
	accounts       Accounts
	sessions       Sessions
	db             Pinger
	log            *slog.Logger
	gatewayTimeout time.Duration
	views          *views
}

func NewHandler(d Deps) (*Handler, error) {
	v, err := parseViews()
	if err != nil {
		return nil, err
	}
	timeout := d.GatewayTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Handler{
		catalog:        d.Catalog,
		reviews:        d.Reviews,
		ratings:        d.Ratings,
		accounts:       d.Accounts,
		sessions:       d.Sessions,
		db:             d.DB,
		log:            d.Log,
		gatewayTimeout: timeout,
		views:          v,
	}, nil
}

// render writes a full page. A flash already set by the current request
// wins over one left by a previous redirect.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	pending := httpx.PopFlash(w, r)
	if data.Flash == "" {
		data.Flash = pending
	}
	_, data.LoggedIn = httpx.CurrentUser(r, h.sessions)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.views.render(w, page, data); err != nil {
		h.log.ErrorContext(r.Context(), "render page", "page", page, "error", err, "request_id", httpx.RequestIDFrom(r))
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, pageNotFound, pageData{Title: "Not found"})
}

// serverError logs err and answers 500 without exposing it.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", httpx.RequestIDFrom(r),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// userMessage reports whether err is one users can fix themselves and the
// text to show them.
func userMessage(err error) (string, bool) {
	if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrConflict) {
		return apperr.Message(err, "Invalid input."), true
	}
	return "", false
}
