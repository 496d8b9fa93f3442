// Package goodreads fetches community rating counts for a book from the
// Goodreads review_counts endpoint.
package goodreads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bookreview/internal/apperr"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.goodreads.com"

// ReviewCounts is the subset of the Goodreads payload the book page shows.
type ReviewCounts struct {
	ReviewCount  int
	AverageScore float64
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithRetries sets how many times a 5xx/429 or transport failure is retried
// and the first backoff delay, which doubles on every attempt.
func WithRetries(maxRetries int, backoffBase time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoffBase = backoffBase
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient builds a client whose every request, retries included, is
// bounded by timeout.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		limiter:     rate.NewLimiter(rate.Limit(5), 1),
		maxRetries:  1,
		backoffBase: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type reviewCountsResponse struct {
	Books []struct {
		ISBN          string      `json:"isbn"`
		ReviewsCount  int         `json:"reviews_count"`
		RatingsCount  int         `json:"ratings_count"`
		AverageRating json.Number `json:"average_rating"`
	} `json:"books"`
}

// FetchReviewCounts returns the Goodreads review count and average score for
// isbn. Every failure wraps apperr.ErrGateway.
func (c *Client) FetchReviewCounts(ctx context.Context, isbn string) (ReviewCounts, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("isbns", isbn)
	u := c.baseURL + "/book/review_counts.json?" + q.Encode()

	var res reviewCountsResponse
	if err := c.get(ctx, u, &res); err != nil {
		return ReviewCounts{}, fmt.Errorf("%w: review counts for %s: %w", apperr.ErrGateway, isbn, err)
	}
	if len(res.Books) == 0 {
		return ReviewCounts{}, fmt.Errorf("%w: no review counts for %s", apperr.ErrGateway, isbn)
	}

	b := res.Books[0]
	counts := ReviewCounts{ReviewCount: b.ReviewsCount}
	if b.AverageRating != "" {
		avg, err := strconv.ParseFloat(b.AverageRating.String(), 64)
		if err != nil {
			return ReviewCounts{}, fmt.Errorf("%w: average rating %q: %w", apperr.ErrGateway, b.AverageRating, err)
		}
		counts.AverageScore = avg
	}
	return counts, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// transport failures, 429 and 5xx are retried; a bad body is not
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var de *decodeError
	return !errors.As(err, &de)
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := c.backoffBase * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }
