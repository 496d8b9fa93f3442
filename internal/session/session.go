package session

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is the server-side record behind a browser's session cookie. The
// raw token only ever lives in the cookie; stores key sessions by its hash.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    int64     `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
