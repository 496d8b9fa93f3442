package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "bookreview_session"

// ErrNoSession is returned by Resolve when the request carries no valid
// session cookie.
var ErrNoSession = errors.New("no session")

// Manager ties the session cookie to server-side session records. The
// cookie is an HS256 token whose ID is the raw session token and whose
// subject is the user id; it is only trusted if the store still holds the
// matching record.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

type Option func(*Manager)

// WithSecureCookie marks the cookie Secure, for deployments behind TLS.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, secret string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Login starts a fresh session for userID. Any session the browser already
// had is destroyed first so a planted session id cannot be carried across a
// login.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) error {
	if token, _, err := m.parseCookie(r); err == nil {
		if err := m.store.DeleteByTokenHash(ctx, hashToken(token)); err != nil {
			return fmt.Errorf("discard previous session: %w", err)
		}
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	now := m.now()
	sess := &Session{
		TokenHash: hashToken(token),
		UserID:    userID,
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        token,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout deletes the server-side session and expires the cookie. It is safe
// to call without a session.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if token, _, parseErr := m.parseCookie(r); parseErr == nil {
		err = m.store.DeleteByTokenHash(ctx, hashToken(token))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// Resolve returns the session behind the request cookie. ErrNoSession covers
// a missing, forged, expired or revoked cookie; other errors come from the
// store.
func (m *Manager) Resolve(r *http.Request) (Session, error) {
	token, userID, err := m.parseCookie(r)
	if err != nil {
		return Session{}, ErrNoSession
	}
	sess, err := m.store.GetByTokenHash(r.Context(), hashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	if sess.UserID != userID || sess.Expired(m.now()) {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// CurrentUser reports the logged-in user id, if any.
func (m *Manager) CurrentUser(r *http.Request) (int64, bool) {
	sess, err := m.Resolve(r)
	if err != nil {
		return 0, false
	}
	return sess.UserID, true
}

func (m *Manager) parseCookie(r *http.Request) (string, int64, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", 0, ErrNoSession
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", 0, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return "", 0, ErrNoSession
	}
	return claims.ID, userID, nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return r.RemoteAddr
}
