package web

import (
	"context"
	"net/http"
	"time"

	"bookreview/internal/httpx"
)

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	loggedIn := httpx.RequireLogin(h.sessions)

	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)

	mux.Handle("GET /{$}", loggedIn(http.HandlerFunc(h.searchForm)))
	mux.Handle("GET /search", loggedIn(http.HandlerFunc(h.searchForm)))
	mux.Handle("POST /search", loggedIn(http.HandlerFunc(h.search)))
	mux.Handle("GET /books/{isbn}", loggedIn(http.HandlerFunc(h.bookPage)))
	mux.Handle("POST /books/{isbn}", loggedIn(http.HandlerFunc(h.submitReview)))

	mux.HandleFunc("GET /api/{isbn}", h.apiBook)

	mux.HandleFunc("GET /register", h.registerForm)
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("GET /login", h.loginForm)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("GET /logout", h.logout)

	mux.HandleFunc("/", h.notFound)
	return mux
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "db not configured", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
