package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookreview/internal/apperr"
	"bookreview/internal/httpx"
)

const invalidCredentialsMessage = "Invalid username or password."

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageRegister, pageData{Title: "Register"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if _, err := h.accounts.Register(r.Context(), username, password); err != nil {
		msg, ok := userMessage(err)
		if !ok {
			h.serverError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, pageRegister, pageData{Title: "Register", Flash: msg, Username: username})
		return
	}

	h.log.InfoContext(r.Context(), "user registered", "username", username, "request_id", httpx.RequestIDFrom(r))
	httpx.SetFlash(w, fmt.Sprintf("User %s registered.", username))
	http.Redirect(w, r, httpx.LoginPath, http.StatusSeeOther)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageLogin, pageData{Title: "Log in"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	userID, err := h.accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			h.render(w, r, http.StatusOK, pageLogin, pageData{Title: "Log in", Flash: invalidCredentialsMessage, Username: username})
			return
		}
		h.serverError(w, r, err)
		return
	}

	if err := h.sessions.Login(r.Context(), w, r, userID); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/search", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		h.log.WarnContext(r.Context(), "logout", "error", err, "request_id", httpx.RequestIDFrom(r))
	}
	httpx.SetFlash(w, "Logged out.")
	http.Redirect(w, r, "/search", http.StatusSeeOther)
}
