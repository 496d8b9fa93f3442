package httpx

import (
	"net/http"
)

const LoginPath = "/login"

// RequireLogin lets the request through only when users resolves a
// logged-in user, whose id is then available via UserIDFrom. Anonymous
// requests are redirected to the login page.
func RequireLogin(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := CurrentUser(r, users)
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}
