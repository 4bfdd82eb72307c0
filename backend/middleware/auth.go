// ABOUTME: Login gate for endpoints that need a platform session
// ABOUTME: Rejects requests with 401 while no account is logged in

package middleware

import "net/http"

// RequireLogin rejects requests while isLoggedIn reports false.
func RequireLogin(isLoggedIn func() bool) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !isLoggedIn() {
				writeJSONError(w, "Not logged in", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
}
