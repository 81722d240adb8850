package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// ConsoleAuthMiddleware guards the console routes with a configured bearer
// token. Backend-user authentication is separate and lives in the session.
func ConsoleAuthMiddleware(consoleToken string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if !strings.HasPrefix(token, "Bearer ") || strings.TrimPrefix(token, "Bearer ") != consoleToken {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
