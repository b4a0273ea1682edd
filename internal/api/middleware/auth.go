package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// ViewerMiddleware attaches the request viewer to the context. A bearer token
// equal to adminToken marks the viewer as an authenticated administrator; an
// empty adminToken disables admin access entirely.
func ViewerMiddleware(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := entities.Viewer{}
			if token, ok := bearerToken(r); ok && adminToken != "" &&
				subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) == 1 {
				viewer = entities.Viewer{Authenticated: true, Admin: true}
			}

			next.ServeHTTP(w, r.WithContext(entities.WithViewer(r.Context(), viewer)))
		})
	}
}

// RequireAdmin rejects requests whose viewer is not an administrator
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !entities.ViewerFromContext(r.Context()).Admin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "admin access required"})
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
