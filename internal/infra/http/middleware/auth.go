package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/kklick/funnel-api/internal/entity"
)

// AdminAuth guards the stats and lead-listing endpoints with HTTP Basic
// credentials checked against the users table. The 401 body never says which
// part of the credential failed.
func AdminAuth(users entity.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			user, err := users.FindByUsername(r.Context(), username)
			if err != nil {
				log.Printf("admin auth: user lookup failed: %v", err)
				internalError(w)
				return
			}

			// Compare even when the user is unknown so both failure modes
			// take the same path.
			stored := ""
			if user != nil {
				stored = user.Password
			}
			if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 || user == nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func internalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "Internal server error",
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="funnel-admin"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "Unauthorized",
	})
}
