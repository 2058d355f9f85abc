package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/exampapers/backend/internal/auth"
	"github.com/exampapers/backend/internal/models"
	"github.com/exampapers/backend/internal/session"
)

// Auth verifies the bearer token and attaches its live session to the request
// context. A valid token whose session is gone (logout, server restart) is
// rejected like a bad token.
func Auth(tokens *auth.Tokens, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				unauthorized(w, "Invalid authorization format")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			sess, ok := sessions.Get(claims.SessionID)
			if !ok || sess.UserID != claims.UserID {
				unauthorized(w, "Session expired, please sign in again")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg, Code: "unauthorized"})
}
