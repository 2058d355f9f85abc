package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/exampapers/backend/internal/models"
)

// AdminKey admits requests whose X-Admin-Key header matches key.
func AdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Admin-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Admin access required", Code: "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
