package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/exampapers/backend/internal/models"
)

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	favs, err := h.favorites.List(r.Context(), sess.UserID, sess.Favorites)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.FavoriteListResponse{Favorites: favs, Total: len(favs)})
}

// AddFavorite is idempotent: starring a starred question is still 200.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	questionID := mux.Vars(r)["questionID"]
	if err := h.favorites.Add(r.Context(), sess.UserID, sess.Favorites, questionID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"question_id": questionID, "is_favorite": true})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	questionID := mux.Vars(r)["questionID"]
	if err := h.favorites.Remove(r.Context(), sess.UserID, sess.Favorites, questionID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"question_id": questionID, "is_favorite": false})
}
