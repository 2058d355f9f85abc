package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	summary, err := h.progress.Summary(r.Context(), sess.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	questionID := mux.Vars(r)["questionID"]
	if err := h.progress.MarkCompleted(r.Context(), sess.UserID, questionID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"question_id": questionID, "completed": true})
}

func (h *Handler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	if err := h.progress.Reset(r.Context(), sess.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
