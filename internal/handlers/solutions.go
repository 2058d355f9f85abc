package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/exampapers/backend/internal/models"
)

// DraftSteps asks the drafter for a worked solution. With ?save=true the draft
// replaces the question's current steps.
func (h *Handler) DraftSteps(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["id"]

	steps, resp, err := h.drafter.DraftSteps(r.Context(), questionID)
	if err != nil {
		if resp != nil {
			// The model answered but the draft was unusable.
			writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: err.Error(), Code: "bad_draft"})
			return
		}
		h.writeError(w, r, err)
		return
	}

	out := models.DraftStepsResponse{
		QuestionID:   questionID,
		Steps:        steps,
		Model:        h.drafter.ModelName(),
		PromptTokens: resp.PromptTokens,
		OutputTokens: resp.OutputTokens,
	}

	if r.URL.Query().Get("save") == "true" {
		if err := h.drafter.Save(r.Context(), questionID, steps); err != nil {
			h.writeError(w, r, err)
			return
		}
		out.Saved = true
		h.log.Info("saved drafted steps", "question_id", questionID, "steps", len(steps))
	}

	writeJSON(w, http.StatusOK, out)
}
