package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/exampapers/backend/internal/browser"
	"github.com/exampapers/backend/internal/models"
)

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Selection.Current().State())
}

// UpdateSelection applies category, then year, then variant. Fields left out
// of the body are untouched; an empty category resets the whole selection.
// The steps run on a copy that replaces the session's selection only when
// all of them succeed, so a rejected update leaves it as it was.
func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	var req models.UpdateSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Category == nil && req.Year == nil && req.Variant == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "category, year or variant is required"})
		return
	}

	sel := sess.Selection.Clone()
	if req.Category != nil {
		if *req.Category == "" {
			sel.Reset()
		} else if err := h.browser.Select(r.Context(), sel, *req.Category); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if req.Year != nil {
		if err := sel.SetYear(*req.Year); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if req.Variant != nil {
		if err := sel.SetVariant(*req.Variant); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	sess.Selection.Replace(sel)
	writeJSON(w, http.StatusOK, sel.Current().State())
}

func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}
	sess.Selection.Reset()
	writeJSON(w, http.StatusOK, sess.Selection.Current().State())
}

// SelectionPapers lists the papers visible for the session's current selection.
func (h *Handler) SelectionPapers(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	sel := sess.Selection.Current()
	if sel.Category == "" {
		h.writeError(w, r, browser.ErrNoCategory)
		return
	}

	papers, err := h.browser.VisiblePapers(r.Context(), sel.Category, sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PaperListResponse{
		CategoryID: sel.Category,
		Year:       sel.Year,
		Variant:    sel.Variant,
		Papers:     papers,
		Total:      len(papers),
	})
}
