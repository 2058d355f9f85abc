package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/exampapers/backend/internal/browser"
	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/models"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.browser.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CategoryListResponse{Categories: categories})
}

func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]
	years, err := h.browser.Years(r.Context(), categoryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.YearListResponse{CategoryID: categoryID, Years: years})
}

// ListPapers filters a category by the year and variant query parameters
// without touching the session's selection.
func (h *Handler) ListPapers(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]
	q := r.URL.Query()
	sel := browser.Selection{Category: categoryID, Year: q.Get("year"), Variant: q.Get("variant")}

	papers, err := h.browser.VisiblePapers(r.Context(), categoryID, sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PaperListResponse{
		CategoryID: categoryID,
		Year:       sel.Year,
		Variant:    sel.Variant,
		Papers:     papers,
		Total:      len(papers),
	})
}

func (h *Handler) GetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := h.browser.Paper(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

// OpenPaper returns the paper with its questions and worked steps. Locked
// papers answer 423 with no question data.
func (h *Handler) OpenPaper(w http.ResponseWriter, r *http.Request) {
	paper, questions, err := h.browser.OpenPaperByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OpenPaperResponse{Paper: *paper, Questions: questions})
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(w, r)
	if !ok {
		return
	}

	q, err := h.browser.Question(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuestionDetailResponse{
		Question:   q.Question,
		Steps:      q.Steps,
		IsFavorite: sess.Favorites.IsFavorite(q.ID),
	})
}

// ── Ingestion ───────────────────────────────────────────

// RemoveQuestion withdraws a question from the catalog. Students who starred it
// lose the favorite the next time they list favorites.
func (h *Handler) RemoveQuestion(w http.ResponseWriter, r *http.Request) {
	remover, ok := h.source.(catalog.QuestionRemover)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, models.ErrorResponse{Error: "Catalog is read-only", Code: "read_only"})
		return
	}

	questionID := mux.Vars(r)["id"]
	if err := remover.RemoveQuestion(r.Context(), questionID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("question removed", "question_id", questionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"question_id": questionID, "removed": true})
}
