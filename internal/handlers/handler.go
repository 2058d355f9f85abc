// Package handlers exposes the catalog, selection, favorites, progress and
// drafting flows over HTTP. Every route here runs behind the auth middleware,
// so a session is always present in the request context.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/exampapers/backend/internal/browser"
	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/favorites"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
	"github.com/exampapers/backend/internal/progress"
	"github.com/exampapers/backend/internal/session"
	"github.com/exampapers/backend/internal/solutions"
)

type Handler struct {
	source    catalog.Source
	browser   *browser.Browser
	favorites *favorites.Service
	progress  *progress.Service
	drafter   *solutions.Drafter
	log       *logger.Logger
}

func NewHandler(source catalog.Source, favs *favorites.Service, prog *progress.Service, drafter *solutions.Drafter, log *logger.Logger) *Handler {
	return &Handler{
		source:    source,
		browser:   browser.New(source),
		favorites: favs,
		progress:  prog,
		drafter:   drafter,
		log:       log.With("component", "API"),
	}
}

// getSession returns the caller's session, writing a 401 when there is none.
func getSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not signed in", Code: "unauthorized"})
	}
	return sess, ok
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps domain errors to status codes. Anything unrecognised is a 500
// and is logged; the client only sees a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not available", Code: "not_found"})
	case errors.Is(err, catalog.ErrLockedContent):
		writeJSON(w, http.StatusLocked, models.ErrorResponse{Error: "This paper is locked", Code: "locked_content"})
	case errors.Is(err, catalog.ErrUnavailable):
		h.log.Warn("catalog unavailable", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Content is temporarily unavailable, please retry", Code: "unavailable"})
	case errors.Is(err, browser.ErrNoCategory),
		errors.Is(err, browser.ErrNoVariantAxis),
		errors.Is(err, browser.ErrYearRequired),
		errors.Is(err, browser.ErrUnknownVariant):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error(), Code: "invalid_selection"})
	case errors.Is(err, solutions.ErrDisabled):
		writeJSON(w, http.StatusNotImplemented, models.ErrorResponse{Error: err.Error(), Code: "disabled"})
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}
