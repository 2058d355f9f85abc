package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/exampapers/backend/internal/favorites"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
	"github.com/exampapers/backend/internal/session"
)

const minPasswordLength = 6

type Handler struct {
	users     *Store
	tokens    *Tokens
	sessions  *session.Manager
	favorites *favorites.Service
	log       *logger.Logger
}

func NewHandler(users *Store, tokens *Tokens, sessions *session.Manager, favs *favorites.Service, log *logger.Logger) *Handler {
	return &Handler{
		users:     users,
		tokens:    tokens,
		sessions:  sessions,
		favorites: favs,
		log:       log.With("component", "Auth"),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email, name, and password are required"})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Please enter a valid email address"})
		return
	}
	if len(req.Password) < minPasswordLength {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password must be at least 6 characters"})
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Passwords do not match"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	user := models.User{Email: req.Email, Name: req.Name, Password: string(hashedPassword)}
	if err := h.users.Create(r.Context(), &user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
			return
		}
		h.log.Error("create user failed", "email", req.Email, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account"})
		return
	}

	h.startSession(w, r, &user, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}

	user, err := h.users.ByEmail(r.Context(), req.Email)
	if errors.Is(err, ErrUserNotFound) {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}
	if err != nil {
		h.log.Error("login lookup failed", "email", req.Email, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	h.startSession(w, r, user, http.StatusOK)
}

// startSession opens a session for user, restores persisted favorites into it
// and returns the bound token.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	sess := h.sessions.Create(user.ID)

	if h.favorites != nil {
		if err := h.favorites.Hydrate(r.Context(), user.ID, sess.Favorites); err != nil {
			h.log.Warn("restore favorites failed", "user_id", user.ID, "error", err)
		}
	}

	token, err := h.tokens.Generate(user.ID, sess.ID)
	if err != nil {
		h.sessions.Destroy(sess.ID)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	h.log.Info("session started", "user_id", user.ID, "session_id", sess.ID)
	writeJSON(w, status, models.AuthResponse{Token: token, User: *user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not signed in"})
		return
	}
	h.sessions.Destroy(sess.ID)
	h.log.Info("session ended", "user_id", sess.UserID, "session_id", sess.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.CurrentUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not signed in"})
		return
	}

	user, err := h.users.ByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
