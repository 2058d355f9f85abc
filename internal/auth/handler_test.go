package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/config"
	"github.com/exampapers/backend/internal/database"
	"github.com/exampapers/backend/internal/database/testdb"
	"github.com/exampapers/backend/internal/favorites"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
	"github.com/exampapers/backend/internal/session"
)

type harness struct {
	h        *Handler
	tokens   *Tokens
	sessions *session.Manager
	favStore *favorites.Store
}

func newHarness(t *testing.T) harness {
	t.Helper()
	db := testdb.Open(t)
	src, err := catalog.NewMemorySource(catalog.SampleFixture())
	if err != nil {
		t.Fatal(err)
	}
	favStore := favorites.NewStore(db, database.SQLite)
	tokens := NewTokens(config.AuthConfig{JWTSecret: "test", TokenTTL: time.Hour})
	sessions := session.NewManager(0)
	h := NewHandler(NewStore(db, database.SQLite), tokens, sessions,
		favorites.NewService(src, favStore, logger.NewNop()), logger.NewNop())
	return harness{h: h, tokens: tokens, sessions: sessions, favStore: favStore}
}

func post(handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterValidation(t *testing.T) {
	hs := newHarness(t)

	tests := []struct {
		name string
		req  models.RegisterRequest
		want int
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.co", Password: "secret1"}, http.StatusBadRequest},
		{"bad email", models.RegisterRequest{Email: "not-an-email", Name: "Ann", Password: "secret1"}, http.StatusBadRequest},
		{"short password", models.RegisterRequest{Email: "a@b.co", Name: "Ann", Password: "12345"}, http.StatusBadRequest},
		{"mismatch", models.RegisterRequest{Email: "a@b.co", Name: "Ann", Password: "secret1", ConfirmPassword: "secret2"}, http.StatusBadRequest},
		{"ok", models.RegisterRequest{Email: " A@B.co ", Name: "Ann Lee", Password: "secret1", ConfirmPassword: "secret1"}, http.StatusCreated},
		{"duplicate", models.RegisterRequest{Email: "a@b.co", Name: "Ann", Password: "secret1"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(hs.h.Register, tt.req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	hs := newHarness(t)

	rec := post(hs.h.Register, models.RegisterRequest{Email: "sipho@example.com", Name: "Sipho", Password: "hunter22"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	var reg models.AuthResponse
	json.NewDecoder(rec.Body).Decode(&reg)
	if reg.User.ID == 0 || reg.Token == "" {
		t.Fatalf("register response = %+v", reg)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("hunter22")) || bytes.Contains(rec.Body.Bytes(), []byte("$2a$")) {
		t.Error("response leaks the password")
	}

	if rec := post(hs.h.Login, models.LoginRequest{Email: "sipho@example.com", Password: "wrong-pass"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", rec.Code)
	}
	if rec := post(hs.h.Login, models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d", rec.Code)
	}

	rec = post(hs.h.Login, models.LoginRequest{Email: "SIPHO@example.com", Password: "hunter22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var login models.AuthResponse
	json.NewDecoder(rec.Body).Decode(&login)

	claims, err := hs.tokens.Parse(login.Token)
	if err != nil {
		t.Fatalf("login token: %v", err)
	}
	if _, ok := hs.sessions.Get(claims.SessionID); !ok {
		t.Error("login did not create a session")
	}
	if hs.sessions.Count() != 2 {
		t.Errorf("sessions = %d, want one per sign-in", hs.sessions.Count())
	}
}

func TestLoginRestoresFavorites(t *testing.T) {
	hs := newHarness(t)

	rec := post(hs.h.Register, models.RegisterRequest{Email: "x@y.za", Name: "X", Password: "secret1"})
	var reg models.AuthResponse
	json.NewDecoder(rec.Body).Decode(&reg)
	if err := hs.favStore.Add(context.Background(), reg.User.ID, "question_2_1_1"); err != nil {
		t.Fatal(err)
	}

	rec = post(hs.h.Login, models.LoginRequest{Email: "x@y.za", Password: "secret1"})
	var login models.AuthResponse
	json.NewDecoder(rec.Body).Decode(&login)
	claims, _ := hs.tokens.Parse(login.Token)
	sess, _ := hs.sessions.Get(claims.SessionID)

	if !sess.Favorites.IsFavorite("question_2_1_1") {
		t.Errorf("favorites after login = %v", sess.Favorites.List())
	}
}

func TestLogoutAndMe(t *testing.T) {
	hs := newHarness(t)
	rec := post(hs.h.Register, models.RegisterRequest{Email: "m@e.co", Name: "Me", Password: "secret1"})
	var reg models.AuthResponse
	json.NewDecoder(rec.Body).Decode(&reg)
	claims, _ := hs.tokens.Parse(reg.Token)
	sess, _ := hs.sessions.Get(claims.SessionID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(session.WithSession(req.Context(), sess))
	me := httptest.NewRecorder()
	hs.h.GetCurrentUser(me, req)
	var user models.User
	json.NewDecoder(me.Body).Decode(&user)
	if me.Code != http.StatusOK || user.Email != "m@e.co" {
		t.Errorf("me = %d %+v", me.Code, user)
	}

	out := httptest.NewRecorder()
	hs.h.Logout(out, req)
	if out.Code != http.StatusOK {
		t.Errorf("logout status = %d", out.Code)
	}
	if _, ok := hs.sessions.Get(sess.ID); ok {
		t.Error("session survived logout")
	}

	anon := httptest.NewRecorder()
	hs.h.Logout(anon, httptest.NewRequest(http.MethodPost, "/", nil))
	if anon.Code != http.StatusUnauthorized {
		t.Errorf("anonymous logout status = %d", anon.Code)
	}
}
