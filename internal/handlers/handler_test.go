package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/database"
	"github.com/exampapers/backend/internal/database/testdb"
	"github.com/exampapers/backend/internal/favorites"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
	"github.com/exampapers/backend/internal/progress"
	"github.com/exampapers/backend/internal/session"
	"github.com/exampapers/backend/internal/solutions"
)

type harness struct {
	h    *Handler
	sess *session.Session
}

func newHarness(t *testing.T, llm solutions.LLMClient) harness {
	t.Helper()
	db := testdb.Open(t)
	src, err := catalog.NewMemorySource(catalog.SampleFixture())
	if err != nil {
		t.Fatal(err)
	}
	log := logger.NewNop()
	h := NewHandler(
		src,
		favorites.NewService(src, favorites.NewStore(db, database.SQLite), log),
		progress.NewService(src, progress.NewStore(db, database.SQLite), log),
		solutions.NewDrafter(llm, "mock", src, log),
		log,
	)
	return harness{h: h, sess: session.NewManager(0).Create(1)}
}

// do runs handler with the harness session attached and vars as route params.
func (hs harness) do(handler http.HandlerFunc, method, target string, vars map[string]string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(session.WithSession(req.Context(), hs.sess))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestListCategories(t *testing.T) {
	hs := newHarness(t, nil)

	rec := hs.do(hs.h.ListCategories, http.MethodGet, "/categories", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.CategoryListResponse
	decode(t, rec, &resp)
	if len(resp.Categories) != 11 || resp.Categories[0].ID != "notes" {
		t.Errorf("categories = %+v", resp.Categories)
	}
}

func TestListPapers(t *testing.T) {
	hs := newHarness(t, nil)

	tests := []struct {
		name     string
		category string
		query    string
		want     int
		status   int
	}{
		{"all tests", "tests", "", 16, http.StatusOK},
		{"by year", "tests", "?year=2025", 4, http.StatusOK},
		{"by year and variant", "tests", "?year=2025&variant=Test+1", 1, http.StatusOK},
		{"variant ignored without axis", "march_tests", "?variant=Test+1", 2, http.StatusOK},
		{"empty category", "notes", "", 0, http.StatusOK},
		{"unknown category", "nope", "", 0, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(hs.h.ListPapers, http.MethodGet, "/categories/"+tt.category+"/papers"+tt.query,
				map[string]string{"id": tt.category}, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp models.PaperListResponse
			decode(t, rec, &resp)
			if resp.Total != tt.want || len(resp.Papers) != tt.want {
				t.Errorf("total = %d, want %d", resp.Total, tt.want)
			}
		})
	}
}

func TestListYears(t *testing.T) {
	hs := newHarness(t, nil)

	rec := hs.do(hs.h.ListYears, http.MethodGet, "/", map[string]string{"id": "march_tests"}, nil)
	var resp models.YearListResponse
	decode(t, rec, &resp)
	if len(resp.Years) != 2 || resp.Years[0] != "2025" || resp.Years[1] != "2023" {
		t.Errorf("years = %v", resp.Years)
	}
}

func TestOpenPaper(t *testing.T) {
	hs := newHarness(t, nil)

	tests := []struct {
		name      string
		paperID   string
		status    int
		questions int
	}{
		{"unlocked", "smth011-2025-t1", http.StatusOK, 3},
		{"locked", "paper_2025_march_ec", http.StatusLocked, 0},
		{"unknown", "missing", http.StatusNotFound, 0},
		{"no questions", "smth011-ex-2024", http.StatusOK, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.do(hs.h.OpenPaper, http.MethodGet, "/", map[string]string{"id": tt.paperID}, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				var e models.ErrorResponse
				decode(t, rec, &e)
				if e.Code == "" {
					t.Error("error response without code")
				}
				return
			}
			var resp models.OpenPaperResponse
			decode(t, rec, &resp)
			if len(resp.Questions) != tt.questions {
				t.Errorf("questions = %d, want %d", len(resp.Questions), tt.questions)
			}
		})
	}
}

func TestGetPaperReturnsLockedMetadata(t *testing.T) {
	hs := newHarness(t, nil)

	rec := hs.do(hs.h.GetPaper, http.MethodGet, "/", map[string]string{"id": "paper_2025_march_ec"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p models.Paper
	decode(t, rec, &p)
	if !p.IsLocked || p.Title != "March Test (EC)" {
		t.Errorf("paper = %+v", p)
	}
}

func TestGetQuestion(t *testing.T) {
	hs := newHarness(t, nil)
	hs.sess.Favorites.Add("smth011-2024-t1-q2")

	rec := hs.do(hs.h.GetQuestion, http.MethodGet, "/", map[string]string{"id": "smth011-2024-t1-q2"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.QuestionDetailResponse
	decode(t, rec, &resp)
	if !resp.IsFavorite || resp.Question.QuestionNumber != "1.1.2" || len(resp.Steps) == 0 {
		t.Errorf("resp = %+v", resp)
	}

	rec = hs.do(hs.h.GetQuestion, http.MethodGet, "/", map[string]string{"id": "question_1_1_1"}, nil)
	if rec.Code != http.StatusLocked {
		t.Errorf("locked question status = %d", rec.Code)
	}
}

func TestSelectionFlow(t *testing.T) {
	hs := newHarness(t, nil)

	steps := []struct {
		name  string
		req   models.UpdateSelectionRequest
		code  int
		stage string
	}{
		{"year before category", models.UpdateSelectionRequest{Year: strPtr("2025")}, http.StatusConflict, ""},
		{"unknown category", models.UpdateSelectionRequest{Category: strPtr("nope")}, http.StatusNotFound, ""},
		{"category", models.UpdateSelectionRequest{Category: strPtr("tests")}, http.StatusOK, "category"},
		{"variant before year", models.UpdateSelectionRequest{Variant: strPtr("Test 2")}, http.StatusConflict, ""},
		{"year and variant", models.UpdateSelectionRequest{Year: strPtr("2024"), Variant: strPtr("Test 2")}, http.StatusOK, "variant"},
		{"unknown variant", models.UpdateSelectionRequest{Variant: strPtr("Test 9")}, http.StatusConflict, ""},
		{"category without axis", models.UpdateSelectionRequest{Category: strPtr("exams"), Variant: strPtr("Test 1")}, http.StatusConflict, ""},
		{"reset", models.UpdateSelectionRequest{Category: strPtr("")}, http.StatusOK, "none"},
		{"empty body", models.UpdateSelectionRequest{}, http.StatusBadRequest, ""},
	}
	for _, s := range steps {
		rec := hs.do(hs.h.UpdateSelection, http.MethodPut, "/selection", nil, s.req)
		if rec.Code != s.code {
			t.Fatalf("%s: status = %d, want %d (%s)", s.name, rec.Code, s.code, rec.Body.String())
		}
		if s.stage == "" {
			continue
		}
		var state models.SelectionState
		decode(t, rec, &state)
		if state.Stage != s.stage {
			t.Errorf("%s: stage = %q, want %q", s.name, state.Stage, s.stage)
		}
	}
}

func TestSelectionPapers(t *testing.T) {
	hs := newHarness(t, nil)

	rec := hs.do(hs.h.SelectionPapers, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("no category status = %d", rec.Code)
	}

	hs.do(hs.h.UpdateSelection, http.MethodPut, "/", nil,
		models.UpdateSelectionRequest{Category: strPtr("tests"), Year: strPtr("2023"), Variant: strPtr("Test 3")})
	rec = hs.do(hs.h.SelectionPapers, http.MethodGet, "/", nil, nil)
	var resp models.PaperListResponse
	decode(t, rec, &resp)
	if resp.Total != 1 || resp.Papers[0].ID != "smth011-2023-t3" {
		t.Errorf("papers = %+v", resp.Papers)
	}

	rec = hs.do(hs.h.ClearSelection, http.MethodDelete, "/", nil, nil)
	var state models.SelectionState
	decode(t, rec, &state)
	if state.Stage != "none" || state.Category != "" {
		t.Errorf("state after clear = %+v", state)
	}
}

func TestFavoritesFlow(t *testing.T) {
	hs := newHarness(t, nil)
	vars := func(id string) map[string]string { return map[string]string{"questionID": id} }

	if rec := hs.do(hs.h.AddFavorite, http.MethodPut, "/", vars("missing"), nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown question status = %d", rec.Code)
	}
	for _, id := range []string{"question_2_1_1", "smth011-2022-t1-q1", "question_2_1_1"} {
		if rec := hs.do(hs.h.AddFavorite, http.MethodPut, "/", vars(id), nil); rec.Code != http.StatusOK {
			t.Fatalf("add %s status = %d", id, rec.Code)
		}
	}

	rec := hs.do(hs.h.ListFavorites, http.MethodGet, "/", nil, nil)
	var resp models.FavoriteListResponse
	decode(t, rec, &resp)
	if resp.Total != 2 || resp.Favorites[0].Question.ID != "question_2_1_1" || resp.Favorites[0].CategoryTitle != "June Exams" {
		t.Fatalf("favorites = %+v", resp.Favorites)
	}

	hs.do(hs.h.RemoveFavorite, http.MethodDelete, "/", vars("question_2_1_1"), nil)
	if rec := hs.do(hs.h.RemoveQuestion, http.MethodDelete, "/", map[string]string{"id": "smth011-2022-t1-q1"}, nil); rec.Code != http.StatusOK {
		t.Fatalf("remove question status = %d", rec.Code)
	}

	rec = hs.do(hs.h.ListFavorites, http.MethodGet, "/", nil, nil)
	resp = models.FavoriteListResponse{}
	decode(t, rec, &resp)
	if resp.Total != 0 || hs.sess.Favorites.Len() != 0 {
		t.Errorf("favorites after remove and prune = %+v", resp.Favorites)
	}
}

func TestProgress(t *testing.T) {
	hs := newHarness(t, nil)

	for _, id := range []string{"question_1_1_1", "question_2_1_1"} {
		if rec := hs.do(hs.h.MarkCompleted, http.MethodPost, "/", map[string]string{"questionID": id}, nil); rec.Code != http.StatusOK {
			t.Fatalf("mark %s status = %d", id, rec.Code)
		}
	}
	if rec := hs.do(hs.h.MarkCompleted, http.MethodPost, "/", map[string]string{"questionID": "nope"}, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown question status = %d", rec.Code)
	}

	rec := hs.do(hs.h.GetProgress, http.MethodGet, "/", nil, nil)
	var summary models.ProgressSummary
	decode(t, rec, &summary)
	if summary.CompletedQuestions != 2 || summary.TotalQuestions != 16 || summary.CurrentStreak != 1 {
		t.Errorf("summary = %+v", summary)
	}

	hs.do(hs.h.ResetProgress, http.MethodDelete, "/", nil, nil)
	rec = hs.do(hs.h.GetProgress, http.MethodGet, "/", nil, nil)
	summary = models.ProgressSummary{}
	decode(t, rec, &summary)
	if summary.CompletedQuestions != 0 {
		t.Errorf("completed after reset = %d", summary.CompletedQuestions)
	}
}

func TestDraftSteps(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		hs := newHarness(t, nil)
		rec := hs.do(hs.h.DraftSteps, http.MethodPost, "/", map[string]string{"id": "question_2_1_1"}, nil)
		if rec.Code != http.StatusNotImplemented {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("draft and save", func(t *testing.T) {
		hs := newHarness(t, solutions.NewMockClient())
		rec := hs.do(hs.h.DraftSteps, http.MethodPost, "/?save=true", map[string]string{"id": "question_2_1_1"}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
		}
		var resp models.DraftStepsResponse
		decode(t, rec, &resp)
		if !resp.Saved || len(resp.Steps) != 3 || resp.Model != "mock" {
			t.Fatalf("resp = %+v", resp)
		}

		rec = hs.do(hs.h.GetQuestion, http.MethodGet, "/", map[string]string{"id": "question_2_1_1"}, nil)
		var detail models.QuestionDetailResponse
		decode(t, rec, &detail)
		if len(detail.Steps) != 3 || detail.Steps[0].ID != "question_2_1_1-s1" {
			t.Errorf("steps after save = %+v", detail.Steps)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		hs := newHarness(t, solutions.NewMockClient())
		rec := hs.do(hs.h.DraftSteps, http.MethodPost, "/", map[string]string{"id": "nope"}, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestMissingSessionIsUnauthorized(t *testing.T) {
	hs := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	hs.h.GetProgress(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUpdateSelectionRejectedLeavesStateUnchanged(t *testing.T) {
	hs := newHarness(t, nil)

	rec := hs.do(hs.h.UpdateSelection, http.MethodPut, "/", nil,
		models.UpdateSelectionRequest{Category: strPtr("tests"), Year: strPtr("2025"), Variant: strPtr("Test 1")})
	if rec.Code != http.StatusOK {
		t.Fatalf("setup status = %d", rec.Code)
	}
	want := models.SelectionState{Category: "tests", Year: "2025", Variant: "Test 1", Stage: "variant"}

	rejected := []models.UpdateSelectionRequest{
		{Category: strPtr("exams"), Year: strPtr("2024"), Variant: strPtr("Test 1")},
		{Year: strPtr("2022"), Variant: strPtr("Test 9")},
		{Category: strPtr("nope"), Year: strPtr("2024")},
	}
	for _, req := range rejected {
		rec := hs.do(hs.h.UpdateSelection, http.MethodPut, "/", nil, req)
		if rec.Code == http.StatusOK {
			t.Fatalf("update %+v accepted", req)
		}

		rec = hs.do(hs.h.GetSelection, http.MethodGet, "/", nil, nil)
		var got models.SelectionState
		decode(t, rec, &got)
		if got != want {
			t.Errorf("selection after rejected update = %+v, want %+v", got, want)
		}
	}
}

func TestRemoveQuestion(t *testing.T) {
	hs := newHarness(t, nil)

	rec := hs.do(hs.h.RemoveQuestion, http.MethodDelete, "/", map[string]string{"id": "question_2_1_1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	rec = hs.do(hs.h.GetQuestion, http.MethodGet, "/", map[string]string{"id": "question_2_1_1"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("removed question status = %d, want 404", rec.Code)
	}
	rec = hs.do(hs.h.RemoveQuestion, http.MethodDelete, "/", map[string]string{"id": "question_2_1_1"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", rec.Code)
	}
}
