package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/exampapers/backend/internal/models"
)

// stallingSource blocks every paper lookup until the caller gives up.
type stallingSource struct {
	*MemorySource
}

func (s stallingSource) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s stallingSource) ListQuestions(ctx context.Context, paperID string) ([]models.Question, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutSource_DeadlineBecomesUnavailable(t *testing.T) {
	src := NewTimeoutSource(stallingSource{newSampleSource(t)}, 20*time.Millisecond)

	start := time.Now()
	_, err := src.GetPaper(context.Background(), "paper_2025_march_ec")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("GetPaper = %v, want ErrUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %s, timeout not applied", elapsed)
	}

	if _, err := src.ListQuestions(context.Background(), "paper_2025_march_ec"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ListQuestions = %v, want ErrUnavailable", err)
	}
}

func TestTimeoutSource_PassesThroughResults(t *testing.T) {
	src := NewTimeoutSource(newSampleSource(t), time.Second)
	ctx := context.Background()

	qs, err := src.ListQuestions(ctx, "paper_2025_march_ec")
	if err != nil || len(qs) != 3 {
		t.Fatalf("ListQuestions = %d, %v", len(qs), err)
	}
	if _, err := src.GetPaper(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPaper(nope) = %v, want ErrNotFound", err)
	}
}

func TestTimeoutSource_ZeroTimeoutDisablesGuard(t *testing.T) {
	src := NewTimeoutSource(newSampleSource(t), 0)
	cats, err := src.ListCategories(context.Background())
	if err != nil || len(cats) == 0 {
		t.Fatalf("ListCategories = %d, %v", len(cats), err)
	}
}

func TestTimeoutSource_ReplaceAnswerSteps(t *testing.T) {
	mem := newSampleSource(t)
	src := NewTimeoutSource(mem, time.Second)
	ctx := context.Background()

	if err := src.ReplaceAnswerSteps(ctx, "question_2_1_1", []models.Answer{{ID: "s1", StepNumber: 1, Content: "Tn = 2n² − 3n + 2"}}); err != nil {
		t.Fatalf("ReplaceAnswerSteps: %v", err)
	}
	steps, _ := mem.ListAnswerSteps(ctx, "question_2_1_1")
	if len(steps) != 1 {
		t.Errorf("got %d steps, want 1", len(steps))
	}

	readOnly := NewTimeoutSource(stallingSource{mem}, time.Second)
	// stallingSource embeds MemorySource, so it still accepts steps.
	if err := readOnly.ReplaceAnswerSteps(ctx, "ghost", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceAnswerSteps(ghost) = %v, want ErrNotFound", err)
	}
}

func TestTimeoutSource_RemoveQuestion(t *testing.T) {
	mem := newSampleSource(t)
	src := NewTimeoutSource(mem, time.Second)
	ctx := context.Background()

	if err := src.RemoveQuestion(ctx, "question_2_1_1"); err != nil {
		t.Fatalf("RemoveQuestion: %v", err)
	}
	if _, err := mem.GetQuestion(ctx, "question_2_1_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("question still present: %v", err)
	}
	if err := src.RemoveQuestion(ctx, "question_2_1_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveQuestion = %v, want ErrNotFound", err)
	}
}
