package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/exampapers/backend/internal/models"
)

// TimeoutSource bounds every call to the wrapped source. A call that outlives
// the timeout fails with ErrUnavailable instead of blocking the caller.
type TimeoutSource struct {
	next    Source
	timeout time.Duration
}

// NewTimeoutSource wraps next. A non-positive timeout disables the guard.
func NewTimeoutSource(next Source, timeout time.Duration) *TimeoutSource {
	return &TimeoutSource{next: next, timeout: timeout}
}

func guard[T any](ctx context.Context, t *TimeoutSource, op string, call func(context.Context) (T, error)) (T, error) {
	if t.timeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	v, err := call(ctx)
	if err != nil && !errors.Is(err, ErrUnavailable) && errors.Is(err, context.DeadlineExceeded) {
		var zero T
		return zero, fmt.Errorf("%s: %w: timed out after %s", op, ErrUnavailable, t.timeout)
	}
	return v, err
}

func (t *TimeoutSource) ListCategories(ctx context.Context) ([]models.Category, error) {
	return guard(ctx, t, "list categories", func(ctx context.Context) ([]models.Category, error) {
		return t.next.ListCategories(ctx)
	})
}

func (t *TimeoutSource) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return guard(ctx, t, "get category", func(ctx context.Context) (*models.Category, error) {
		return t.next.GetCategory(ctx, id)
	})
}

func (t *TimeoutSource) ListPapers(ctx context.Context, categoryID string) ([]models.Paper, error) {
	return guard(ctx, t, "list papers", func(ctx context.Context) ([]models.Paper, error) {
		return t.next.ListPapers(ctx, categoryID)
	})
}

func (t *TimeoutSource) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	return guard(ctx, t, "get paper", func(ctx context.Context) (*models.Paper, error) {
		return t.next.GetPaper(ctx, id)
	})
}

func (t *TimeoutSource) ListQuestions(ctx context.Context, paperID string) ([]models.Question, error) {
	return guard(ctx, t, "list questions", func(ctx context.Context) ([]models.Question, error) {
		return t.next.ListQuestions(ctx, paperID)
	})
}

func (t *TimeoutSource) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return guard(ctx, t, "get question", func(ctx context.Context) (*models.Question, error) {
		return t.next.GetQuestion(ctx, id)
	})
}

func (t *TimeoutSource) ListAnswerSteps(ctx context.Context, questionID string) ([]models.Answer, error) {
	return guard(ctx, t, "list answers", func(ctx context.Context) ([]models.Answer, error) {
		return t.next.ListAnswerSteps(ctx, questionID)
	})
}

func (t *TimeoutSource) ReplaceAnswerSteps(ctx context.Context, questionID string, steps []models.Answer) error {
	w, ok := t.next.(StepWriter)
	if !ok {
		return fmt.Errorf("catalog source does not accept answer steps")
	}
	_, err := guard(ctx, t, "replace answers", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.ReplaceAnswerSteps(ctx, questionID, steps)
	})
	return err
}

func (t *TimeoutSource) RemoveQuestion(ctx context.Context, id string) error {
	r, ok := t.next.(QuestionRemover)
	if !ok {
		return fmt.Errorf("catalog source does not accept removals")
	}
	_, err := guard(ctx, t, "remove question", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.RemoveQuestion(ctx, id)
	})
	return err
}
