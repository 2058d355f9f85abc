package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/exampapers/backend/internal/models"
)

var (
	// ErrNotFound means a referenced category, paper or question id is absent.
	ErrNotFound = errors.New("not found")
	// ErrLockedContent means the paper exists but its questions may not be opened.
	ErrLockedContent = errors.New("content locked")
	// ErrUnavailable means the backing store could not answer (unreachable, failed or timed out).
	ErrUnavailable = errors.New("catalog unavailable")
)

// Source supplies the catalog hierarchy. Lookups of an absent id fail with
// ErrNotFound rather than returning an empty slice, so callers can tell
// "category has zero papers" from "category does not exist".
type Source interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListPapers(ctx context.Context, categoryID string) ([]models.Paper, error)
	GetPaper(ctx context.Context, id string) (*models.Paper, error)
	ListQuestions(ctx context.Context, paperID string) ([]models.Question, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	ListAnswerSteps(ctx context.Context, questionID string) ([]models.Answer, error)
}

// StepWriter replaces the worked-solution steps of a question. It is an
// ingestion path, never used by the student-facing flows.
type StepWriter interface {
	ReplaceAnswerSteps(ctx context.Context, questionID string, steps []models.Answer) error
}

// QuestionRemover withdraws a question and its steps from the catalog. Favorites
// that still point at it are pruned the next time they are listed.
type QuestionRemover interface {
	RemoveQuestion(ctx context.Context, id string) error
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
