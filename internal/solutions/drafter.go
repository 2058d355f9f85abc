// Package solutions drafts worked-solution steps for catalog questions with
// an LLM. Drafts are reviewed by an editor before being saved.
package solutions

import (
	"context"
	"errors"
	"fmt"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
)

// ErrDisabled is returned when no drafting backend is configured.
var ErrDisabled = errors.New("solution drafting is disabled")

type Drafter struct {
	llm    LLMClient
	model  string
	source catalog.Source
	log    *logger.Logger
}

// NewDrafter wraps llm. A nil llm yields a drafter that always returns ErrDisabled.
func NewDrafter(llm LLMClient, model string, source catalog.Source, log *logger.Logger) *Drafter {
	return &Drafter{llm: llm, model: model, source: source, log: log.With("component", "SolutionsDrafter")}
}

func (d *Drafter) ModelName() string {
	return d.model
}

// DraftSteps asks the model for a worked solution to questionID.
func (d *Drafter) DraftSteps(ctx context.Context, questionID string) ([]models.Answer, *LLMResponse, error) {
	if d.llm == nil {
		return nil, nil, ErrDisabled
	}

	q, err := d.source.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	paper, err := d.source.GetPaper(ctx, q.PaperID)
	if err != nil {
		return nil, nil, err
	}
	existing, err := d.source.ListAnswerSteps(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}

	resp, err := d.llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(*q, *paper, existing))
	if err != nil {
		return nil, nil, fmt.Errorf("draft steps: %w", err)
	}

	draft, err := ParseSteps(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse drafted steps: %w", err)
	}

	d.log.Info("drafted answer steps", "question_id", questionID, "steps", len(draft.Steps),
		"prompt_tokens", resp.PromptTokens, "output_tokens", resp.OutputTokens)
	return draft.Answers(questionID), resp, nil
}

// Save replaces the question's steps when the catalog accepts writes.
func (d *Drafter) Save(ctx context.Context, questionID string, steps []models.Answer) error {
	w, ok := d.source.(catalog.StepWriter)
	if !ok {
		return fmt.Errorf("catalog source does not accept answer steps")
	}
	return w.ReplaceAnswerSteps(ctx, questionID, steps)
}
