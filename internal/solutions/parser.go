package solutions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/exampapers/backend/internal/models"
)

const maxSteps = 20

type DraftedSteps struct {
	Steps []DraftedStep `json:"steps"`
}

type DraftedStep struct {
	StepNumber int    `json:"step_number"`
	Content    string `json:"content"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseSteps decodes a drafting response and checks that steps are numbered
// 1..n without gaps and carry content.
func ParseSteps(responseBody string) (*DraftedSteps, error) {
	cleaned := stripCodeFences(responseBody)

	var draft DraftedSteps
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	sort.SliceStable(draft.Steps, func(i, j int) bool {
		return draft.Steps[i].StepNumber < draft.Steps[j].StepNumber
	})
	for i := range draft.Steps {
		draft.Steps[i].Content = strings.TrimSpace(draft.Steps[i].Content)
	}

	if err := validateSteps(draft.Steps); err != nil {
		return nil, err
	}
	return &draft, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateSteps(steps []DraftedStep) error {
	var errs []string

	if len(steps) == 0 {
		errs = append(errs, "no steps in response")
	}
	if len(steps) > maxSteps {
		errs = append(errs, fmt.Sprintf("%d steps exceeds the limit of %d", len(steps), maxSteps))
	}
	for i, s := range steps {
		if s.StepNumber != i+1 {
			errs = append(errs, fmt.Sprintf("step %d: expected step_number %d, got %d", i+1, i+1, s.StepNumber))
		}
		if s.Content == "" {
			errs = append(errs, fmt.Sprintf("step %d: empty content", i+1))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Answers converts the draft into answer rows for questionID.
func (d *DraftedSteps) Answers(questionID string) []models.Answer {
	answers := make([]models.Answer, len(d.Steps))
	for i, s := range d.Steps {
		answers[i] = models.Answer{
			ID:         fmt.Sprintf("%s-s%d", questionID, s.StepNumber),
			QuestionID: questionID,
			Content:    s.Content,
			StepNumber: s.StepNumber,
		}
	}
	return answers
}
