// Package browser derives what a student sees: the papers visible for a
// selection, and an opened paper's questions with their worked steps.
package browser

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/models"
)

type Browser struct {
	source catalog.Source
}

func New(source catalog.Source) *Browser {
	return &Browser{source: source}
}

func (b *Browser) Categories(ctx context.Context) ([]models.Category, error) {
	return b.source.ListCategories(ctx)
}

func (b *Browser) Category(ctx context.Context, id string) (*models.Category, error) {
	return b.source.GetCategory(ctx, id)
}

// Years lists the distinct years a category has papers for, newest first.
func (b *Browser) Years(ctx context.Context, categoryID string) ([]string, error) {
	papers, err := b.source.ListPapers(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	years := []string{}
	for _, p := range papers {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}

// Select resolves categoryID and makes it the selector's category.
func (b *Browser) Select(ctx context.Context, sel *Selector, categoryID string) error {
	c, err := b.source.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	sel.SetCategory(*c)
	return nil
}

// VisiblePapers returns the papers of categoryID that match sel. Locked papers
// stay in the result. The order is year descending, then title, then id, so
// repeated calls over the same catalog return identical sequences.
func (b *Browser) VisiblePapers(ctx context.Context, categoryID string, sel Selection) ([]models.Paper, error) {
	category, err := b.source.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	papers, err := b.source.ListPapers(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return FilterPapers(papers, *category, sel), nil
}

// FilterPapers is the pure part of VisiblePapers. The input slice is not modified.
func FilterPapers(papers []models.Paper, category models.Category, sel Selection) []models.Paper {
	variant := ""
	if category.HasVariantAxis() {
		variant = strings.ToLower(sel.Variant)
	}

	visible := []models.Paper{}
	for _, p := range papers {
		if sel.Year != "" && p.Year != sel.Year {
			continue
		}
		if variant != "" && !containsWord(strings.ToLower(p.Title), variant) {
			continue
		}
		visible = append(visible, p)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return visible
}

// containsWord reports whether word occurs in s with no letter or digit directly
// on either side, so "test 1" matches "Test 1 – 2024" but not "Test 10".
func containsWord(s, word string) bool {
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// OpenPaper returns the paper's questions in sort_order, each with its answer
// steps in step_number order. A locked paper yields ErrLockedContent and no data.
func (b *Browser) OpenPaper(ctx context.Context, paper models.Paper) ([]models.QuestionWithSteps, error) {
	if paper.IsLocked {
		return nil, fmt.Errorf("paper %q: %w", paper.ID, catalog.ErrLockedContent)
	}

	questions, err := b.source.ListQuestions(ctx, paper.ID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].SortOrder != questions[j].SortOrder {
			return questions[i].SortOrder < questions[j].SortOrder
		}
		return questions[i].ID < questions[j].ID
	})

	opened := make([]models.QuestionWithSteps, 0, len(questions))
	for _, q := range questions {
		steps, err := b.AnswerSteps(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("open paper %q: %w", paper.ID, err)
		}
		opened = append(opened, models.QuestionWithSteps{Question: q, Steps: steps})
	}
	return opened, nil
}

// Paper returns paper metadata. Locked papers resolve too.
func (b *Browser) Paper(ctx context.Context, id string) (*models.Paper, error) {
	return b.source.GetPaper(ctx, id)
}

// OpenPaperByID resolves the paper first, so an unknown id is ErrNotFound.
func (b *Browser) OpenPaperByID(ctx context.Context, paperID string) (*models.Paper, []models.QuestionWithSteps, error) {
	paper, err := b.source.GetPaper(ctx, paperID)
	if err != nil {
		return nil, nil, err
	}
	questions, err := b.OpenPaper(ctx, *paper)
	if err != nil {
		return paper, nil, err
	}
	return paper, questions, nil
}

// Question resolves a single question with its steps. Questions of a locked
// paper are locked too.
func (b *Browser) Question(ctx context.Context, questionID string) (*models.QuestionWithSteps, error) {
	q, err := b.source.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	paper, err := b.source.GetPaper(ctx, q.PaperID)
	if err != nil {
		return nil, err
	}
	if paper.IsLocked {
		return nil, fmt.Errorf("paper %q: %w", paper.ID, catalog.ErrLockedContent)
	}
	steps, err := b.AnswerSteps(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	return &models.QuestionWithSteps{Question: *q, Steps: steps}, nil
}

func (b *Browser) AnswerSteps(ctx context.Context, questionID string) ([]models.Answer, error) {
	steps, err := b.source.ListAnswerSteps(ctx, questionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].StepNumber != steps[j].StepNumber {
			return steps[i].StepNumber < steps[j].StepNumber
		}
		return steps[i].ID < steps[j].ID
	})
	return steps, nil
}
