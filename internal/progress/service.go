// Package progress tracks which questions a student has worked through and
// summarises completion per category along with a daily streak.
package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
)

type Service struct {
	source catalog.Source
	store  *Store
	log    *logger.Logger
	now    func() time.Time
}

func NewService(source catalog.Source, store *Store, log *logger.Logger) *Service {
	return &Service{source: source, store: store, log: log.With("component", "Progress"), now: time.Now}
}

// MarkCompleted records questionID as done. It fails with ErrNotFound for an
// unknown question and is a no-op when already recorded.
func (s *Service) MarkCompleted(ctx context.Context, userID int64, questionID string) error {
	if _, err := s.source.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	added, err := s.store.MarkCompleted(ctx, userID, questionID, s.now())
	if err != nil {
		return err
	}
	if added {
		s.log.Debug("question completed", "user_id", userID, "question_id", questionID)
	}
	return nil
}

// Summary walks the catalog to total questions per category and joins the
// user's completions onto it. Completions of questions no longer in the
// catalog still count toward the streak but not toward any category.
func (s *Service) Summary(ctx context.Context, userID int64) (*models.ProgressSummary, error) {
	completions, err := s.store.Completions(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(completions))
	activity := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		done[c.QuestionID] = true
		activity = append(activity, c.CompletedAt)
	}

	categories, err := s.source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("progress summary: %w", err)
	}

	summary := &models.ProgressSummary{Categories: []models.CategoryProgress{}}
	for _, c := range categories {
		cp := models.CategoryProgress{CategoryID: c.ID, DisplayName: c.DisplayName}
		papers, err := s.source.ListPapers(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("progress summary: %w", err)
		}
		for _, p := range papers {
			questions, err := s.source.ListQuestions(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("progress summary: %w", err)
			}
			for _, q := range questions {
				cp.Total++
				if done[q.ID] {
					cp.Completed++
				}
			}
		}
		cp.Percent = percent(cp.Completed, cp.Total)
		summary.TotalQuestions += cp.Total
		summary.CompletedQuestions += cp.Completed
		summary.Categories = append(summary.Categories, cp)
	}
	summary.CompletionPercent = percent(summary.CompletedQuestions, summary.TotalQuestions)
	summary.CurrentStreak, summary.LongestStreak = ComputeStreak(activity, s.now())
	return summary, nil
}

// Reset clears a user's progress.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	return s.store.Reset(ctx, userID)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
