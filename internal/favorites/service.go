package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
)

type Service struct {
	source catalog.Source
	store  *Store
	log    *logger.Logger
}

// NewService joins favorites to source. A nil store keeps favorites in the
// session only.
func NewService(source catalog.Source, store *Store, log *logger.Logger) *Service {
	return &Service{source: source, store: store, log: log.With("component", "Favorites")}
}

// Hydrate fills set with the user's persisted favorites.
func (s *Service) Hydrate(ctx context.Context, userID int64, set *Set) error {
	if s.store == nil {
		return nil
	}
	ids, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		set.Add(id)
	}
	return nil
}

// Add stars questionID after checking it exists. Adding twice is a no-op.
func (s *Service) Add(ctx context.Context, userID int64, set *Set, questionID string) error {
	if _, err := s.source.GetQuestion(ctx, questionID); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Add(ctx, userID, questionID); err != nil {
			return err
		}
	}
	set.Add(questionID)
	return nil
}

func (s *Service) Remove(ctx context.Context, userID int64, set *Set, questionID string) error {
	if s.store != nil {
		if err := s.store.Remove(ctx, userID, questionID); err != nil {
			return err
		}
	}
	set.Remove(questionID)
	return nil
}

// List resolves every favorite against the catalog in insertion order.
// Favorites whose question or paper has since disappeared are dropped from the
// set and the store. Any other catalog failure is returned, never an empty list.
func (s *Service) List(ctx context.Context, userID int64, set *Set) ([]models.FavoriteQuestion, error) {
	favorites := []models.FavoriteQuestion{}
	categoryTitles := make(map[string]string)

	for _, id := range set.List() {
		fav, err := s.resolve(ctx, id, categoryTitles)
		if errors.Is(err, catalog.ErrNotFound) {
			s.log.Info("pruning stale favorite", "question_id", id, "user_id", userID)
			if err := s.Remove(ctx, userID, set, id); err != nil {
				s.log.Warn("prune favorite failed", "question_id", id, "error", err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list favorites: %w", err)
		}
		favorites = append(favorites, *fav)
	}
	return favorites, nil
}

func (s *Service) resolve(ctx context.Context, questionID string, categoryTitles map[string]string) (*models.FavoriteQuestion, error) {
	q, err := s.source.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	paper, err := s.source.GetPaper(ctx, q.PaperID)
	if err != nil {
		return nil, err
	}

	title, ok := categoryTitles[paper.CategoryID]
	if !ok {
		c, err := s.source.GetCategory(ctx, paper.CategoryID)
		switch {
		case err == nil:
			title = c.DisplayName
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, err
		}
		categoryTitles[paper.CategoryID] = title
	}

	return &models.FavoriteQuestion{
		Question:      *q,
		PaperID:       paper.ID,
		PaperTitle:    paper.Title,
		Year:          paper.Year,
		CategoryID:    paper.CategoryID,
		CategoryTitle: title,
	}, nil
}
