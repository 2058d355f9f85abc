package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/exampapers/backend/internal/models"
)

// MemorySource serves a Fixture from in-process indexes. Reads take a shared
// lock, so concurrent lookups for different ids never interfere.
type MemorySource struct {
	mu sync.RWMutex

	categories []models.Category
	categoryBy map[string]models.Category
	paperBy    map[string]models.Paper
	questionBy map[string]models.Question

	papersByCategory  map[string][]models.Paper
	questionsByPaper  map[string][]models.Question
	answersByQuestion map[string][]models.Answer
}

// NewMemorySource indexes f. It fails if f breaks a catalog invariant.
func NewMemorySource(f Fixture) (*MemorySource, error) {
	if err := ValidateFixture(f); err != nil {
		return nil, err
	}

	m := &MemorySource{
		categoryBy:        make(map[string]models.Category, len(f.Categories)),
		paperBy:           make(map[string]models.Paper, len(f.Papers)),
		questionBy:        make(map[string]models.Question, len(f.Questions)),
		papersByCategory:  make(map[string][]models.Paper),
		questionsByPaper:  make(map[string][]models.Question),
		answersByQuestion: make(map[string][]models.Answer),
	}

	m.categories = append(m.categories, f.Categories...)
	sort.SliceStable(m.categories, func(i, j int) bool {
		if m.categories[i].SortOrder != m.categories[j].SortOrder {
			return m.categories[i].SortOrder < m.categories[j].SortOrder
		}
		return m.categories[i].ID < m.categories[j].ID
	})
	for _, c := range m.categories {
		m.categoryBy[c.ID] = c
	}
	for _, p := range f.Papers {
		m.paperBy[p.ID] = p
		m.papersByCategory[p.CategoryID] = append(m.papersByCategory[p.CategoryID], p)
	}
	for _, q := range f.Questions {
		m.questionBy[q.ID] = q
		m.questionsByPaper[q.PaperID] = append(m.questionsByPaper[q.PaperID], q)
	}
	for pid := range m.questionsByPaper {
		sortQuestions(m.questionsByPaper[pid])
	}
	for _, a := range f.Answers {
		m.answersByQuestion[a.QuestionID] = append(m.answersByQuestion[a.QuestionID], a)
	}
	for qid := range m.answersByQuestion {
		sortAnswers(m.answersByQuestion[qid])
	}

	return m, nil
}

func (m *MemorySource) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Category(nil), m.categories...), nil
}

func (m *MemorySource) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categoryBy[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func (m *MemorySource) ListPapers(ctx context.Context, categoryID string) ([]models.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.categoryBy[categoryID]; !ok {
		return nil, notFound("category", categoryID)
	}
	return append([]models.Paper{}, m.papersByCategory[categoryID]...), nil
}

func (m *MemorySource) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.paperBy[id]
	if !ok {
		return nil, notFound("paper", id)
	}
	return &p, nil
}

func (m *MemorySource) ListQuestions(ctx context.Context, paperID string) ([]models.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.paperBy[paperID]; !ok {
		return nil, notFound("paper", paperID)
	}
	return append([]models.Question{}, m.questionsByPaper[paperID]...), nil
}

func (m *MemorySource) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questionBy[id]
	if !ok {
		return nil, notFound("question", id)
	}
	return &q, nil
}

func (m *MemorySource) ListAnswerSteps(ctx context.Context, questionID string) ([]models.Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.questionBy[questionID]; !ok {
		return nil, notFound("question", questionID)
	}
	return append([]models.Answer{}, m.answersByQuestion[questionID]...), nil
}

func (m *MemorySource) ReplaceAnswerSteps(ctx context.Context, questionID string, steps []models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questionBy[questionID]; !ok {
		return notFound("question", questionID)
	}
	replaced := make([]models.Answer, len(steps))
	copy(replaced, steps)
	for i := range replaced {
		replaced[i].QuestionID = questionID
	}
	sortAnswers(replaced)
	m.answersByQuestion[questionID] = replaced
	return nil
}

// RemoveQuestion drops a question and its answers, as content ingestion does
// when a paper is revised.
func (m *MemorySource) RemoveQuestion(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questionBy[id]
	if !ok {
		return notFound("question", id)
	}
	delete(m.questionBy, id)
	delete(m.answersByQuestion, id)
	kept := m.questionsByPaper[q.PaperID][:0]
	for _, other := range m.questionsByPaper[q.PaperID] {
		if other.ID != id {
			kept = append(kept, other)
		}
	}
	m.questionsByPaper[q.PaperID] = kept
	return nil
}

func sortQuestions(qs []models.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].SortOrder != qs[j].SortOrder {
			return qs[i].SortOrder < qs[j].SortOrder
		}
		return qs[i].ID < qs[j].ID
	})
}

func sortAnswers(as []models.Answer) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].StepNumber != as[j].StepNumber {
			return as[i].StepNumber < as[j].StepNumber
		}
		return as[i].ID < as[j].ID
	})
}
