package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/exampapers/backend/internal/database"
	"github.com/exampapers/backend/internal/models"
)

// variantSep joins Category.Variants into the single variants column.
const variantSep = "|"

// SQLStore reads the catalog from the categories/papers/questions/answers
// tables. Foreign keys are by-value references the database does not
// enforce, so a dangling id surfaces as ErrNotFound.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLStore(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) q(query string) string {
	return database.Rebind(s.dialect, query)
}

// ── Categories ──────────────────────────────────────────

func (s *SQLStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, display_name, sort_order, variants FROM categories ORDER BY sort_order, id`)
	if err != nil {
		return nil, unavailable("list categories", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, unavailable("scan category", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list categories", err)
	}
	return categories, nil
}

func (s *SQLStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, name, display_name, sort_order, variants FROM categories WHERE id = ?`), id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", id)
	}
	if err != nil {
		return nil, unavailable("get category", err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(sc scanner) (*models.Category, error) {
	var c models.Category
	var variants string
	if err := sc.Scan(&c.ID, &c.Name, &c.DisplayName, &c.SortOrder, &variants); err != nil {
		return nil, err
	}
	if variants != "" {
		c.Variants = strings.Split(variants, variantSep)
	}
	return &c, nil
}

// ── Papers ──────────────────────────────────────────────

const paperCols = `id, category_id, year, title, is_locked, total_marks, created_at`

func (s *SQLStore) ListPapers(ctx context.Context, categoryID string) ([]models.Paper, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		s.q(fmt.Sprintf(`SELECT %s FROM papers WHERE category_id = ? ORDER BY year DESC, title, id`, paperCols)),
		categoryID)
	if err != nil {
		return nil, unavailable("list papers", err)
	}
	defer rows.Close()

	papers := []models.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, unavailable("scan paper", err)
		}
		papers = append(papers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list papers", err)
	}
	return papers, nil
}

func (s *SQLStore) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(fmt.Sprintf(`SELECT %s FROM papers WHERE id = ?`, paperCols)), id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("paper", id)
	}
	if err != nil {
		return nil, unavailable("get paper", err)
	}
	return p, nil
}

func scanPaper(sc scanner) (*models.Paper, error) {
	var p models.Paper
	var created sql.NullTime
	if err := sc.Scan(&p.ID, &p.CategoryID, &p.Year, &p.Title, &p.IsLocked, &p.TotalMarks, &created); err != nil {
		return nil, err
	}
	if created.Valid {
		p.CreatedAt = created.Time
	}
	return &p, nil
}

// ── Questions ───────────────────────────────────────────

const questionCols = `id, paper_id, question_number, content, marks, sort_order`

func (s *SQLStore) ListQuestions(ctx context.Context, paperID string) ([]models.Question, error) {
	if _, err := s.GetPaper(ctx, paperID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		s.q(fmt.Sprintf(`SELECT %s FROM questions WHERE paper_id = ? ORDER BY sort_order, id`, questionCols)),
		paperID)
	if err != nil {
		return nil, unavailable("list questions", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.PaperID, &q.QuestionNumber, &q.Content, &q.Marks, &q.SortOrder); err != nil {
			return nil, unavailable("scan question", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list questions", err)
	}
	return questions, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRowContext(ctx,
		s.q(fmt.Sprintf(`SELECT %s FROM questions WHERE id = ?`, questionCols)), id,
	).Scan(&q.ID, &q.PaperID, &q.QuestionNumber, &q.Content, &q.Marks, &q.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("question", id)
	}
	if err != nil {
		return nil, unavailable("get question", err)
	}
	return &q, nil
}

// ── Answers ─────────────────────────────────────────────

func (s *SQLStore) ListAnswerSteps(ctx context.Context, questionID string) ([]models.Answer, error) {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id, question_id, content, step_number FROM answers WHERE question_id = ? ORDER BY step_number, id`),
		questionID)
	if err != nil {
		return nil, unavailable("list answers", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Content, &a.StepNumber); err != nil {
			return nil, unavailable("scan answer", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list answers", err)
	}
	return answers, nil
}

// ── Ingestion ───────────────────────────────────────────

// Import upserts every record of f in one transaction.
func (s *SQLStore) Import(ctx context.Context, f Fixture) error {
	if err := ValidateFixture(f); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range f.Categories {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO categories (id, name, display_name, sort_order, variants)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET name = excluded.name, display_name = excluded.display_name,
			     sort_order = excluded.sort_order, variants = excluded.variants`),
			c.ID, c.Name, c.DisplayName, c.SortOrder, strings.Join(c.Variants, variantSep),
		); err != nil {
			return fmt.Errorf("import category %s: %w", c.ID, err)
		}
	}

	for _, p := range f.Papers {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO papers (id, category_id, year, title, is_locked, total_marks, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET category_id = excluded.category_id, year = excluded.year,
			     title = excluded.title, is_locked = excluded.is_locked, total_marks = excluded.total_marks`),
			p.ID, p.CategoryID, p.Year, p.Title, p.IsLocked, p.TotalMarks, p.CreatedAt,
		); err != nil {
			return fmt.Errorf("import paper %s: %w", p.ID, err)
		}
	}

	for _, q := range f.Questions {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO questions (id, paper_id, question_number, content, marks, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET paper_id = excluded.paper_id, question_number = excluded.question_number,
			     content = excluded.content, marks = excluded.marks, sort_order = excluded.sort_order`),
			q.ID, q.PaperID, q.QuestionNumber, q.Content, q.Marks, q.SortOrder,
		); err != nil {
			return fmt.Errorf("import question %s: %w", q.ID, err)
		}
	}

	for _, a := range f.Answers {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO answers (id, question_id, content, step_number)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET question_id = excluded.question_id,
			     content = excluded.content, step_number = excluded.step_number`),
			a.ID, a.QuestionID, a.Content, a.StepNumber,
		); err != nil {
			return fmt.Errorf("import answer %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceAnswerSteps swaps the worked solution of a question atomically.
// Steps without an id get "<question>-s<step>".
func (s *SQLStore) ReplaceAnswerSteps(ctx context.Context, questionID string, steps []models.Answer) error {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM answers WHERE question_id = ?`), questionID); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}

	for _, a := range steps {
		id := a.ID
		if id == "" {
			id = fmt.Sprintf("%s-s%d", questionID, a.StepNumber)
		}
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO answers (id, question_id, content, step_number) VALUES (?, ?, ?, ?)`),
			id, questionID, a.Content, a.StepNumber,
		); err != nil {
			return fmt.Errorf("insert answer step %d: %w", a.StepNumber, err)
		}
	}

	return tx.Commit()
}

// RemoveQuestion deletes a question and its answer steps in one transaction.
func (s *SQLStore) RemoveQuestion(ctx context.Context, id string) error {
	if _, err := s.GetQuestion(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM answers WHERE question_id = ?`), id); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM questions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	return tx.Commit()
}
