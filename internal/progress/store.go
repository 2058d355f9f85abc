package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/exampapers/backend/internal/database"
)

// Completion is one question a user has worked through.
type Completion struct {
	QuestionID  string
	CompletedAt time.Time
}

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewStore(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// MarkCompleted records the first completion of a question. Later calls keep
// the original timestamp and report false.
func (s *Store) MarkCompleted(ctx context.Context, userID int64, questionID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, database.Rebind(s.dialect,
		`INSERT INTO user_question_progress (user_id, question_id, completed_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, question_id) DO NOTHING`),
		userID, questionID, at.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Completions(ctx context.Context, userID int64) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx, database.Rebind(s.dialect,
		`SELECT question_id, completed_at FROM user_question_progress
		 WHERE user_id = ? ORDER BY completed_at, question_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		var at sql.NullTime
		if err := rows.Scan(&c.QuestionID, &at); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if at.Valid {
			c.CompletedAt = at.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Reset forgets all of a user's progress.
func (s *Store) Reset(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, database.Rebind(s.dialect,
		`DELETE FROM user_question_progress WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}
