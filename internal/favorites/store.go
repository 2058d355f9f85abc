package favorites

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/exampapers/backend/internal/database"
)

// Store persists favorites in user_favorites so they survive a new session.
type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewStore(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Load returns a user's favorite question ids in the order they were added.
func (s *Store) Load(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, database.Rebind(s.dialect,
		`SELECT question_id FROM user_favorites WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Add(ctx context.Context, userID int64, questionID string) error {
	_, err := s.db.ExecContext(ctx, database.Rebind(s.dialect,
		`INSERT INTO user_favorites (user_id, question_id) VALUES (?, ?)
		 ON CONFLICT (user_id, question_id) DO NOTHING`),
		userID, questionID,
	)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userID int64, questionID string) error {
	_, err := s.db.ExecContext(ctx, database.Rebind(s.dialect,
		`DELETE FROM user_favorites WHERE user_id = ? AND question_id = ?`),
		userID, questionID,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
