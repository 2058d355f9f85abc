package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/exampapers/backend/internal/database"
	"github.com/exampapers/backend/internal/models"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewStore(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Create inserts a user whose Password already holds the bcrypt hash.
func (s *Store) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, database.Rebind(s.dialect,
		`INSERT INTO users (email, name, password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`),
		u.Email, u.Name, u.Password, now, now,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// ByEmail returns the user including the password hash.
func (s *Store) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.one(ctx, `WHERE email = ?`, email)
}

func (s *Store) ByID(ctx context.Context, id int64) (*models.User, error) {
	return s.one(ctx, `WHERE id = ?`, id)
}

func (s *Store) one(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var u models.User
	var created, updated sql.NullTime
	err := s.db.QueryRowContext(ctx, database.Rebind(s.dialect,
		`SELECT id, email, name, password, created_at, updated_at FROM users `+where), arg,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Password, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = created.Time, updated.Time
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
