// Package testdb opens throwaway in-memory SQLite databases carrying the
// same tables as the Postgres migrations, for store tests.
package testdb

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE categories (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	display_name TEXT NOT NULL,
	sort_order   INTEGER NOT NULL DEFAULT 0,
	variants     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE papers (
	id          TEXT PRIMARY KEY,
	category_id TEXT NOT NULL,
	year        TEXT NOT NULL,
	title       TEXT NOT NULL,
	is_locked   BOOLEAN NOT NULL DEFAULT 0,
	total_marks INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP
);

CREATE TABLE questions (
	id              TEXT PRIMARY KEY,
	paper_id        TEXT NOT NULL,
	question_number TEXT NOT NULL,
	content         TEXT NOT NULL,
	marks           INTEGER NOT NULL DEFAULT 0,
	sort_order      INTEGER NOT NULL,
	UNIQUE(paper_id, sort_order)
);

CREATE TABLE answers (
	id          TEXT PRIMARY KEY,
	question_id TEXT NOT NULL,
	content     TEXT NOT NULL,
	step_number INTEGER NOT NULL,
	UNIQUE(question_id, step_number)
);

CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	email      TEXT UNIQUE NOT NULL,
	name       TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
);

CREATE TABLE user_favorites (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL,
	question_id TEXT NOT NULL,
	created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, question_id)
);

CREATE TABLE user_question_progress (
	user_id      INTEGER NOT NULL,
	question_id  TEXT NOT NULL,
	completed_at TIMESTAMP,
	PRIMARY KEY (user_id, question_id)
);
`

// Open returns an in-memory database with the schema applied. It is closed
// when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
