// Package sqlite implements the repository interfaces on SQLite.
//
// WHY SQLITE?
// The whole app shares one small database — a handful of users, a food
// journal that grows by a few rows per meal. An embedded single-file
// database needs no server and keeps deployment to "copy the binary".
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 needs CGo and a C compiler; modernc.org/sqlite is a pure
// Go translation of SQLite, so cross-compilation and ":memory:" test
// databases work everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init().
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway test database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, not a pool. PRAGMAs apply per connection, and with the
	// pure-Go driver every ":memory:" connection is a *separate* database —
	// a second pooled connection would see no tables and no foreign keys.
	// SQLite only ever allows one writer, so this costs nothing.
	conn.SetMaxOpenConns(1)

	// Ping forces a real connection so a bad path surfaces here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets concurrent reads proceed while a write is in flight. Default
	// SQLite locks the whole file for the duration of every write, which
	// shows up as "database is locked" errors under a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default for backwards compatibility. We want
	// the users → food_journal cascade to actually fire.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New — it
// flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the two tables. CREATE TABLE IF NOT EXISTS keeps this
// idempotent; for this schema size a migration tracker would be overkill.
//
// Preference columns (allergens, dietary_restrictions, favorites) hold JSON
// arrays as TEXT. SQLite has no array type and these lists are only ever
// read and written whole; the Go layer validates them against the fixed
// vocabularies before anything reaches a column.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                   TEXT PRIMARY KEY,
			email                TEXT NOT NULL UNIQUE,
			home_dining_hall     TEXT NOT NULL DEFAULT '',
			allergens            TEXT NOT NULL DEFAULT '[]',
			dietary_restrictions TEXT NOT NULL DEFAULT '[]',
			favorites            TEXT NOT NULL DEFAULT '[]',
			created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Nutrition columns are the frozen snapshot captured at log time. The
	// cascade means deleting a user takes their journal with them.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS food_journal (
			entry_id    TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date        TEXT NOT NULL,
			meal_type   TEXT NOT NULL,
			food_item   TEXT NOT NULL,
			dining_hall TEXT NOT NULL DEFAULT '',
			notes       TEXT NOT NULL DEFAULT '',
			calories    REAL NOT NULL DEFAULT 0,
			protein     REAL NOT NULL DEFAULT 0,
			carbs       REAL NOT NULL DEFAULT 0,
			fat         REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_food_journal_user_date
			ON food_journal(user_id, date);
	`)
	if err != nil {
		return fmt.Errorf("creating food_journal table: %w", err)
	}

	return nil
}
