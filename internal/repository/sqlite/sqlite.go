// Package sqlite implements the repository interfaces on an embedded SQLite database.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the server builds without a C
// toolchain. Use ":memory:" for tests.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
//   - "data/2share.db" → file-based database
//   - ":memory:"       → in-memory database, lost on close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and every ":memory:" connection would be a
	// separate database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Profile columns were added after the first users table shipped.
	if err := db.addColumnIfNotExists("users", "bio", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding bio to users: %w", err)
	}
	if err := db.addColumnIfNotExists("users", "social_links", "TEXT NOT NULL DEFAULT '[]'"); err != nil {
		return fmt.Errorf("adding social_links to users: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS portfolios (
			id              TEXT PRIMARY KEY,
			slug            TEXT NOT NULL UNIQUE,
			owner_id        TEXT NOT NULL REFERENCES users(id),
			title           TEXT NOT NULL DEFAULT '',
			bio             TEXT NOT NULL DEFAULT '',
			blocks          TEXT NOT NULL DEFAULT '[]',
			avatar_url      TEXT NOT NULL DEFAULT '',
			social_links    TEXT NOT NULL DEFAULT '[]',
			design_settings TEXT NOT NULL DEFAULT '{}',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_portfolios_owner_id ON portfolios(owner_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating portfolios table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS link_clicks (
			portfolio_id TEXT NOT NULL REFERENCES portfolios(id),
			link_id      TEXT NOT NULL,
			clicks       INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (portfolio_id, link_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating link_clicks table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS plans (
			user_id           TEXT PRIMARY KEY REFERENCES users(id),
			name              TEXT NOT NULL,
			status            TEXT NOT NULL,
			max_social_links  INTEGER,
			max_business_card INTEGER,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating plans table: %w", err)
	}

	return nil
}

// addColumnIfNotExists makes ALTER TABLE ADD COLUMN idempotent.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
