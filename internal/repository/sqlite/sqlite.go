// Package sqlite implements the repository interfaces on SQLite.
//
// The prototype this service grew out of kept everything in process memory
// and lost it on restart; this backend is the persistent option. It is also
// where checkout stops being a gentleman's agreement: CommitCheckout runs in
// a real transaction that re-verifies availability row by row, so a partial
// failure rolls back instead of leaving products half-sold.
//
// modernc.org/sqlite is a pure Go driver — no CGo, cross-compiles anywhere,
// and ":memory:" gives tests a throwaway database.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mkarim/marketplace/internal/repository"
)

// DB wraps the connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB

	// sessionTTL expires sessions this long after creation. Zero disables
	// expiry (the default, matching the original token semantics).
	sessionTTL time.Duration
}

var _ repository.Store = (*DB)(nil)

// Option configures the DB.
type Option func(*DB)

// WithSessionTTL turns on session expiry. Opt-in only; see DESIGN.md.
func WithSessionTTL(ttl time.Duration) Option {
	return func(db *DB) { db.sessionTTL = ttl }
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write (e.g. a checkout commit) is in
	// flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// Prices and totals are stored as TEXT: decimal.Decimal round-trips through
// its driver.Valuer/sql.Scanner implementations without ever becoming a
// float.
//
// Note what is deliberately NOT constrained: cart_items.product_id has no
// foreign key, because cart lines are allowed to outlive their product (the
// cart view drops them at read time, storage keeps them).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			username   TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name  TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			address    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       TEXT NOT NULL,
			category    TEXT NOT NULL,
			condition   TEXT NOT NULL DEFAULT 'Good',
			seller_id   TEXT NOT NULL,
			image_url   TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'available',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_products_seller_id ON products(seller_id);
		CREATE INDEX IF NOT EXISTS idx_products_category  ON products(category);

		CREATE TABLE IF NOT EXISTS cart_items (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity   INTEGER NOT NULL CHECK (quantity >= 1),
			added_at   DATETIME NOT NULL,
			UNIQUE (user_id, product_id)
		);
		CREATE INDEX IF NOT EXISTS idx_cart_items_user_id ON cart_items(user_id);

		CREATE TABLE IF NOT EXISTS purchases (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			total         TEXT NOT NULL,
			purchase_date DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_purchases_user_id ON purchases(user_id);

		CREATE TABLE IF NOT EXISTS purchase_items (
			purchase_id TEXT NOT NULL REFERENCES purchases(id),
			position    INTEGER NOT NULL,
			product_id  TEXT NOT NULL,
			title       TEXT NOT NULL,
			price       TEXT NOT NULL,
			quantity    INTEGER NOT NULL,
			seller_id   TEXT NOT NULL,
			category    TEXT NOT NULL,
			PRIMARY KEY (purchase_id, position)
		);

		CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			expires_at DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
