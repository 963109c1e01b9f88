// Package sqlite implements the persistent store for the coupon economy:
// the account ledger, the coupon catalog, and the vote journal.
//
// All cross-entity mutation happens inside a single transaction owned by
// the caller (the economy coordinator). Ledger, catalog, and journal
// operations that mutate state take a *sql.Tx and never commit on their
// own; read-only queries run against the pooled handle directly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle for the dealgrove store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the store at dir/dealgrove.db and applies the
// schema migrations.
//
// The DSN enables WAL for concurrent readers, a busy timeout so writers
// queue instead of failing, foreign keys so a vote can never reference a
// missing coupon, and immediate transactions so every unit of work takes
// the write lock up front — the balance re-check inside a transaction
// therefore reads the value it is about to overwrite.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := filepath.Join(dir, "dealgrove.db") +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// spurious SQLITE_BUSY between pooled connections of this process.
	handle.SetMaxOpenConns(1)

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// Begin starts the one transaction a mutating use case is allowed to hold.
// Transactions are never nested.
func (db *DB) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
// Timestamps are stored as Unix nanoseconds so the ranked-listing tiebreak
// is a plain integer compare.
func Migrations() []string {
	return []string{
		// Account ledger
		`CREATE TABLE IF NOT EXISTS accounts (
			identity   TEXT PRIMARY KEY,
			reputation INTEGER NOT NULL CHECK (reputation >= 0),
			created_at INTEGER NOT NULL
		)`,

		// Coupon catalog
		`CREATE TABLE IF NOT EXISTS coupons (
			id          TEXT PRIMARY KEY,
			owner       TEXT NOT NULL REFERENCES accounts(identity),
			code        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			expiry      INTEGER,
			domain      TEXT NOT NULL,
			score       INTEGER NOT NULL DEFAULT 0,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_domain_score ON coupons(domain, score DESC)`,

		// Vote journal — append-only, one row per cast vote.
		// No (voter, coupon_id) uniqueness: voting again is allowed and
		// costs reputation each time.
		`CREATE TABLE IF NOT EXISTS votes (
			id        TEXT PRIMARY KEY,
			voter     TEXT NOT NULL REFERENCES accounts(identity),
			coupon_id TEXT NOT NULL REFERENCES coupons(id),
			up        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_coupon ON votes(coupon_id)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
