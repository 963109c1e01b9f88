package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dealgrove/dealgrove/internal/domain"
)

// ─── Account Ledger Operations ──────────────────────────────────────────────

// CreateAccount inserts a fresh account with the given starting grant.
// Returns domain.ErrAccountExists if the identity is already registered.
func (db *DB) CreateAccount(ctx context.Context, identity string, grant int64) (domain.Account, error) {
	now := time.Now().UTC()
	res, err := db.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO accounts (identity, reputation, created_at)
		VALUES (?, ?, ?)
	`, identity, grant, now.UnixNano())
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account %s: %w", identity, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account %s: %w", identity, err)
	}
	if rows == 0 {
		return domain.Account{}, domain.ErrAccountExists
	}
	return domain.Account{Identity: identity, Reputation: grant, CreatedAt: now}, nil
}

// GetAccount loads an account outside any transaction.
func (db *DB) GetAccount(ctx context.Context, identity string) (domain.Account, error) {
	return scanAccount(db.db.QueryRowContext(ctx, `
		SELECT identity, reputation, created_at FROM accounts WHERE identity = ?
	`, identity), identity)
}

// DebitIfSufficient debits amount from the account inside the caller's
// transaction. The balance check and the write are one conditional UPDATE,
// so a committed debit can never push the balance negative regardless of
// interleaving. Returns domain.ErrInsufficientReputation (or
// domain.ErrAccountNotFound) without mutating when the guard fails.
// It performs no commit — that is the coordinator's job.
func (db *DB) DebitIfSufficient(ctx context.Context, tx *sql.Tx, identity string, amount int64) (domain.Account, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET reputation = reputation - ?
		WHERE identity = ? AND reputation >= ?
	`, amount, identity, amount)
	if err != nil {
		return domain.Account{}, fmt.Errorf("debit account %s: %w", identity, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Account{}, fmt.Errorf("debit account %s: %w", identity, err)
	}
	if rows == 0 {
		// Guard failed — distinguish a missing account from a short balance.
		var exists int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM accounts WHERE identity = ?
		`, identity).Scan(&exists); err != nil {
			return domain.Account{}, fmt.Errorf("debit account %s: %w", identity, err)
		}
		if exists == 0 {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, domain.ErrInsufficientReputation
	}

	return scanAccount(tx.QueryRowContext(ctx, `
		SELECT identity, reputation, created_at FROM accounts WHERE identity = ?
	`, identity), identity)
}

func scanAccount(row *sql.Row, identity string) (domain.Account, error) {
	var a domain.Account
	var createdNanos int64
	err := row.Scan(&a.Identity, &a.Reputation, &createdNanos)
	if err == sql.ErrNoRows {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("load account %s: %w", identity, err)
	}
	a.CreatedAt = time.Unix(0, createdNanos).UTC()
	return a, nil
}
