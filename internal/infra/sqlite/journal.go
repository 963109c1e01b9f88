package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dealgrove/dealgrove/internal/domain"
)

// ─── Vote Journal Operations ────────────────────────────────────────────────

// AppendVote inserts an immutable vote record inside the caller's
// transaction. The foreign keys guarantee the voter and the target coupon
// exist at vote time; the journal does not check for prior votes by the
// same voter on the same coupon.
func (db *DB) AppendVote(ctx context.Context, tx *sql.Tx, v domain.Vote) error {
	up := 0
	if v.Up {
		up = 1
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO votes (id, voter, coupon_id, up)
		VALUES (?, ?, ?, ?)
	`, v.ID, v.Voter, v.CouponID, up)
	if err != nil {
		return fmt.Errorf("journal vote %s on coupon %s: %w", v.ID, v.CouponID, err)
	}
	return nil
}

// CouponTally counts journaled up and down votes for a coupon.
// Read-only; the difference always equals the coupon's score because both
// are written in the same atomic unit.
func (db *DB) CouponTally(ctx context.Context, couponID string) (ups, downs int64, err error) {
	err = db.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN up = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN up = 0 THEN 1 ELSE 0 END), 0)
		FROM votes WHERE coupon_id = ?
	`, couponID).Scan(&ups, &downs)
	if err != nil && err != sql.ErrNoRows {
		return 0, 0, fmt.Errorf("tally votes for coupon %s: %w", couponID, err)
	}
	return ups, downs, nil
}
