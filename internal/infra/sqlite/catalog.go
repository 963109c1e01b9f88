package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dealgrove/dealgrove/internal/domain"
)

// ─── Coupon Catalog Operations ──────────────────────────────────────────────

// PublishCoupon inserts a coupon inside the caller's transaction.
// The coupon arrives fully formed (id minted, score 0); reputation gating
// happened before this call — the catalog does not check balances.
func (db *DB) PublishCoupon(ctx context.Context, tx *sql.Tx, c domain.Coupon) error {
	var expiry *int64
	if c.Expiry != nil {
		n := c.Expiry.UnixNano()
		expiry = &n
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO coupons (id, owner, code, description, expiry, domain, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Owner, c.Code, c.Description, expiry, c.Domain, c.Score, c.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("publish coupon %s: %w", c.ID, err)
	}
	return nil
}

// GetCoupon loads a coupon outside any transaction.
func (db *DB) GetCoupon(ctx context.Context, id string) (domain.Coupon, error) {
	return scanCoupon(db.db.QueryRowContext(ctx, `
		SELECT id, owner, code, description, expiry, domain, score, created_at
		FROM coupons WHERE id = ?
	`, id), id)
}

// RankedByDomain returns the non-expired coupons of a domain, best score
// first. Ties break on creation time descending, then id descending, so
// repeated reads with no intervening writes return the same order.
// Read-only: never runs inside a transaction and never takes a lock; it
// may observe scores slightly stale relative to in-flight votes.
func (db *DB) RankedByDomain(ctx context.Context, dom string, limit int, now time.Time) ([]domain.Coupon, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, owner, code, description, expiry, domain, score, created_at
		FROM coupons
		WHERE domain = ? AND (expiry IS NULL OR expiry > ?)
		ORDER BY score DESC, created_at DESC, id DESC
		LIMIT ?
	`, dom, now.UnixNano(), limit)
	if err != nil {
		return nil, fmt.Errorf("list coupons for domain %s: %w", dom, err)
	}
	defer rows.Close()

	var result []domain.Coupon
	for rows.Next() {
		c, err := scanCouponRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list coupons for domain %s: %w", dom, err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// AdjustScore adds delta to a coupon's score inside the caller's
// transaction and returns the updated coupon.
func (db *DB) AdjustScore(ctx context.Context, tx *sql.Tx, id string, delta int64) (domain.Coupon, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE coupons SET score = score + ? WHERE id = ?
	`, delta, id)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("adjust score of coupon %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("adjust score of coupon %s: %w", id, err)
	}
	if rows == 0 {
		return domain.Coupon{}, domain.ErrCouponNotFound
	}

	return scanCoupon(tx.QueryRowContext(ctx, `
		SELECT id, owner, code, description, expiry, domain, score, created_at
		FROM coupons WHERE id = ?
	`, id), id)
}

// ─── Row Scanning ───────────────────────────────────────────────────────────

type couponScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row *sql.Row, id string) (domain.Coupon, error) {
	c, err := scanCouponRow(row)
	if err == sql.ErrNoRows {
		return domain.Coupon{}, domain.ErrCouponNotFound
	}
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("load coupon %s: %w", id, err)
	}
	return c, nil
}

func scanCouponRow(s couponScanner) (domain.Coupon, error) {
	var c domain.Coupon
	var expiry sql.NullInt64
	var createdNanos int64
	if err := s.Scan(&c.ID, &c.Owner, &c.Code, &c.Description, &expiry, &c.Domain, &c.Score, &createdNanos); err != nil {
		return domain.Coupon{}, err
	}
	if expiry.Valid {
		t := time.Unix(0, expiry.Int64).UTC()
		c.Expiry = &t
	}
	c.CreatedAt = time.Unix(0, createdNanos).UTC()
	return c, nil
}
