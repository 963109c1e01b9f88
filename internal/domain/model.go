// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the application — it depends on nothing.
package domain

import "time"

// ─── Account Types ──────────────────────────────────────────────────────────

// Account holds one user's reputation balance.
// Identity is an opaque token minted at creation; the balance is mutated
// only by debits and is never negative after a committed operation.
type Account struct {
	Identity   string    `json:"identity"`
	Reputation int64     `json:"reputation"`
	CreatedAt  time.Time `json:"created_at"`
}

// CanAfford reports whether the account's balance covers the given cost.
func (a Account) CanAfford(cost int64) bool {
	return a.Reputation >= cost
}

// ─── Coupon Types ───────────────────────────────────────────────────────────

// Coupon is a published coupon with its aggregate vote score.
// The score is mutated only during vote processing, in the same atomic
// unit as the vote journal row.
type Coupon struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Expiry      *time.Time `json:"expiry,omitempty"`
	Domain      string     `json:"domain"`
	Score       int64      `json:"score"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether the coupon's expiry is set and not in the future.
func (c Coupon) Expired(now time.Time) bool {
	return c.Expiry != nil && !c.Expiry.After(now)
}

// Public strips the owning identity for external callers.
func (c Coupon) Public() CouponPublic {
	return CouponPublic{
		ID:          c.ID,
		Code:        c.Code,
		Description: c.Description,
		Expiry:      c.Expiry,
		Domain:      c.Domain,
		Score:       c.Score,
		CreatedAt:   c.CreatedAt,
	}
}

// CouponPublic is the caller-facing coupon projection.
// The owner identity never leaves the engine.
type CouponPublic struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Expiry      *time.Time `json:"expiry,omitempty"`
	Domain      string     `json:"domain"`
	Score       int64      `json:"score"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CouponDraft carries the caller-supplied fields of a publish request.
type CouponDraft struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Domain      string     `json:"domain"`
	Expiry      *time.Time `json:"expiry,omitempty"`
}

// ─── Vote Types ─────────────────────────────────────────────────────────────

// Vote is one immutable row in the vote journal.
// Up=true scores +1, Up=false scores −1.
type Vote struct {
	ID       string `json:"id"`
	Voter    string `json:"voter"`
	CouponID string `json:"coupon_id"`
	Up       bool   `json:"up"`
}

// Delta returns the score contribution of this vote.
func (v Vote) Delta() int64 {
	if v.Up {
		return 1
	}
	return -1
}
