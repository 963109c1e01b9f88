package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// Store-level failures are wrapped separately with operation context and
// never map onto these sentinels.

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")

	// Coupon errors
	ErrCouponNotFound = errors.New("coupon not found")

	// Economy errors
	ErrInsufficientReputation = errors.New("insufficient reputation")
)
