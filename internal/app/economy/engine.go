// Package economy implements the transaction coordinator for the coupon
// marketplace: the two mutating use cases (publish a coupon, cast a vote)
// composed from ledger, catalog, and journal operations into all-or-nothing
// units.
//
// The coordinator is the only component that begins a transaction. Each use
// case holds exactly one transaction, never two, never nested:
//
//	publish: resolve account → standing check → begin → debit → insert → commit
//	vote:    resolve voter → cost check → resolve coupon → begin → debit
//	         → journal → score ±1 → commit
//
// Any failure before commit rolls the whole unit back; nothing is visible
// until commit, so a cancelled or aborted request needs no compensation.
package economy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrove/dealgrove/internal/domain"
	"github.com/dealgrove/dealgrove/internal/infra/observability"
	"github.com/dealgrove/dealgrove/internal/infra/sqlite"
)

// Config controls the economy engine.
type Config struct {
	Policy domain.Policy
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{Policy: domain.DefaultPolicy()}
}

// Engine coordinates the coupon economy over the shared store.
// It holds no mutable state of its own beyond the pooled store handle, so
// one Engine serves any number of concurrent request tasks.
type Engine struct {
	config Config
	db     *sqlite.DB

	// Injectable clock for testing.
	now func() time.Time

	// Test hooks: run inside the open transaction, between the debit and
	// the writes that follow it. A non-nil error forces a rollback.
	afterPublishDebit func() error
	afterVoteJournal  func() error
}

// New creates an economy engine over the given store.
func New(cfg Config, db *sqlite.DB) *Engine {
	return &Engine{
		config: cfg,
		db:     db,
		now:    time.Now,
	}
}

// Policy returns the active economy policy.
func (e *Engine) Policy() domain.Policy {
	return e.config.Policy
}

// ─── Accounts ───────────────────────────────────────────────────────────────

// CreateAccount mints a fresh opaque identity and opens its ledger entry
// with the policy's initial grant.
func (e *Engine) CreateAccount(ctx context.Context) (domain.Account, error) {
	identity := uuid.NewString()
	acct, err := e.db.CreateAccount(ctx, identity, e.config.Policy.InitialGrant)
	if err != nil {
		return domain.Account{}, err
	}
	observability.AccountsCreated.Inc()
	log.Printf("[economy] account %s created with grant %d", acct.Identity, acct.Reputation)
	return acct, nil
}

// Account resolves an identity against the ledger.
// Incoming identities are untrusted input — every flow resolves them here
// before doing anything else.
func (e *Engine) Account(ctx context.Context, identity string) (domain.Account, error) {
	return e.db.GetAccount(ctx, identity)
}

// ─── Publish Coupon ─────────────────────────────────────────────────────────

// PublishCoupon publishes a coupon for the given identity, debiting the
// publish cost in the same atomic unit as the catalog insert.
//
// Standing (MinPublishReputation) and cost (PublishCost) are independent
// gates: the account must hold at least the minimum standing, and if it
// does, it pays the cost. The standing check runs before any transaction
// is opened; the debit re-validates the balance inside the transaction, so
// a concurrent spend between the two cannot push the balance negative —
// the later request is refused instead.
func (e *Engine) PublishCoupon(ctx context.Context, identity string, draft domain.CouponDraft) (domain.CouponPublic, error) {
	acct, err := e.db.GetAccount(ctx, identity)
	if err != nil {
		return domain.CouponPublic{}, err
	}
	if !acct.CanAfford(e.config.Policy.MinPublishReputation) {
		observability.OperationsRejected.WithLabelValues("publish").Inc()
		return domain.CouponPublic{}, domain.ErrInsufficientReputation
	}

	coupon := domain.Coupon{
		ID:          uuid.NewString(),
		Owner:       acct.Identity,
		Code:        draft.Code,
		Description: draft.Description,
		Expiry:      draft.Expiry,
		Domain:      draft.Domain,
		Score:       0,
		CreatedAt:   e.now().UTC(),
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		observability.TransactionsAborted.WithLabelValues("publish").Inc()
		return domain.CouponPublic{}, err
	}
	defer tx.Rollback()

	if _, err := e.db.DebitIfSufficient(ctx, tx, identity, e.config.Policy.PublishCost); err != nil {
		if errors.Is(err, domain.ErrInsufficientReputation) {
			observability.OperationsRejected.WithLabelValues("publish").Inc()
			return domain.CouponPublic{}, err
		}
		observability.TransactionsAborted.WithLabelValues("publish").Inc()
		return domain.CouponPublic{}, err
	}

	if e.afterPublishDebit != nil {
		if err := e.afterPublishDebit(); err != nil {
			observability.TransactionsAborted.WithLabelValues("publish").Inc()
			return domain.CouponPublic{}, fmt.Errorf("publish coupon %s: %w", coupon.ID, err)
		}
	}

	if err := e.db.PublishCoupon(ctx, tx, coupon); err != nil {
		observability.TransactionsAborted.WithLabelValues("publish").Inc()
		return domain.CouponPublic{}, err
	}

	if err := tx.Commit(); err != nil {
		observability.TransactionsAborted.WithLabelValues("publish").Inc()
		return domain.CouponPublic{}, fmt.Errorf("commit publish of coupon %s: %w", coupon.ID, err)
	}

	observability.CouponsPublished.Inc()
	observability.ReputationSpent.Add(float64(e.config.Policy.PublishCost))
	log.Printf("[economy] coupon %s published in domain %s by %s", coupon.ID, coupon.Domain, identity)
	return coupon.Public(), nil
}

// ─── Cast Vote ──────────────────────────────────────────────────────────────

// CastVote journals a vote by the given identity on the given coupon,
// debiting the vote cost and shifting the coupon's score by ±1, all in one
// atomic unit. Voting again on the same coupon is allowed and costs again.
func (e *Engine) CastVote(ctx context.Context, identity, couponID string, up bool) (domain.CouponPublic, error) {
	acct, err := e.db.GetAccount(ctx, identity)
	if err != nil {
		return domain.CouponPublic{}, err
	}
	if !acct.CanAfford(e.config.Policy.VoteCost) {
		observability.OperationsRejected.WithLabelValues("vote").Inc()
		return domain.CouponPublic{}, domain.ErrInsufficientReputation
	}
	if _, err := e.db.GetCoupon(ctx, couponID); err != nil {
		return domain.CouponPublic{}, err
	}

	vote := domain.Vote{
		ID:       uuid.NewString(),
		Voter:    acct.Identity,
		CouponID: couponID,
		Up:       up,
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		observability.TransactionsAborted.WithLabelValues("vote").Inc()
		return domain.CouponPublic{}, err
	}
	defer tx.Rollback()

	if _, err := e.db.DebitIfSufficient(ctx, tx, identity, e.config.Policy.VoteCost); err != nil {
		if errors.Is(err, domain.ErrInsufficientReputation) {
			observability.OperationsRejected.WithLabelValues("vote").Inc()
			return domain.CouponPublic{}, err
		}
		observability.TransactionsAborted.WithLabelValues("vote").Inc()
		return domain.CouponPublic{}, err
	}

	if err := e.db.AppendVote(ctx, tx, vote); err != nil {
		observability.TransactionsAborted.WithLabelValues("vote").Inc()
		return domain.CouponPublic{}, err
	}

	if e.afterVoteJournal != nil {
		if err := e.afterVoteJournal(); err != nil {
			observability.TransactionsAborted.WithLabelValues("vote").Inc()
			return domain.CouponPublic{}, fmt.Errorf("cast vote %s: %w", vote.ID, err)
		}
	}

	coupon, err := e.db.AdjustScore(ctx, tx, couponID, vote.Delta())
	if err != nil {
		observability.TransactionsAborted.WithLabelValues("vote").Inc()
		return domain.CouponPublic{}, err
	}

	if err := tx.Commit(); err != nil {
		observability.TransactionsAborted.WithLabelValues("vote").Inc()
		return domain.CouponPublic{}, fmt.Errorf("commit vote %s on coupon %s: %w", vote.ID, couponID, err)
	}

	direction := "down"
	if up {
		direction = "up"
	}
	observability.VotesCast.WithLabelValues(direction).Inc()
	observability.ReputationSpent.Add(float64(e.config.Policy.VoteCost))
	log.Printf("[economy] vote %s on coupon %s by %s, score now %d", direction, couponID, identity, coupon.Score)
	return coupon.Public(), nil
}

// ─── Read-Only Queries ──────────────────────────────────────────────────────

// ListCoupons returns the ranked, non-expired coupons of a domain.
// A limit of 0 or less falls back to the policy default; the policy
// default is also the cap.
func (e *Engine) ListCoupons(ctx context.Context, dom string, limit int) ([]domain.CouponPublic, error) {
	if limit <= 0 || limit > e.config.Policy.ListLimit {
		limit = e.config.Policy.ListLimit
	}
	coupons, err := e.db.RankedByDomain(ctx, dom, limit, e.now())
	if err != nil {
		return nil, err
	}
	out := make([]domain.CouponPublic, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, c.Public())
	}
	return out, nil
}

// CouponDetail returns one coupon's public projection together with its
// journaled vote tally.
func (e *Engine) CouponDetail(ctx context.Context, couponID string) (domain.CouponPublic, int64, int64, error) {
	coupon, err := e.db.GetCoupon(ctx, couponID)
	if err != nil {
		return domain.CouponPublic{}, 0, 0, err
	}
	ups, downs, err := e.db.CouponTally(ctx, couponID)
	if err != nil {
		return domain.CouponPublic{}, 0, 0, err
	}
	return coupon.Public(), ups, downs, nil
}
