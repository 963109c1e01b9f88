package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealgrove/dealgrove/internal/domain"
)

// publishTestCoupon inserts a coupon in its own transaction.
func publishTestCoupon(t *testing.T, db *DB, c domain.Coupon) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := db.PublishCoupon(ctx, tx, c); err != nil {
		tx.Rollback()
		t.Fatalf("PublishCoupon() error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
}

func testCoupon(id, owner, dom string, score int64, createdAt time.Time) domain.Coupon {
	return domain.Coupon{
		ID:          id,
		Owner:       owner,
		Code:        "CODE-" + id,
		Description: "test coupon " + id,
		Domain:      dom,
		Score:       score,
		CreatedAt:   createdAt,
	}
}

func TestPublishAndGetCoupon(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.CreateAccount(ctx, "alice", 10)

	expiry := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	c := testCoupon("c1", "alice", "food", 0, time.Now().UTC())
	c.Expiry = &expiry
	publishTestCoupon(t, db, c)

	got, err := db.GetCoupon(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCoupon() error: %v", err)
	}
	if got.Owner != "alice" {
		t.Errorf("Owner = %q, want %q", got.Owner, "alice")
	}
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if got.Expiry == nil || !got.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", got.Expiry, expiry)
	}
}

func TestGetCoupon_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetCoupon(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCouponNotFound) {
		t.Errorf("GetCoupon(missing) error = %v, want ErrCouponNotFound", err)
	}
}

func TestPublishCoupon_UnknownOwnerRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx, _ := db.Begin(ctx)
	defer tx.Rollback()
	err := db.PublishCoupon(ctx, tx, testCoupon("c1", "ghost", "food", 0, time.Now()))
	if err == nil {
		t.Fatal("publishing with an unregistered owner should fail the foreign key")
	}
}

func TestRankedByDomain_OrderAndTiebreak(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.CreateAccount(ctx, "alice", 10)

	base := time.Now().UTC()
	// A and B tie on score; A is newer so it ranks first.
	publishTestCoupon(t, db, testCoupon("a", "alice", "food", 5, base.Add(2*time.Minute)))
	publishTestCoupon(t, db, testCoupon("b", "alice", "food", 5, base.Add(time.Minute)))
	publishTestCoupon(t, db, testCoupon("c", "alice", "food", 3, base.Add(3*time.Minute)))
	publishTestCoupon(t, db, testCoupon("other", "alice", "travel", 9, base))

	ranked, err := db.RankedByDomain(ctx, "food", 20, time.Now())
	if err != nil {
		t.Fatalf("RankedByDomain() error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("RankedByDomain() returned %d coupons, want 3", len(ranked))
	}
	wantOrder := []string{"a", "b", "c"}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].ID, want)
		}
	}

	// Repeated reads with no intervening writes return the same order.
	again, err := db.RankedByDomain(ctx, "food", 20, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	for i := range ranked {
		if again[i].ID != ranked[i].ID {
			t.Errorf("order not stable at %d: %q vs %q", i, again[i].ID, ranked[i].ID)
		}
	}
}

func TestRankedByDomain_ExcludesExpired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.CreateAccount(ctx, "alice", 10)

	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()

	expired := testCoupon("expired", "alice", "food", 99, time.Now())
	expired.Expiry = &past
	publishTestCoupon(t, db, expired)

	fresh := testCoupon("fresh", "alice", "food", 1, time.Now())
	fresh.Expiry = &future
	publishTestCoupon(t, db, fresh)

	forever := testCoupon("forever", "alice", "food", 0, time.Now())
	publishTestCoupon(t, db, forever)

	ranked, err := db.RankedByDomain(ctx, "food", 20, time.Now())
	if err != nil {
		t.Fatalf("RankedByDomain() error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("RankedByDomain() returned %d coupons, want 2 (expired excluded despite top score)", len(ranked))
	}
	for _, c := range ranked {
		if c.ID == "expired" {
			t.Error("expired coupon must not appear in the listing")
		}
	}
}

func TestRankedByDomain_Limit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.CreateAccount(ctx, "alice", 10)

	base := time.Now().UTC()
	for i, id := range []string{"one", "two", "three"} {
		publishTestCoupon(t, db, testCoupon(id, "alice", "food", int64(i), base.Add(time.Duration(i)*time.Second)))
	}

	ranked, err := db.RankedByDomain(ctx, "food", 2, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 2 {
		t.Errorf("RankedByDomain(limit=2) returned %d coupons", len(ranked))
	}
}

func TestAdjustScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.CreateAccount(ctx, "alice", 10)
	publishTestCoupon(t, db, testCoupon("c1", "alice", "food", 0, time.Now()))

	adjust := func(delta int64) domain.Coupon {
		t.Helper()
		tx, err := db.Begin(ctx)
		if err != nil {
			t.Fatal(err)
		}
		c, err := db.AdjustScore(ctx, tx, "c1", delta)
		if err != nil {
			tx.Rollback()
			t.Fatalf("AdjustScore(%d) error: %v", delta, err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatal(err)
		}
		return c
	}

	if c := adjust(1); c.Score != 1 {
		t.Errorf("Score after +1 = %d, want 1", c.Score)
	}
	if c := adjust(-1); c.Score != 0 {
		t.Errorf("Score after −1 = %d, want 0", c.Score)
	}
	if c := adjust(-1); c.Score != -1 {
		t.Errorf("Score after another −1 = %d, want -1 (scores may go negative)", c.Score)
	}
}

func TestAdjustScore_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx, _ := db.Begin(ctx)
	defer tx.Rollback()
	_, err := db.AdjustScore(ctx, tx, "missing", 1)
	if !errors.Is(err, domain.ErrCouponNotFound) {
		t.Errorf("AdjustScore(missing) error = %v, want ErrCouponNotFound", err)
	}
}

func TestAdjustScore_RollbackDiscardsChange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.CreateAccount(ctx, "alice", 10)
	publishTestCoupon(t, db, testCoupon("c1", "alice", "food", 2, time.Now()))

	tx, _ := db.Begin(ctx)
	if _, err := db.AdjustScore(ctx, tx, "c1", 5); err != nil {
		t.Fatal(err)
	}
	tx.Rollback()

	got, _ := db.GetCoupon(ctx, "c1")
	if got.Score != 2 {
		t.Errorf("Score after rollback = %d, want 2", got.Score)
	}
}
