package domain

// ─── Economy Policy ─────────────────────────────────────────────────────────
// Every reputation cost and threshold lives here as an explicit policy
// value. All arithmetic is exact integer arithmetic.

const (
	// DefaultInitialGrant is the reputation balance a fresh account starts with.
	DefaultInitialGrant = 5

	// DefaultMinPublishReputation is the standing required to publish a coupon.
	// Publishing is gated on standing AND paying the publish cost; the two are
	// independently configurable.
	DefaultMinPublishReputation = 10

	// DefaultPublishCost is the reputation debited for publishing a coupon.
	DefaultPublishCost = 5

	// DefaultVoteCost is the reputation debited for casting a vote.
	DefaultVoteCost = 1

	// DefaultListLimit caps the ranked coupon listing.
	DefaultListLimit = 20
)

// Policy holds the configurable economy constants.
type Policy struct {
	InitialGrant         int64
	MinPublishReputation int64
	PublishCost          int64
	VoteCost             int64
	ListLimit            int
}

// DefaultPolicy returns the stock economy policy.
func DefaultPolicy() Policy {
	return Policy{
		InitialGrant:         DefaultInitialGrant,
		MinPublishReputation: DefaultMinPublishReputation,
		PublishCost:          DefaultPublishCost,
		VoteCost:             DefaultVoteCost,
		ListLimit:            DefaultListLimit,
	}
}
