package domain

import (
	"context"
	"time"
)

// LimitPolicy holds the accounting parameters a Ledger enforces.
type LimitPolicy struct {
	// FreePostQuota is the number of posts per window that cost nothing.
	FreePostQuota int64
	// TokenCost is the number of reward tokens a post beyond the free
	// quota costs.
	TokenCost int64
	// MaxVotes is the number of votes a user may cast on a single target
	// before the spam lockout arms.
	MaxVotes int64
	// VoteCooldown is the lockout applied on the first excess vote.
	VoteCooldown time.Duration
	// VoteBan is the lockout applied on repeated excess while a cooldown
	// is still running.
	VoteBan time.Duration
}

// ChargeResult is the outcome of charging a user for one post.
type ChargeResult struct {
	// FreePostsRemaining is quota minus posts used in the current window.
	// It goes negative once the user posts on tokens.
	FreePostsRemaining int64
	// TokenBalance is the reward token balance after the charge.
	TokenBalance int64
}

// Quota is the user-visible quota snapshot.
type Quota struct {
	TokensRemaining    int64 `json:"tokens_remaining"`
	FreePostsRemaining int64 `json:"free_posts_remaining"`
}

// Ledger is the atomic quota store. Each mutating method is one indivisible
// round trip: two concurrent calls for the same user serialize completely,
// neither acts on the other's intermediate values.
type Ledger interface {
	// ChargePost consumes one post. The post counter is created with
	// windowTTL if absent; a token is only spent once the free quota for
	// the window is used up.
	ChargePost(ctx context.Context, userID string, windowTTL time.Duration) (ChargeResult, error)

	// AdjustTokens adds delta (positive, negative, or zero) to the user's
	// token balance and returns the new balance. The balance may go
	// negative.
	AdjustTokens(ctx context.Context, userID string, delta int64) (int64, error)

	// AwardOnce grants gain tokens to posterID for targetID at most once:
	// the grant and the per-target granted flag are set in one atomic
	// step, so redeliveries and repeated threshold events never
	// double-award. Reports whether the award was granted by this call.
	AwardOnce(ctx context.Context, posterID, targetID string, gain int64) (granted bool, balance int64, err error)

	// RevokeOnce takes gain tokens back from posterID for targetID, but
	// only if a prior AwardOnce granted them. Reports whether the
	// revocation happened.
	RevokeOnce(ctx context.Context, posterID, targetID string, gain int64) (revoked bool, balance int64, err error)

	// RecordVote counts one vote by voterID on targetID and applies the
	// spam escalation policy inside the same atomic step. Returns the new
	// count.
	RecordVote(ctx context.Context, voterID, targetID string) (int64, error)

	// FreePostsUsed returns the post counter for the current window.
	// A user with no record has used zero posts.
	FreePostsUsed(ctx context.Context, userID string) (int64, error)

	// TokenBalance returns the reward token balance. A user with no
	// record has a balance of zero.
	TokenBalance(ctx context.Context, userID string) (int64, error)

	// VoteCount returns the spam counter for voterID on targetID.
	VoteCount(ctx context.Context, voterID, targetID string) (int64, error)
}

// NotifyOptions carries optional notification parameters.
type NotifyOptions struct {
	// ReplyTo references the message the notification replies to, if any.
	ReplyTo string
}

// Notifier delivers a text message to a user via the external messenger.
// Delivery failures are never a reason to roll back a ledger mutation.
type Notifier interface {
	Notify(ctx context.Context, userID, text string, opts NotifyOptions) error
}
