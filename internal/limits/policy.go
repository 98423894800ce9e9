package limits

import (
	"context"
	"fmt"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

// Policy reads. Each is an independent round trip against the latest
// completed ledger state; no cross-read atomicity is needed.

// MayPost reports whether the user has a free post left in the current
// window or a positive token balance.
func (e *Engine) MayPost(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrMissingUserID
	}

	used, err := e.ledger.FreePostsUsed(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to read post counter: %w", err)
	}
	if e.cfg.FreePostQuota-used > 0 {
		return true, nil
	}

	balance, err := e.ledger.TokenBalance(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to read token balance: %w", err)
	}
	return balance > 0, nil
}

// MayVote reports whether the user may vote on the target. The boundary is
// inclusive: a user exactly at the limit may still cast one more vote, the
// lockout only arms past it.
func (e *Engine) MayVote(ctx context.Context, userID, targetID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrMissingUserID
	}
	if targetID == "" {
		return false, domain.ErrMissingTargetID
	}

	count, err := e.ledger.VoteCount(ctx, userID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to read vote count: %w", err)
	}
	return count <= e.cfg.MaxVotes, nil
}

// GetQuota returns the user's current quota snapshot. A user with no record
// has the full free-post allowance and zero tokens.
func (e *Engine) GetQuota(ctx context.Context, userID string) (domain.Quota, error) {
	if userID == "" {
		return domain.Quota{}, domain.ErrMissingUserID
	}

	used, err := e.ledger.FreePostsUsed(ctx, userID)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("failed to read post counter: %w", err)
	}

	balance, err := e.ledger.TokenBalance(ctx, userID)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("failed to read token balance: %w", err)
	}

	return domain.Quota{
		TokensRemaining:    balance,
		FreePostsRemaining: e.cfg.FreePostQuota - used,
	}, nil
}
