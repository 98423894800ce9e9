package limits

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/metrics"
)

// Config holds the reward and quota parameters of the Engine.
type Config struct {
	FreePostQuota       int64
	RewardThreshold     int64
	RewardGain          int64
	ApplicableVoteTypes []string
	NotifyOnReward      bool
	MaxVotes            int64
}

// Engine dispatches post and vote events to the ledger and owns the
// edge-triggered reward logic. It holds no state of its own: the ledger is
// the single source of truth, so multiple instances stay consistent.
type Engine struct {
	ledger     domain.Ledger
	notifier   domain.Notifier
	window     *Window
	cfg        Config
	applicable map[string]struct{}
}

// NewEngine creates an Engine.
func NewEngine(ledger domain.Ledger, notifier domain.Notifier, window *Window, cfg Config) *Engine {
	applicable := make(map[string]struct{}, len(cfg.ApplicableVoteTypes))
	for _, t := range cfg.ApplicableVoteTypes {
		applicable[t] = struct{}{}
	}
	return &Engine{
		ledger:     ledger,
		notifier:   notifier,
		window:     window,
		cfg:        cfg,
		applicable: applicable,
	}
}

var _ domain.Limiter = (*Engine)(nil)

// HandlePost charges one post against the poster's quota and informs the
// user about the new state.
func (e *Engine) HandlePost(ctx context.Context, ev domain.PostIssued) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	result, err := e.ledger.ChargePost(ctx, ev.PosterID, e.window.TTL())
	if err != nil {
		return fmt.Errorf("failed to charge post: %w", err)
	}

	paid := "free"
	if result.FreePostsRemaining < 0 {
		paid = "token"
	}
	metrics.PostsCharged.WithLabelValues(paid).Inc()

	e.notify(ctx, ev.PosterID, chargeText(result))
	return nil
}

// HandleVote counts the vote for spam tracking and awards a reward token to
// the poster when the effective count lands exactly on the threshold.
func (e *Engine) HandleVote(ctx context.Context, ev domain.VoteEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	// Spam tracking counts every vote action, including the poster's own.
	count, err := e.ledger.RecordVote(ctx, ev.VoterID, ev.TargetID)
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	e.observeLockout(ev.VoterID, ev.TargetID, count)

	// A poster voting on their own content never triggers reward logic.
	// This is not the same as the SelfVote flag.
	if ev.VoterID == ev.PosterID {
		return nil
	}

	// Exact-match edge trigger: a count that jumps past the threshold in a
	// single update does not award.
	if ev.EffectiveCount() != e.cfg.RewardThreshold {
		return nil
	}
	if !e.isApplicable(ev.VoteType) {
		return nil
	}

	granted, balance, err := e.ledger.AwardOnce(ctx, ev.PosterID, ev.TargetID, e.cfg.RewardGain)
	if err != nil {
		return fmt.Errorf("failed to issue reward: %w", err)
	}
	if !granted {
		// Redelivery or a repeated threshold event; the first one won.
		return nil
	}

	metrics.RewardsIssued.Inc()
	slog.Info("Issued reward token",
		"poster_id", ev.PosterID,
		"target_id", ev.TargetID,
		"balance", balance,
	)

	if e.cfg.NotifyOnReward {
		e.notify(ctx, ev.PosterID, rewardText)
	}
	return nil
}

// HandleVoteRetracted counts the retraction for spam tracking and revokes a
// reward token when the effective count lands exactly one below the
// threshold.
func (e *Engine) HandleVoteRetracted(ctx context.Context, ev domain.VoteEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	count, err := e.ledger.RecordVote(ctx, ev.VoterID, ev.TargetID)
	if err != nil {
		return fmt.Errorf("failed to record vote retraction: %w", err)
	}
	e.observeLockout(ev.VoterID, ev.TargetID, count)

	if ev.VoterID == ev.PosterID {
		return nil
	}

	if ev.EffectiveCount() != e.cfg.RewardThreshold-1 {
		return nil
	}
	if !e.isApplicable(ev.VoteType) {
		return nil
	}

	revoked, balance, err := e.ledger.RevokeOnce(ctx, ev.PosterID, ev.TargetID, e.cfg.RewardGain)
	if err != nil {
		return fmt.Errorf("failed to revoke reward: %w", err)
	}
	if !revoked {
		// No reward was ever granted for this target; nothing to take.
		return nil
	}

	metrics.RewardsRevoked.Inc()
	slog.Info("Revoked reward token",
		"poster_id", ev.PosterID,
		"target_id", ev.TargetID,
		"balance", balance,
	)

	if e.cfg.NotifyOnReward {
		e.notify(ctx, ev.PosterID, revokeText)
	}
	return nil
}

// IssueTokens adjusts a user's token balance by amount (admin issuance, may
// be negative or zero) and notifies the user when the amount is nonzero.
func (e *Engine) IssueTokens(ctx context.Context, userID string, amount int64) (int64, error) {
	if userID == "" {
		return 0, domain.ErrMissingUserID
	}

	balance, err := e.ledger.AdjustTokens(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if amount != 0 {
		e.notify(ctx, userID, issueText(amount))
	}
	return balance, nil
}

func (e *Engine) isApplicable(voteType string) bool {
	_, ok := e.applicable[voteType]
	return ok
}

func (e *Engine) observeLockout(voterID, targetID string, count int64) {
	if count == e.cfg.MaxVotes+1 {
		metrics.VoteLockouts.Inc()
		slog.Warn("Vote spam lockout triggered",
			"voter_id", voterID,
			"target_id", targetID,
			"count", count,
		)
	}
}

// notify sends a message and only logs failures. The ledger mutation stays
// authoritative whether or not the user could be reached.
func (e *Engine) notify(ctx context.Context, userID, text string) {
	if err := e.notifier.Notify(ctx, userID, text, domain.NotifyOptions{}); err != nil {
		metrics.NotificationsFailed.Inc()
		slog.Warn("Failed to notify user", "user_id", userID, "error", err)
	}
}
