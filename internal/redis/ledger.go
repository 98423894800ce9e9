package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

// Key schema:
//   posts:{userID}            post counter, TTL to the next window boundary
//   tokens:{userID}           reward token balance, persistent
//   votes:{userID}:{targetID} spam counter, TTL = window/cooldown/ban
//   rewarded:{targetID}       granted flag, set while the target holds a reward

func postsKey(userID string) string {
	return "posts:" + userID
}

func tokensKey(userID string) string {
	return "tokens:" + userID
}

func votesKey(userID, targetID string) string {
	return "votes:" + userID + ":" + targetID
}

func rewardedKey(targetID string) string {
	return "rewarded:" + targetID
}

// LedgerStore implements domain.Ledger on Redis. All mutations run as Lua
// scripts, so each one is atomic with respect to concurrent callers.
type LedgerStore struct {
	rdb    *goredis.Client
	policy domain.LimitPolicy
}

// NewLedgerStore creates a LedgerStore enforcing the given policy.
func NewLedgerStore(client *Client, policy domain.LimitPolicy) *LedgerStore {
	return &LedgerStore{rdb: client.rdb, policy: policy}
}

var _ domain.Ledger = (*LedgerStore)(nil)

// ChargePost consumes one post for the active window in a single atomic
// round trip. A token is only spent once the free quota is used up.
func (s *LedgerStore) ChargePost(ctx context.Context, userID string, windowTTL time.Duration) (domain.ChargeResult, error) {
	ttl := int64(math.Ceil(windowTTL.Seconds()))
	if ttl < 1 {
		ttl = 1
	}

	result, err := chargePostScript.Run(ctx, s.rdb,
		[]string{postsKey(userID), tokensKey(userID)},
		s.policy.FreePostQuota,
		s.policy.TokenCost,
		ttl,
	).Result()
	if err != nil {
		return domain.ChargeResult{}, fmt.Errorf("charge post script failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return domain.ChargeResult{}, fmt.Errorf("charge post script returned unexpected result: %v", result)
	}

	remaining, ok1 := values[0].(int64)
	balance, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return domain.ChargeResult{}, fmt.Errorf("charge post script returned non-integer values: %v", result)
	}

	return domain.ChargeResult{FreePostsRemaining: remaining, TokenBalance: balance}, nil
}

// AdjustTokens adds delta to the user's token balance. INCRBY is natively
// atomic, no script needed.
func (s *LedgerStore) AdjustTokens(ctx context.Context, userID string, delta int64) (int64, error) {
	balance, err := s.rdb.IncrBy(ctx, tokensKey(userID), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to adjust tokens: %w", err)
	}
	return balance, nil
}

// AwardOnce grants gain tokens to the poster at most once per target.
func (s *LedgerStore) AwardOnce(ctx context.Context, posterID, targetID string, gain int64) (bool, int64, error) {
	return s.runFlaggedAdjust(ctx, awardOnceScript, posterID, targetID, gain)
}

// RevokeOnce takes gain tokens back only if a prior AwardOnce granted them.
func (s *LedgerStore) RevokeOnce(ctx context.Context, posterID, targetID string, gain int64) (bool, int64, error) {
	return s.runFlaggedAdjust(ctx, revokeOnceScript, posterID, targetID, gain)
}

func (s *LedgerStore) runFlaggedAdjust(ctx context.Context, script *goredis.Script, posterID, targetID string, gain int64) (bool, int64, error) {
	result, err := script.Run(ctx, s.rdb,
		[]string{rewardedKey(targetID), tokensKey(posterID)},
		gain,
	).Result()
	if err != nil {
		return false, 0, fmt.Errorf("reward script failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("reward script returned unexpected result: %v", result)
	}

	applied, ok1 := values[0].(int64)
	balance, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("reward script returned non-integer values: %v", result)
	}

	return applied == 1, balance, nil
}

// RecordVote counts one vote on a target and applies the spam escalation
// within the same atomic step.
func (s *LedgerStore) RecordVote(ctx context.Context, voterID, targetID string) (int64, error) {
	count, err := recordVoteScript.Run(ctx, s.rdb,
		[]string{votesKey(voterID, targetID)},
		s.policy.MaxVotes,
		int64(s.policy.VoteCooldown.Seconds()),
		int64(s.policy.VoteBan.Seconds()),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("record vote script failed: %w", err)
	}
	return count, nil
}

// FreePostsUsed returns the post counter for the current window.
func (s *LedgerStore) FreePostsUsed(ctx context.Context, userID string) (int64, error) {
	return s.readCounter(ctx, postsKey(userID))
}

// TokenBalance returns the reward token balance.
func (s *LedgerStore) TokenBalance(ctx context.Context, userID string) (int64, error) {
	return s.readCounter(ctx, tokensKey(userID))
}

// VoteCount returns the spam counter for voterID on targetID.
func (s *LedgerStore) VoteCount(ctx context.Context, voterID, targetID string) (int64, error) {
	return s.readCounter(ctx, votesKey(voterID, targetID))
}

func (s *LedgerStore) readCounter(ctx context.Context, key string) (int64, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

// SweepZeroBalances scans all token keys and deletes those holding a zero
// balance, mirroring the original reset behavior where users without reward
// tokens keep no record. Each delete is a compare-and-delete script, so a
// concurrent AdjustTokens never loses an update. Returns the number of
// records removed.
func (s *LedgerStore) SweepZeroBalances(ctx context.Context) (int64, error) {
	var swept int64

	iter := s.rdb.Scan(ctx, 0, tokensKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		deleted, err := dropZeroBalanceScript.Run(ctx, s.rdb, []string{iter.Val()}).Int64()
		if err != nil {
			return swept, fmt.Errorf("zero balance sweep failed on %s: %w", iter.Val(), err)
		}
		swept += deleted
	}
	if err := iter.Err(); err != nil {
		return swept, fmt.Errorf("zero balance sweep scan failed: %w", err)
	}

	return swept, nil
}
