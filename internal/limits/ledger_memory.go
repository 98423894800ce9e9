package limits

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

type memCounter struct {
	count   int64
	expires time.Time
}

func (c *memCounter) expired(now time.Time) bool {
	return !c.expires.IsZero() && !now.Before(c.expires)
}

// MemoryLedger is an in-memory domain.Ledger mirroring the Redis script
// semantics, including key expiry against an injectable clock. Used by unit
// tests; a mutex makes each operation atomic like its scripted counterpart.
type MemoryLedger struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	policy   domain.LimitPolicy
	posts    map[string]*memCounter
	tokens   map[string]int64
	votes    map[string]*memCounter
	rewarded map[string]bool
}

// NewMemoryLedger creates a MemoryLedger enforcing the given policy.
func NewMemoryLedger(clock clockwork.Clock, policy domain.LimitPolicy) *MemoryLedger {
	return &MemoryLedger{
		clock:    clock,
		policy:   policy,
		posts:    make(map[string]*memCounter),
		tokens:   make(map[string]int64),
		votes:    make(map[string]*memCounter),
		rewarded: make(map[string]bool),
	}
}

var _ domain.Ledger = (*MemoryLedger)(nil)

func (l *MemoryLedger) ChargePost(_ context.Context, userID string, windowTTL time.Duration) (domain.ChargeResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	counter := l.posts[userID]
	if counter == nil || counter.expired(now) {
		counter = &memCounter{expires: now.Add(windowTTL)}
		l.posts[userID] = counter
	}
	counter.count++

	if counter.count > l.policy.FreePostQuota {
		l.tokens[userID] -= l.policy.TokenCost
	}

	return domain.ChargeResult{
		FreePostsRemaining: l.policy.FreePostQuota - counter.count,
		TokenBalance:       l.tokens[userID],
	}, nil
}

func (l *MemoryLedger) AdjustTokens(_ context.Context, userID string, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens[userID] += delta
	return l.tokens[userID], nil
}

func (l *MemoryLedger) AwardOnce(_ context.Context, posterID, targetID string, gain int64) (bool, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rewarded[targetID] {
		return false, l.tokens[posterID], nil
	}
	l.rewarded[targetID] = true
	l.tokens[posterID] += gain
	return true, l.tokens[posterID], nil
}

func (l *MemoryLedger) RevokeOnce(_ context.Context, posterID, targetID string, gain int64) (bool, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.rewarded[targetID] {
		return false, l.tokens[posterID], nil
	}
	delete(l.rewarded, targetID)
	l.tokens[posterID] -= gain
	return true, l.tokens[posterID], nil
}

func (l *MemoryLedger) RecordVote(_ context.Context, voterID, targetID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	key := voterID + ":" + targetID
	counter := l.votes[key]
	if counter == nil || counter.expired(now) {
		counter = &memCounter{}
		l.votes[key] = counter
	}
	counter.count++

	switch {
	case counter.count == 1:
		counter.expires = now.Add(l.policy.VoteCooldown)
	case counter.count > l.policy.MaxVotes+1:
		counter.expires = now.Add(l.policy.VoteBan)
	case counter.count > l.policy.MaxVotes:
		counter.expires = now.Add(l.policy.VoteCooldown)
	}

	return counter.count, nil
}

func (l *MemoryLedger) FreePostsUsed(_ context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counter := l.posts[userID]
	if counter == nil || counter.expired(l.clock.Now()) {
		return 0, nil
	}
	return counter.count, nil
}

func (l *MemoryLedger) TokenBalance(_ context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tokens[userID], nil
}

func (l *MemoryLedger) VoteCount(_ context.Context, voterID, targetID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counter := l.votes[voterID+":"+targetID]
	if counter == nil || counter.expired(l.clock.Now()) {
		return 0, nil
	}
	return counter.count, nil
}

// SweepZeroBalances removes token records holding a zero balance.
func (l *MemoryLedger) SweepZeroBalances(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var swept int64
	for userID, balance := range l.tokens {
		if balance == 0 {
			delete(l.tokens, userID)
			swept++
		}
	}
	return swept, nil
}
