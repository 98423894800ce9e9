package limits

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

func newMemoryLedger(policy domain.LimitPolicy) (*MemoryLedger, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	return NewMemoryLedger(clock, policy), clock
}

func TestMemoryLedger_ConcurrentChargesAreMonotonic(t *testing.T) {
	policy := domain.LimitPolicy{FreePostQuota: 3, TokenCost: 1, MaxVotes: 3, VoteCooldown: time.Hour, VoteBan: 24 * time.Hour}
	ledger, _ := newMemoryLedger(policy)
	ctx := context.Background()

	const posts = 10

	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ChargePost(ctx, "alice", time.Hour)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Tokens spent must equal posts beyond the free quota, regardless of
	// interleaving
	used, err := ledger.FreePostsUsed(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(posts), used)

	balance, err := ledger.TokenBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(-(posts - 3)), balance)
}

func TestMemoryLedger_PostCounterExpiresAtWindowBoundary(t *testing.T) {
	ledger, clock := newMemoryLedger(testPolicy())
	ctx := context.Background()

	_, err := ledger.ChargePost(ctx, "alice", 2*time.Hour)
	require.NoError(t, err)
	_, err = ledger.ChargePost(ctx, "alice", 2*time.Hour)
	require.NoError(t, err)

	clock.Advance(3 * time.Hour)

	used, err := ledger.FreePostsUsed(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)

	// A fresh window starts counting from zero
	result, err := ledger.ChargePost(ctx, "alice", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.FreePostsRemaining)
}

func TestMemoryLedger_AwardOnceIsIdempotentPerTarget(t *testing.T) {
	ledger, _ := newMemoryLedger(testPolicy())
	ctx := context.Background()

	granted, balance, err := ledger.AwardOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, int64(1), balance)

	granted, balance, err = ledger.AwardOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, int64(1), balance)

	// A different target awards independently
	granted, balance, err = ledger.AwardOnce(ctx, "poster", "meme-2", 1)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, int64(2), balance)
}

func TestMemoryLedger_RevokeOnceRequiresPriorAward(t *testing.T) {
	ledger, _ := newMemoryLedger(testPolicy())
	ctx := context.Background()

	revoked, balance, err := ledger.RevokeOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, int64(0), balance)

	_, _, err = ledger.AwardOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)

	revoked, balance, err = ledger.RevokeOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, int64(0), balance)

	// Double revocation does not run the balance negative
	revoked, balance, err = ledger.RevokeOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, int64(0), balance)
}

func TestMemoryLedger_SweepZeroBalances(t *testing.T) {
	ledger, _ := newMemoryLedger(testPolicy())
	ctx := context.Background()

	_, err := ledger.AdjustTokens(ctx, "zeroed", 0)
	require.NoError(t, err)
	_, err = ledger.AdjustTokens(ctx, "holder", 2)
	require.NoError(t, err)

	swept, err := ledger.SweepZeroBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	balance, err := ledger.TokenBalance(ctx, "holder")
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)
}
