package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

func testLedgerPolicy() domain.LimitPolicy {
	return domain.LimitPolicy{
		FreePostQuota: 2,
		TokenCost:     1,
		MaxVotes:      3,
		VoteCooldown:  60 * time.Second,
		VoteBan:       600 * time.Second,
	}
}

func TestChargePost_FreeThenTokens(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	result, err := store.ChargePost(ctx, "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.ChargeResult{FreePostsRemaining: 1, TokenBalance: 0}, result)

	result, err = store.ChargePost(ctx, "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.ChargeResult{FreePostsRemaining: 0, TokenBalance: 0}, result)

	// The third post of the window spends a token the user does not have
	result, err = store.ChargePost(ctx, "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.ChargeResult{FreePostsRemaining: -1, TokenBalance: -1}, result)
}

func TestChargePost_SetsWindowExpiry(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	_, err := store.ChargePost(ctx, "alice", 90*time.Second)
	require.NoError(t, err)

	ttl, err := client.rdb.TTL(ctx, postsKey("alice")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 80*time.Second)
	assert.LessOrEqual(t, ttl, 90*time.Second)

	// A second charge does not refresh the window
	_, err = store.ChargePost(ctx, "alice", 90*time.Second)
	require.NoError(t, err)

	ttl2, err := client.rdb.TTL(ctx, postsKey("alice")).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl2, ttl)
}

func TestChargePost_ConcurrentChargesAreMonotonic(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	const posts = 10

	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ChargePost(ctx, "alice", time.Hour)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	used, err := store.FreePostsUsed(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(posts), used)

	balance, err := store.TokenBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(-(posts - 2)), balance)
}

func TestAdjustTokens_ConcurrentAdjustmentsAreLossless(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AdjustTokens(ctx, "alice", 2)
			assert.NoError(t, err)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AdjustTokens(ctx, "alice", -1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := store.TokenBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestReads_DefaultToZeroForUnknownUser(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	used, err := store.FreePostsUsed(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)

	balance, err := store.TokenBalance(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	count, err := store.VoteCount(ctx, "nobody", "meme-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRecordVote_EscalatesCooldownToBan(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	// Three votes stay within the limit, spam window TTL applies
	for i := int64(1); i <= 3; i++ {
		count, err := store.RecordVote(ctx, "voter", "meme-1")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	ttl, err := client.rdb.TTL(ctx, votesKey("voter", "meme-1")).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 60*time.Second)

	// The fourth vote arms the cooldown
	count, err := store.RecordVote(ctx, "voter", "meme-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	ttl, err = client.rdb.TTL(ctx, votesKey("voter", "meme-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, 60*time.Second)

	// A fifth vote while cooling escalates to the ban duration
	count, err = store.RecordVote(ctx, "voter", "meme-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	ttl, err = client.rdb.TTL(ctx, votesKey("voter", "meme-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 60*time.Second)
	assert.LessOrEqual(t, ttl, 600*time.Second)
}

func TestAwardOnce_SecondAwardForSameTargetIsNoOp(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	granted, balance, err := store.AwardOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, int64(1), balance)

	granted, balance, err = store.AwardOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, int64(1), balance)
}

func TestRevokeOnce_OnlyAfterAward(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	revoked, balance, err := store.RevokeOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, int64(0), balance)

	_, _, err = store.AwardOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)

	revoked, balance, err = store.RevokeOnce(ctx, "poster", "meme-1", 1)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, int64(0), balance)
}

func TestSweepZeroBalances(t *testing.T) {
	client := setupTestClient(t)
	store := NewLedgerStore(client, testLedgerPolicy())
	ctx := context.Background()

	_, err := store.AdjustTokens(ctx, "zeroed", 0)
	require.NoError(t, err)
	_, err = store.AdjustTokens(ctx, "holder", 2)
	require.NoError(t, err)

	swept, err := store.SweepZeroBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	exists, err := client.rdb.Exists(ctx, tokensKey("zeroed")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	balance, err := store.TokenBalance(ctx, "holder")
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)
}
