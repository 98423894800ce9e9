package redis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

func TestNotifier_PublishAndReceive(t *testing.T) {
	client := setupTestClient(t)
	notifier := NewNotifier(client, "notify:user")
	ctx := context.Background()

	sub := client.rdb.Subscribe(ctx, "notify:user")
	defer func() { _ = sub.Close() }()

	// Give subscription time to establish
	time.Sleep(100 * time.Millisecond)

	err := notifier.Notify(ctx, "alice", "You got a reward token!", domain.NotifyOptions{ReplyTo: "msg-42"})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var n Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		assert.Equal(t, "alice", n.UserID)
		assert.Equal(t, "You got a reward token!", n.Text)
		assert.Equal(t, "msg-42", n.ReplyTo)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

type recordingHandler struct {
	mu       sync.Mutex
	posts    []domain.PostIssued
	votes    []domain.VoteEvent
	retracts []domain.VoteEvent
}

func (h *recordingHandler) HandlePost(_ context.Context, ev domain.PostIssued) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.posts = append(h.posts, ev)
	return nil
}

func (h *recordingHandler) HandleVote(_ context.Context, ev domain.VoteEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.votes = append(h.votes, ev)
	return nil
}

func (h *recordingHandler) HandleVoteRetracted(_ context.Context, ev domain.VoteEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retracts = append(h.retracts, ev)
	return nil
}

func (h *recordingHandler) counts() (int, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.posts), len(h.votes), len(h.retracts)
}

func TestEventSubscriber_DispatchesByChannel(t *testing.T) {
	client := setupTestClient(t)
	handler := &recordingHandler{}
	subscriber := NewEventSubscriber(client, "events", handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = subscriber.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	post, err := json.Marshal(domain.PostIssued{PosterID: "alice"})
	require.NoError(t, err)
	require.NoError(t, client.rdb.Publish(ctx, "events:post", post).Err())

	voteEv := domain.VoteEvent{VoterID: "bob", PosterID: "alice", TargetID: "meme-1", NewCount: 5, VoteType: "like"}
	voteJSON, err := json.Marshal(voteEv)
	require.NoError(t, err)
	require.NoError(t, client.rdb.Publish(ctx, "events:vote", voteJSON).Err())
	require.NoError(t, client.rdb.Publish(ctx, "events:vote-retracted", voteJSON).Err())

	require.Eventually(t, func() bool {
		posts, votes, retracts := handler.counts()
		return posts == 1 && votes == 1 && retracts == 1
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "alice", handler.posts[0].PosterID)
	assert.Equal(t, voteEv, handler.votes[0])
	assert.Equal(t, voteEv, handler.retracts[0])
}

func TestEventSubscriber_MalformedPayloadDoesNotStopDispatch(t *testing.T) {
	client := setupTestClient(t)
	handler := &recordingHandler{}
	subscriber := NewEventSubscriber(client, "events", handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = subscriber.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, client.rdb.Publish(ctx, "events:post", "{not json").Err())

	post, err := json.Marshal(domain.PostIssued{PosterID: "alice"})
	require.NoError(t, err)
	require.NoError(t, client.rdb.Publish(ctx, "events:post", post).Err())

	require.Eventually(t, func() bool {
		posts, _, _ := handler.counts()
		return posts == 1
	}, 2*time.Second, 20*time.Millisecond)
}
