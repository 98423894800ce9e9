package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/metrics"
)

// EventHandler is the subset of limiter operations the subscriber dispatches to.
type EventHandler interface {
	HandlePost(ctx context.Context, ev domain.PostIssued) error
	HandleVote(ctx context.Context, ev domain.VoteEvent) error
	HandleVoteRetracted(ctx context.Context, ev domain.VoteEvent) error
}

// EventSubscriber consumes inbound events from Redis Pub/Sub channels.
// Delivery is at-least-once and unordered; every handler operation is safe
// under arbitrary interleaving, so redelivery only costs an extra round trip.
type EventSubscriber struct {
	rdb     *goredis.Client
	prefix  string
	handler EventHandler
}

// NewEventSubscriber creates an EventSubscriber for channels under prefix
// (e.g. "events" listens on "events:post", "events:vote",
// "events:vote-retracted").
func NewEventSubscriber(client *Client, prefix string, handler EventHandler) *EventSubscriber {
	return &EventSubscriber{rdb: client.rdb, prefix: prefix, handler: handler}
}

func (s *EventSubscriber) postChannel() string    { return s.prefix + ":post" }
func (s *EventSubscriber) voteChannel() string    { return s.prefix + ":vote" }
func (s *EventSubscriber) retractChannel() string { return s.prefix + ":vote-retracted" }

// Run subscribes and dispatches messages until ctx is cancelled.
func (s *EventSubscriber) Run(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, s.postChannel(), s.voteChannel(), s.retractChannel())
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.dispatch(ctx, msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *EventSubscriber) dispatch(ctx context.Context, msg *goredis.Message) {
	// Delivery id ties log lines of one message together across handlers.
	deliveryID := uuid.New()

	var err error
	var event string
	switch msg.Channel {
	case s.postChannel():
		event = "post"
		var ev domain.PostIssued
		if err = json.Unmarshal([]byte(msg.Payload), &ev); err == nil {
			err = s.handler.HandlePost(ctx, ev)
		}
	case s.voteChannel():
		event = "vote"
		var ev domain.VoteEvent
		if err = json.Unmarshal([]byte(msg.Payload), &ev); err == nil {
			err = s.handler.HandleVote(ctx, ev)
		}
	case s.retractChannel():
		event = "vote_retracted"
		var ev domain.VoteEvent
		if err = json.Unmarshal([]byte(msg.Payload), &ev); err == nil {
			err = s.handler.HandleVoteRetracted(ctx, ev)
		}
	default:
		return
	}

	if err != nil {
		metrics.EventsProcessed.WithLabelValues(event, "error").Inc()
		slog.Error("Failed to process event",
			"event", event,
			"delivery_id", deliveryID,
			"error", err,
		)
		return
	}
	metrics.EventsProcessed.WithLabelValues(event, "success").Inc()
}
