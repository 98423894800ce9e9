package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

// Notification is the message published for the external messenger service.
type Notification struct {
	UserID  string `json:"user_id"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// Notifier publishes user notifications to a Redis Pub/Sub channel consumed
// by the messenger service.
type Notifier struct {
	rdb     *goredis.Client
	channel string
}

// NewNotifier creates a Notifier publishing on the given channel.
func NewNotifier(client *Client, channel string) *Notifier {
	return &Notifier{rdb: client.rdb, channel: channel}
}

var _ domain.Notifier = (*Notifier)(nil)

// Notify publishes a notification for the user.
func (n *Notifier) Notify(ctx context.Context, userID, text string, opts domain.NotifyOptions) error {
	msg := Notification{UserID: userID, Text: text, ReplyTo: opts.ReplyTo}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
