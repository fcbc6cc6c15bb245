// Package notifications fans created notifications out to realtime subscribers.
// The store is the source of truth; everything here is best effort.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"agora/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const userChannelPattern = "notifications:user:*"

// UserChannel is the Redis channel carrying one user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// ParseUserChannel extracts the user id from a UserChannel name.
func ParseUserChannel(channel string) (uint, bool) {
	var userID uint
	if _, err := fmt.Sscanf(channel, "notifications:user:%d", &userID); err != nil || userID == 0 {
		return 0, false
	}
	return userID, true
}

// Notifier publishes notification payloads to per-user Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Name identifies the sink in logs and metrics.
func (n *Notifier) Name() string { return "redis" }

// Publish sends an event to the recipient's channel.
func (n *Notifier) Publish(ctx context.Context, event Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return err
	}
	return n.PublishUser(ctx, event.RecipientID, string(payload))
}

// PublishUser sends a raw payload to a user's channel. A nil client is a no-op.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage for
// each message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	// Wait for the subscription so messages published right after return are seen.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
