package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Channel is the Redis pub/sub channel shared by every instance.
const Channel = "taskboard:events"

// RedisBroker publishes events through Redis so that clients connected to
// any instance receive them. Run relays the channel into the local hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	logger *logrus.Entry
}

func NewRedisBroker(client *redis.Client, hub *Hub, logger *logrus.Entry) *RedisBroker {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisBroker{client: client, hub: hub, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Run blocks until ctx is done or the subscription breaks.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, Channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before relaying.
	if _, err := sub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	b.logger.WithField("channel", Channel).Info("Relaying events from redis")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.logger.WithError(err).Warn("Dropping malformed event")
				continue
			}
			b.hub.Deliver(e)
		}
	}
}
