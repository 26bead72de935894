package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// SessionEventsChannel is the pub/sub channel every instance listens on.
const SessionEventsChannel = "session-events"

// SessionEventBus carries session events between API instances so a
// sign-out on one instance reaches gates watching on another.
type SessionEventBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewSessionEventBus(client *redis.Client, log zerolog.Logger) *SessionEventBus {
	return &SessionEventBus{client: client, log: log}
}

// Publish sends ev to every subscribed instance, including this one.
func (b *SessionEventBus) Publish(ctx context.Context, ev domain.SessionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}
	if err := b.client.Publish(ctx, SessionEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}
	return nil
}

// Run subscribes to the channel and hands every decoded event to sink until
// ctx is cancelled. Undecodable messages are logged and skipped.
func (b *SessionEventBus) Run(ctx context.Context, sink func(domain.SessionEvent)) error {
	sub := b.client.Subscribe(ctx, SessionEventsChannel)
	defer sub.Close()

	// Wait for the subscription to be confirmed so early publishes are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", SessionEventsChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn().Err(err).Msg("dropping malformed session event")
				continue
			}
			sink(ev)
		}
	}
}
