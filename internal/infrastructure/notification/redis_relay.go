package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"go.uber.org/zap"
)

// envelope is the Pub/Sub wire format
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay carries broadcasts between processes over Redis Pub/Sub.
// Broadcast publishes; Run delivers everything published on the channel,
// including this process's own broadcasts, to a local Hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewRedisRelay creates a relay on an existing client. The client stays
// owned by the caller.
func NewRedisRelay(client *redis.Client, channel string, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		logger:  logger.Named("notification_relay"),
	}
}

// Broadcast publishes the event for every subscribed process
func (r *RedisRelay) Broadcast(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	data, err := json.Marshal(envelope{Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Run subscribes to the channel and forwards messages to hub until ctx is
// done. It blocks, so call it in a goroutine.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("relay subscription already running")
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("Subscribed to notification channel", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				r.logger.Warn("Notification channel closed")
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Error("Dropping malformed notification", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			hub.BroadcastRaw(env.Event, env.Payload)
		}
	}
}

var _ fulfillment.Broadcaster = (*RedisRelay)(nil)
