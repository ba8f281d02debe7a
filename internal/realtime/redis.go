package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisChannel implements Channel over Redis Pub/Sub. Each Subscribe call
// owns one PubSub connection and one forwarding goroutine.
type RedisChannel struct {
	client *redis.Client
	logger zerolog.Logger
}

var _ Channel = (*RedisChannel)(nil)

func NewRedisChannel(client *redis.Client, logger zerolog.Logger) *RedisChannel {
	return &RedisChannel{
		client: client,
		logger: logger.With().Str("component", "realtime_redis").Logger(),
	}
}

func (c *RedisChannel) Publish(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Publish(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription, so a publish
// issued after it returns is delivered.
func (c *RedisChannel) Subscribe(ctx context.Context, key string, onMessage Handler) (Unsubscribe, error) {
	sub := c.client.Subscribe(ctx, key)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				onMessage([]byte(msg.Payload))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := sub.Close(); err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("failed to close subscription")
			}
			<-done
		})
	}, nil
}
