//go:build integration
// +build integration

package realtime

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisChannelRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	ch := NewRedisChannel(client, zerolog.New(io.Discard))
	got := make(chan string, 4)
	unsub, err := ch.Subscribe(ctx, "test:realtime", func(p []byte) { got <- string(p) })
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, ch.Publish(ctx, "test:realtime", []byte("hello")))
	select {
	case msg := <-got:
		assert.Equal(t, "hello", msg)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}
