package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryChannelDeliversInOrder(t *testing.T) {
	ch := NewMemoryChannel()
	ctx := context.Background()

	var got []string
	unsub, err := ch.Subscribe(ctx, "game:1", func(p []byte) { got = append(got, string(p)) })
	require.NoError(t, err)

	require.NoError(t, ch.Publish(ctx, "game:1", []byte("v1")))
	require.NoError(t, ch.Publish(ctx, "game:2", []byte("other")))
	require.NoError(t, ch.Publish(ctx, "game:1", []byte("v2")))
	assert.Equal(t, []string{"v1", "v2"}, got)

	unsub()
	unsub()
	require.NoError(t, ch.Publish(ctx, "game:1", []byte("v3")))
	assert.Len(t, got, 2)
	assert.Zero(t, ch.Subscribers("game:1"))
}

func TestMemoryChannelFansOut(t *testing.T) {
	ch := NewMemoryChannel()
	ctx := context.Background()

	counts := make([]int, 3)
	for i := range counts {
		i := i
		_, err := ch.Subscribe(ctx, "k", func([]byte) { counts[i]++ })
		require.NoError(t, err)
	}
	require.NoError(t, ch.Publish(ctx, "k", []byte("x")))
	assert.Equal(t, []int{1, 1, 1}, counts)
}

func TestMemoryChannelHandlerGetsOwnCopy(t *testing.T) {
	ch := NewMemoryChannel()
	ctx := context.Background()
	var seen []byte
	_, err := ch.Subscribe(ctx, "k", func(p []byte) { seen = p })
	require.NoError(t, err)

	payload := []byte("abc")
	require.NoError(t, ch.Publish(ctx, "k", payload))
	payload[0] = 'z'
	assert.Equal(t, "abc", string(seen))
}

func TestMemoryChannelClosed(t *testing.T) {
	ch := NewMemoryChannel()
	ch.Close()
	_, err := ch.Subscribe(context.Background(), "k", func([]byte) {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ch.Publish(context.Background(), "k", nil), ErrClosed)
}

func TestGameKey(t *testing.T) {
	assert.Equal(t, "game:123456", GameKey("", "123456"))
	assert.Equal(t, "lcsc:123456", GameKey("lcsc", "123456"))
}
