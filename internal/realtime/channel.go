// Package realtime fans game snapshots out to every server instance that
// holds sockets for a room.
package realtime

import (
	"context"
	"errors"
)

// ErrClosed is returned by a channel after Close.
var ErrClosed = errors.New("realtime channel closed")

// Handler receives one published payload. Handlers for a key run in publish
// order and must not block for long.
type Handler func(payload []byte)

// Unsubscribe stops delivery to a handler. It is safe to call more than once.
type Unsubscribe func()

// Channel is a keyed publish/subscribe transport.
type Channel interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Subscribe(ctx context.Context, key string, onMessage Handler) (Unsubscribe, error)
}

// GameKey is the channel key carrying snapshots for a room.
func GameKey(prefix, roomCode string) string {
	if prefix == "" {
		prefix = "game"
	}
	return prefix + ":" + roomCode
}
