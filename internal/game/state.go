package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrLockHeld is returned when another caller holds a room's start lock.
var ErrLockHeld = errors.New("lock already held")

const (
	defaultSnapshotTTL = 2 * time.Hour
	startLockTTL       = 30 * time.Second
)

// SnapshotStore keeps the latest snapshot of every live game and guards the
// start transition across instances.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	LoadSnapshot(ctx context.Context, roomCode string) (*Snapshot, error)
	LockStart(ctx context.Context, roomCode string) (func() error, error)
}

// StateManager handles ephemeral game state in Redis with atomic locks.
type StateManager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ SnapshotStore = (*StateManager)(nil)

// NewStateManager creates a state manager backed by Redis.
func NewStateManager(redis *redis.Client, ttl time.Duration, logger zerolog.Logger) *StateManager {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &StateManager{
		redis:  redis,
		ttl:    ttl,
		logger: logger.With().Str("component", "game_state").Logger(),
	}
}

func snapshotKey(roomCode string) string {
	return fmt.Sprintf("game:snapshot:%s", roomCode)
}

// unlockScript only deletes the lock if we still own it.
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// LockStart acquires a distributed lock for the lobby to playing transition.
// The lock expires after 30s.
func (s *StateManager) LockStart(ctx context.Context, roomCode string) (func() error, error) {
	key := fmt.Sprintf("game:lock:%s", roomCode)
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, startLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrLockHeld
	}

	unlock := func() error {
		return unlockScript.Run(context.WithoutCancel(ctx), s.redis, []string{key}, lockValue).Err()
	}
	return unlock, nil
}

// SaveSnapshot stores the snapshot unless a newer version is already stored.
func (s *StateManager) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := snapshotKey(snap.RoomCode)

	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var stored struct {
				Version uint64 `json:"version"`
			}
			if json.Unmarshal(current, &stored) == nil && stored.Version >= snap.Version {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.RoomCode, err)
	}
	return nil
}

// LoadSnapshot returns nil when no snapshot is stored for the room.
func (s *StateManager) LoadSnapshot(ctx context.Context, roomCode string) (*Snapshot, error) {
	data, err := s.redis.Get(ctx, snapshotKey(roomCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn().Err(err).Str("room_code", roomCode).Msg("skip corrupted snapshot")
		return nil, nil
	}
	return &snap, nil
}
