package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
)

// Room is a lobby and the game played in it.
type Room struct {
	Code       string
	GameID     uuid.UUID
	HostID     uuid.UUID
	MaxPlayers int
	CreatedAt  time.Time

	seats  sync.Mutex
	engine *Engine
}

// Engine is the game played in the room.
func (r *Room) Engine() *Engine { return r.engine }

// RoomManager handles room creation, lookup, and lifecycle.
type RoomManager struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	rooms  map[string]*Room
	codes  func() string
}

// NewRoomManager creates an in-memory room manager.
func NewRoomManager(logger zerolog.Logger) *RoomManager {
	return &RoomManager{
		logger: logger.With().Str("component", "room_manager").Logger(),
		rooms:  make(map[string]*Room),
		codes:  randomRoomCode,
	}
}

// Reserve picks a code no live room uses and registers build's room under it.
func (r *RoomManager) Reserve(build func(code string) (*Room, error)) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.codes()
	for _, exists := r.rooms[code]; exists; _, exists = r.rooms[code] {
		code = r.codes()
	}
	room, err := build(code)
	if err != nil {
		return nil, err
	}
	r.rooms[code] = room

	r.logger.Info().
		Str("room_code", code).
		Str("host_id", room.HostID.String()).
		Msg("room created")
	return room, nil
}

// Get retrieves a room by code.
func (r *RoomManager) Get(code string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[code]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return room, nil
}

// Remove forgets a room; its engine is stopped by the caller.
func (r *RoomManager) Remove(code string) {
	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()
}

// Codes lists live room codes in ascending order.
func (r *RoomManager) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// randomRoomCode creates a 6-digit numeric code (100000-999999).
func randomRoomCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}
