package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

// ErrEmptyPatch is returned when Patch is called with nothing to change.
var ErrEmptyPatch = errors.New("game patch has no fields")

type gameStore interface {
	CreateGame(ctx context.Context, arg sqlcgen.CreateGameParams) (sqlcgen.Game, error)
	GetGame(ctx context.Context, gameID pgtype.UUID) (sqlcgen.Game, error)
	ListGamesByRoomCode(ctx context.Context, roomCode string) ([]sqlcgen.Game, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// GamePatch lists the game document fields that changed; nil fields are left alone.
type GamePatch struct {
	PlayerIDs            []uuid.UUID
	Status               *string
	Round                *int
	CurrentQuestionIndex *int
	WinnerID             *uuid.UUID
}

// GameRepository persists match documents.
type GameRepository struct {
	store gameStore
	db    execer
}

// NewGameRepository wraps sqlc Queries plus a raw executor for dynamic patches.
func NewGameRepository(store gameStore, db execer) *GameRepository {
	return &GameRepository{store: store, db: db}
}

// Create inserts the game document when the room is opened.
func (r *GameRepository) Create(ctx context.Context, params sqlcgen.CreateGameParams) (sqlcgen.Game, error) {
	return r.store.CreateGame(ctx, params)
}

// Get loads one game document.
func (r *GameRepository) Get(ctx context.Context, gameID uuid.UUID) (sqlcgen.Game, error) {
	return r.store.GetGame(ctx, PgUUID(gameID))
}

// ListByRoomCode returns every game ever played under a room code, newest first.
func (r *GameRepository) ListByRoomCode(ctx context.Context, roomCode string) ([]sqlcgen.Game, error) {
	return r.store.ListGamesByRoomCode(ctx, roomCode)
}

// Patch applies a partial update built with squirrel.
func (r *GameRepository) Patch(ctx context.Context, gameID uuid.UUID, patch GamePatch) error {
	q, ok := buildGamePatch(gameID, patch)
	if !ok {
		return ErrEmptyPatch
	}
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build game patch: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch game %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func buildGamePatch(gameID uuid.UUID, patch GamePatch) (sq.UpdateBuilder, bool) {
	q := psql.Update("games")
	changed := false
	if patch.PlayerIDs != nil {
		q = q.Set("player_ids", PgUUIDs(patch.PlayerIDs))
		changed = true
	}
	if patch.Status != nil {
		q = q.Set("status", *patch.Status)
		changed = true
	}
	if patch.Round != nil {
		q = q.Set("round", int32(*patch.Round))
		changed = true
	}
	if patch.CurrentQuestionIndex != nil {
		q = q.Set("current_question_index", int32(*patch.CurrentQuestionIndex))
		changed = true
	}
	if patch.WinnerID != nil {
		q = q.Set("winner_id", PgUUID(*patch.WinnerID))
		changed = true
	}
	q = q.Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"game_id": PgUUID(gameID)})
	return q, changed
}
