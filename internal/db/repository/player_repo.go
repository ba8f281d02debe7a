package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

type playerStore interface {
	CreatePlayer(ctx context.Context, arg sqlcgen.CreatePlayerParams) error
	GetPlayer(ctx context.Context, playerID pgtype.UUID) (sqlcgen.Player, error)
	UpdatePlayerProgress(ctx context.Context, arg sqlcgen.UpdatePlayerProgressParams) error
}

// PlayerRepository stores per-player documents.
type PlayerRepository struct {
	store playerStore
}

func NewPlayerRepository(store playerStore) *PlayerRepository {
	return &PlayerRepository{store: store}
}

// Create inserts a player with lobby defaults.
func (r *PlayerRepository) Create(ctx context.Context, params sqlcgen.CreatePlayerParams) error {
	return r.store.CreatePlayer(ctx, params)
}

func (r *PlayerRepository) Get(ctx context.Context, playerID uuid.UUID) (sqlcgen.Player, error) {
	return r.store.GetPlayer(ctx, PgUUID(playerID))
}

// SaveProgress writes score, ledger and gamification fields.
func (r *PlayerRepository) SaveProgress(ctx context.Context, params sqlcgen.UpdatePlayerProgressParams) error {
	return r.store.UpdatePlayerProgress(ctx, params)
}
