package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
)

// ErrDocNotFound is returned when a persisted document does not exist.
var ErrDocNotFound = errors.New("document not found")

// GameDoc is the persisted match document.
type GameDoc struct {
	ID                   uuid.UUID   `json:"id"`
	RoomCode             string      `json:"room_id"`
	HostID               uuid.UUID   `json:"host_id"`
	PlayerIDs            []uuid.UUID `json:"player_ids"`
	Status               string      `json:"status"`
	Round                int         `json:"round"`
	CurrentQuestionIndex int         `json:"current_question_index"`
	Questions            []string    `json:"questions"`
	WinnerID             *uuid.UUID  `json:"winner_id,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// Store is the persistence service for game, player and coin documents.
type Store interface {
	CreateGameDoc(ctx context.Context, doc GameDoc) error
	UpdateGameDoc(ctx context.Context, id uuid.UUID, patch repository.GamePatch) error
	ListGameDocsByRoomID(ctx context.Context, roomCode string) ([]GameDoc, error)
	CreatePlayerDoc(ctx context.Context, gameID uuid.UUID, p tracker.Player) error
	GetPlayerDoc(ctx context.Context, id uuid.UUID) (tracker.Player, error)
	UpdatePlayerDoc(ctx context.Context, p tracker.Player) error
	InsertCoinTransactions(ctx context.Context, gameID uuid.UUID, txs []tracker.CoinTransaction) error
}

// PostgresStore implements Store over the sqlc repositories.
type PostgresStore struct {
	games   *repository.GameRepository
	players *repository.PlayerRepository
	coins   *repository.CoinRepository
}

func NewPostgresStore(games *repository.GameRepository, players *repository.PlayerRepository, coins *repository.CoinRepository) *PostgresStore {
	return &PostgresStore{games: games, players: players, coins: coins}
}

func (s *PostgresStore) CreateGameDoc(ctx context.Context, doc GameDoc) error {
	_, err := s.games.Create(ctx, sqlcgen.CreateGameParams{
		GameID:               repository.PgUUID(doc.ID),
		RoomCode:             doc.RoomCode,
		HostID:               repository.PgUUID(doc.HostID),
		PlayerIds:            repository.PgUUIDs(doc.PlayerIDs),
		Status:               doc.Status,
		Round:                int32(doc.Round),
		CurrentQuestionIndex: int32(doc.CurrentQuestionIndex),
		Questions:            nonNilStrings(doc.Questions),
	})
	if err != nil {
		return fmt.Errorf("create game %s: %w", doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateGameDoc(ctx context.Context, id uuid.UUID, patch repository.GamePatch) error {
	err := s.games.Patch(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDocNotFound
	}
	return err
}

func (s *PostgresStore) ListGameDocsByRoomID(ctx context.Context, roomCode string) ([]GameDoc, error) {
	rows, err := s.games.ListByRoomCode(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("list games for room %s: %w", roomCode, err)
	}
	out := make([]GameDoc, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameDocFromRow(row))
	}
	return out, nil
}

func (s *PostgresStore) CreatePlayerDoc(ctx context.Context, gameID uuid.UUID, p tracker.Player) error {
	err := s.players.Create(ctx, sqlcgen.CreatePlayerParams{
		PlayerID:   repository.PgUUID(p.ID),
		GameID:     repository.PgUUID(gameID),
		Name:       p.Name,
		Avatar:     p.Avatar,
		IsHost:     p.IsHost,
		IsBot:      p.IsBot,
		Status:     string(p.Status),
		Coins:      int32(p.Coins),
		Level:      int32(p.Level),
		Experience: int32(p.Experience),
	})
	if err != nil {
		return fmt.Errorf("create player %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetPlayerDoc(ctx context.Context, id uuid.UUID) (tracker.Player, error) {
	row, err := s.players.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.Player{}, ErrDocNotFound
	}
	if err != nil {
		return tracker.Player{}, fmt.Errorf("get player %s: %w", id, err)
	}
	return tracker.Player{
		ID:                  repository.FromPgUUID(row.PlayerID),
		Name:                row.Name,
		Avatar:              row.Avatar,
		IsHost:              row.IsHost,
		IsBot:               row.IsBot,
		IsEliminated:        row.IsEliminated,
		Status:              tracker.Status(row.Status),
		Score:               int(row.Score),
		Coins:               int(row.Coins),
		Level:               int(row.Level),
		Experience:          int(row.Experience),
		Badges:              nonNilStrings(row.Badges),
		Achievements:        nonNilStrings(row.Achievements),
		ChallengesCompleted: nonNilStrings(row.ChallengesCompleted),
		StreakDays:          int(row.StreakDays),
	}, nil
}

func (s *PostgresStore) UpdatePlayerDoc(ctx context.Context, p tracker.Player) error {
	err := s.players.SaveProgress(ctx, sqlcgen.UpdatePlayerProgressParams{
		PlayerID:            repository.PgUUID(p.ID),
		IsEliminated:        p.IsEliminated,
		Status:              string(p.Status),
		Score:               int32(p.Score),
		Coins:               int32(p.Coins),
		Level:               int32(p.Level),
		Experience:          int32(p.Experience),
		Badges:              nonNilStrings(p.Badges),
		Achievements:        nonNilStrings(p.Achievements),
		ChallengesCompleted: nonNilStrings(p.ChallengesCompleted),
		StreakDays:          int32(p.StreakDays),
	})
	if err != nil {
		return fmt.Errorf("update player %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) InsertCoinTransactions(ctx context.Context, gameID uuid.UUID, txs []tracker.CoinTransaction) error {
	params := make([]sqlcgen.InsertCoinTransactionParams, 0, len(txs))
	for _, tx := range txs {
		params = append(params, sqlcgen.InsertCoinTransactionParams{
			TransactionID: repository.PgUUID(tx.ID),
			GameID:        repository.PgUUID(gameID),
			PlayerID:      repository.PgUUID(tx.PlayerID),
			Amount:        int32(tx.Amount),
			Reason:        tx.Reason,
			CreatedAt:     pgtype.Timestamptz{Time: tx.Timestamp, Valid: true},
		})
	}
	return s.coins.AppendAll(ctx, params)
}

func gameDocFromRow(row sqlcgen.Game) GameDoc {
	doc := GameDoc{
		ID:                   repository.FromPgUUID(row.GameID),
		RoomCode:             row.RoomCode,
		HostID:               repository.FromPgUUID(row.HostID),
		Status:               row.Status,
		Round:                int(row.Round),
		CurrentQuestionIndex: int(row.CurrentQuestionIndex),
		Questions:            nonNilStrings(row.Questions),
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
	for _, id := range row.PlayerIds {
		doc.PlayerIDs = append(doc.PlayerIDs, repository.FromPgUUID(id))
	}
	if row.WinnerID.Valid {
		w := repository.FromPgUUID(row.WinnerID)
		doc.WinnerID = &w
	}
	return doc
}

// GameDocFromSnapshot projects a snapshot onto the persisted document shape.
func GameDocFromSnapshot(s Snapshot) GameDoc {
	doc := GameDoc{
		ID:                   s.GameID,
		RoomCode:             s.RoomCode,
		HostID:               s.HostID,
		Status:               s.Status,
		Round:                s.Round,
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		Questions:            slices.Clone(s.QuestionIDs),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	for _, p := range s.Players {
		doc.PlayerIDs = append(doc.PlayerIDs, p.ID)
	}
	if s.WinnerID != nil {
		w := *s.WinnerID
		doc.WinnerID = &w
	}
	return doc
}

// diffGameDoc lists the fields of next that differ from prev.
func diffGameDoc(prev, next GameDoc) (repository.GamePatch, bool) {
	var patch repository.GamePatch
	changed := false
	if !slices.Equal(prev.PlayerIDs, next.PlayerIDs) {
		patch.PlayerIDs = next.PlayerIDs
		changed = true
	}
	if prev.Status != next.Status {
		patch.Status = &next.Status
		changed = true
	}
	if prev.Round != next.Round {
		patch.Round = &next.Round
		changed = true
	}
	if prev.CurrentQuestionIndex != next.CurrentQuestionIndex {
		patch.CurrentQuestionIndex = &next.CurrentQuestionIndex
		changed = true
	}
	if next.WinnerID != nil && (prev.WinnerID == nil || *prev.WinnerID != *next.WinnerID) {
		patch.WinnerID = next.WinnerID
		changed = true
	}
	return patch, changed
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
