package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

type mockGameStore struct {
	mock.Mock
}

func (m *mockGameStore) CreateGame(ctx context.Context, arg sqlcgen.CreateGameParams) (sqlcgen.Game, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(sqlcgen.Game), args.Error(1)
}

func (m *mockGameStore) GetGame(ctx context.Context, gameID pgtype.UUID) (sqlcgen.Game, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(sqlcgen.Game), args.Error(1)
}

func (m *mockGameStore) ListGamesByRoomCode(ctx context.Context, roomCode string) ([]sqlcgen.Game, error) {
	args := m.Called(ctx, roomCode)
	return args.Get(0).([]sqlcgen.Game), args.Error(1)
}

type mockExecer struct {
	mock.Mock
}

func (m *mockExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func TestGameRepository_Create(t *testing.T) {
	store := new(mockGameStore)
	repo := NewGameRepository(store, new(mockExecer))

	params := sqlcgen.CreateGameParams{
		GameID:    uuidFromByte(1),
		RoomCode:  "123456",
		HostID:    uuidFromByte(2),
		PlayerIds: []pgtype.UUID{uuidFromByte(2)},
		Status:    "waiting",
		Questions: []string{"q1", "q2"},
	}
	expect := sqlcgen.Game{GameID: uuidFromByte(1), RoomCode: "123456", Status: "waiting"}
	store.On("CreateGame", mock.Anything, params).Return(expect, nil)

	got, err := repo.Create(context.Background(), params)
	assert.NoError(t, err)
	assert.Equal(t, expect, got)
	store.AssertExpectations(t)
}

func TestGameRepository_ListByRoomCode(t *testing.T) {
	store := new(mockGameStore)
	repo := NewGameRepository(store, new(mockExecer))

	games := []sqlcgen.Game{{RoomCode: "654321"}, {RoomCode: "654321"}}
	store.On("ListGamesByRoomCode", mock.Anything, "654321").Return(games, nil)

	got, err := repo.ListByRoomCode(context.Background(), "654321")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	store.AssertExpectations(t)
}

func TestGameRepository_PatchBuildsPartialUpdate(t *testing.T) {
	db := new(mockExecer)
	repo := NewGameRepository(new(mockGameStore), db)

	gameID := googleUUIDFromByte(3)
	status := "playing"
	round := 3
	db.On("Exec", mock.Anything,
		"UPDATE games SET status = $1, round = $2, updated_at = NOW() WHERE game_id = $3",
		mock.MatchedBy(func(args []any) bool {
			return len(args) == 3 && args[0] == "playing" && args[1] == int32(3)
		}),
	).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.Patch(context.Background(), gameID, GamePatch{Status: &status, Round: &round})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestGameRepository_PatchEmpty(t *testing.T) {
	db := new(mockExecer)
	repo := NewGameRepository(new(mockGameStore), db)

	err := repo.Patch(context.Background(), uuid.New(), GamePatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)
	db.AssertNotCalled(t, "Exec")
}

func TestGameRepository_PatchMissingRow(t *testing.T) {
	db := new(mockExecer)
	repo := NewGameRepository(new(mockGameStore), db)

	idx := 7
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.Patch(context.Background(), uuid.New(), GamePatch{CurrentQuestionIndex: &idx})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGameRepository_PatchExecError(t *testing.T) {
	db := new(mockExecer)
	repo := NewGameRepository(new(mockGameStore), db)

	winner := uuid.New()
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, errors.New("conn reset"))

	err := repo.Patch(context.Background(), uuid.New(), GamePatch{WinnerID: &winner})
	assert.ErrorContains(t, err, "conn reset")
}

func TestUUIDConversionRoundTrip(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, FromPgUUID(PgUUID(id)))
	assert.Equal(t, uuid.Nil, FromPgUUID(pgtype.UUID{}))
}
