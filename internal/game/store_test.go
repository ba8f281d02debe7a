package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
)

type mockQueries struct {
	mock.Mock
}

func (m *mockQueries) CreateGame(ctx context.Context, arg sqlcgen.CreateGameParams) (sqlcgen.Game, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(sqlcgen.Game), args.Error(1)
}

func (m *mockQueries) GetGame(ctx context.Context, gameID pgtype.UUID) (sqlcgen.Game, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(sqlcgen.Game), args.Error(1)
}

func (m *mockQueries) ListGamesByRoomCode(ctx context.Context, roomCode string) ([]sqlcgen.Game, error) {
	args := m.Called(ctx, roomCode)
	return args.Get(0).([]sqlcgen.Game), args.Error(1)
}

func (m *mockQueries) CreatePlayer(ctx context.Context, arg sqlcgen.CreatePlayerParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQueries) GetPlayer(ctx context.Context, playerID pgtype.UUID) (sqlcgen.Player, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(sqlcgen.Player), args.Error(1)
}

func (m *mockQueries) UpdatePlayerProgress(ctx context.Context, arg sqlcgen.UpdatePlayerProgressParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQueries) InsertCoinTransaction(ctx context.Context, arg sqlcgen.InsertCoinTransactionParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQueries) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func newMockedStore() (*PostgresStore, *mockQueries) {
	q := new(mockQueries)
	return NewPostgresStore(
		repository.NewGameRepository(q, q),
		repository.NewPlayerRepository(q),
		repository.NewCoinRepository(q),
	), q
}

func TestPostgresStoreGameDocs(t *testing.T) {
	store, q := newMockedStore()
	ctx := context.Background()
	host := uuid.New()
	doc := GameDoc{
		ID:        uuid.New(),
		RoomCode:  "123456",
		HostID:    host,
		PlayerIDs: []uuid.UUID{host},
		Status:    StatusWaiting,
		Round:     1,
	}

	q.On("CreateGame", mock.Anything, mock.MatchedBy(func(p sqlcgen.CreateGameParams) bool {
		return p.RoomCode == "123456" && p.Questions != nil && len(p.PlayerIds) == 1
	})).Return(sqlcgen.Game{}, nil).Once()
	require.NoError(t, store.CreateGameDoc(ctx, doc))

	winner := host
	q.On("ListGamesByRoomCode", mock.Anything, "123456").Return([]sqlcgen.Game{{
		GameID:    repository.PgUUID(doc.ID),
		RoomCode:  "123456",
		HostID:    repository.PgUUID(host),
		PlayerIds: []pgtype.UUID{repository.PgUUID(host)},
		Status:    StatusFinished,
		Round:     5,
		WinnerID:  repository.PgUUID(winner),
		CreatedAt: pgtype.Timestamptz{Time: time.Unix(100, 0), Valid: true},
	}}, nil).Once()
	docs, err := store.ListGameDocsByRoomID(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
	assert.Equal(t, []uuid.UUID{host}, docs[0].PlayerIDs)
	require.NotNil(t, docs[0].WinnerID)
	assert.Equal(t, winner, *docs[0].WinnerID)
	assert.Empty(t, docs[0].Questions)

	status := StatusPlaying
	q.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil).Once()
	err = store.UpdateGameDoc(ctx, doc.ID, repository.GamePatch{Status: &status})
	assert.ErrorIs(t, err, ErrDocNotFound)

	q.AssertExpectations(t)
}

func TestPostgresStorePlayerDocs(t *testing.T) {
	store, q := newMockedStore()
	ctx := context.Background()
	p := tracker.Player{ID: uuid.New(), Name: "Alice", Status: tracker.StatusOrange, Coins: 925, Level: 2, Badges: []string{"champion"}}

	q.On("GetPlayer", mock.Anything, repository.PgUUID(p.ID)).Return(sqlcgen.Player{}, pgx.ErrNoRows).Once()
	_, err := store.GetPlayerDoc(ctx, p.ID)
	assert.ErrorIs(t, err, ErrDocNotFound)

	q.On("UpdatePlayerProgress", mock.Anything, mock.MatchedBy(func(arg sqlcgen.UpdatePlayerProgressParams) bool {
		return arg.Coins == 925 && arg.Status == string(tracker.StatusOrange) && arg.Achievements != nil
	})).Return(nil).Once()
	require.NoError(t, store.UpdatePlayerDoc(ctx, p))

	q.On("GetPlayer", mock.Anything, repository.PgUUID(p.ID)).Return(sqlcgen.Player{
		PlayerID: repository.PgUUID(p.ID),
		Name:     "Alice",
		Status:   string(tracker.StatusOrange),
		Coins:    925,
		Level:    2,
		Badges:   []string{"champion"},
	}, nil).Once()
	got, err := store.GetPlayerDoc(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 925, got.Coins)
	assert.True(t, got.HasBadge("champion"))
	assert.NotNil(t, got.Achievements)

	q.AssertExpectations(t)
}

func TestPostgresStoreCoinTransactions(t *testing.T) {
	store, q := newMockedStore()
	gameID := uuid.New()
	txs := []tracker.CoinTransaction{
		{ID: uuid.New(), PlayerID: uuid.New(), Amount: 100, Reason: "correct_answer", Timestamp: time.Unix(10, 0)},
		{ID: uuid.New(), PlayerID: uuid.New(), Amount: -75, Reason: "wrong_answer", Timestamp: time.Unix(20, 0)},
	}

	q.On("InsertCoinTransaction", mock.Anything, mock.MatchedBy(func(arg sqlcgen.InsertCoinTransactionParams) bool {
		return arg.GameID == repository.PgUUID(gameID) && arg.CreatedAt.Valid
	})).Return(nil).Twice()
	require.NoError(t, store.InsertCoinTransactions(context.Background(), gameID, txs))
	q.AssertExpectations(t)
}

func TestDiffGameDoc(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	prev := GameDoc{PlayerIDs: []uuid.UUID{a}, Status: StatusWaiting, Round: 1}

	_, changed := diffGameDoc(prev, prev)
	assert.False(t, changed)

	next := prev
	next.PlayerIDs = []uuid.UUID{a, b}
	next.Status = StatusFinished
	next.WinnerID = &b
	patch, changed := diffGameDoc(prev, next)
	require.True(t, changed)
	assert.Equal(t, []uuid.UUID{a, b}, patch.PlayerIDs)
	require.NotNil(t, patch.Status)
	assert.Equal(t, StatusFinished, *patch.Status)
	assert.Nil(t, patch.Round)
	require.NotNil(t, patch.WinnerID)
	assert.Equal(t, b, *patch.WinnerID)
}
