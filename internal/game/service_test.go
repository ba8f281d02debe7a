package game

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
	"github.com/gokatarajesh/coupsurcoup/internal/realtime"
)

type serviceFixture struct {
	svc     *Service
	clock   *fakeClock
	store   *memoryStore
	state   *memoryState
	channel *realtime.MemoryChannel

	mu    sync.Mutex
	views map[string][]ViewState
}

func newServiceFixture(t *testing.T, qs []question.Question) *serviceFixture {
	t.Helper()
	logger := zerolog.New(io.Discard)
	f := &serviceFixture{
		clock:   newFakeClock(),
		store:   newMemoryStore(),
		state:   newMemoryState(),
		channel: realtime.NewMemoryChannel(),
		views:   map[string][]ViewState{},
	}
	questions := question.NewService(newMemoryBank(qs), nil, logger, question.ServiceOptions{})
	f.svc = NewService(questions, f.store, f.state, f.channel, NewRoomManager(logger), ServiceOptions{
		MaxPlayers: 4,
		Clock:      f.clock,
		NewBot:     func() *Bot { return NewBot(rand.NewPCG(1, 1)) },
	}, logger)
	f.svc.OnView(func(code string, v ViewState) {
		f.mu.Lock()
		f.views[code] = append(f.views[code], v)
		f.mu.Unlock()
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = f.svc.Shutdown(ctx)
	})
	return f
}

func (f *serviceFixture) lastView(code string) (ViewState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vs := f.views[code]
	if len(vs) == 0 {
		return ViewState{}, false
	}
	return vs[len(vs)-1], true
}

func (f *serviceFixture) viewCount(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.views[code])
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestCreateRoomPersistsAndPublishes(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, host, err := f.svc.CreateRoom(ctx, "Alice", "fox", 0)
	require.NoError(t, err)
	assert.Len(t, room.Code, 6)
	assert.Equal(t, 4, room.MaxPlayers)
	assert.True(t, host.IsHost)
	assert.Equal(t, room.HostID, host.ID)

	doc, ok := f.store.game(room.Code)
	require.True(t, ok)
	assert.Equal(t, room.GameID, doc.ID)
	assert.Len(t, doc.Questions, question.SetSize())

	eventually(t, func() bool {
		doc, _ := f.store.game(room.Code)
		return len(doc.PlayerIDs) == 1
	})
	_, err = f.store.GetPlayerDoc(ctx, host.ID)
	require.NoError(t, err)

	eventually(t, func() bool {
		v, ok := f.lastView(room.Code)
		return ok && len(v.Players) == 1
	})
	v, _ := f.lastView(room.Code)
	assert.Equal(t, PhaseLobby, v.Phase)
	assert.Equal(t, 1, f.channel.Subscribers(realtime.GameKey("", room.Code)))
}

func TestCreateRoomFailsOnThinBank(t *testing.T) {
	qs := testQuestions()
	f := newServiceFixture(t, qs[:10])

	_, _, err := f.svc.CreateRoom(context.Background(), "Alice", "", 0)
	var insufficient *question.InsufficientBankError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, question.TypeSelection, insufficient.Type)
	assert.Empty(t, f.svc.rooms.Codes())
}

func TestJoinRoomRespectsCapacity(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 2)
	require.NoError(t, err)

	bob, err := f.svc.JoinRoom(ctx, room.Code, "Bob", "")
	require.NoError(t, err)
	assert.False(t, bob.IsHost)

	_, err = f.svc.JoinRoom(ctx, room.Code, "Carol", "")
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = f.svc.JoinRoom(ctx, "000000", "Dan", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAddBotsIsHostOnly(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 0)
	require.NoError(t, err)

	_, err = f.svc.AddBots(ctx, room.Code, uuid.New(), 2)
	assert.ErrorIs(t, err, ErrNotHost)

	bots, err := f.svc.AddBots(ctx, room.Code, room.HostID, 10)
	require.NoError(t, err)
	assert.Len(t, bots, 3)
	for _, b := range bots {
		assert.True(t, b.IsBot)
	}

	_, err = f.svc.AddBots(ctx, room.Code, room.HostID, 1)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestStartGameChecks(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.StartGame(ctx, room.Code, room.HostID), ErrNotEnoughPlayers)

	bob, err := f.svc.JoinRoom(ctx, room.Code, "Bob", "")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.StartGame(ctx, room.Code, bob.ID), ErrNotHost)

	unlock, err := f.state.LockStart(ctx, room.Code)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.StartGame(ctx, room.Code, room.HostID), ErrLockHeld)
	require.NoError(t, unlock())

	require.NoError(t, f.svc.StartGame(ctx, room.Code, room.HostID))
	assert.ErrorIs(t, f.svc.StartGame(ctx, room.Code, room.HostID), ErrGameStarted)

	eventually(t, func() bool {
		doc, _ := f.store.game(room.Code)
		return doc.Status == StatusPlaying && doc.Round == 1
	})
	_, err = f.svc.JoinRoom(ctx, room.Code, "Late", "")
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestFinishedGamePersistsLedger(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 0)
	require.NoError(t, err)
	bob, err := f.svc.JoinRoom(ctx, room.Code, "Bob", "")
	require.NoError(t, err)
	require.NoError(t, f.svc.StartGame(ctx, room.Code, room.HostID))

	require.NoError(t, f.svc.Act(ctx, room.Code, room.HostID, Action{Kind: ActionAdvanceRound}))
	view, err := f.svc.State(ctx, room.Code)
	require.NoError(t, err)
	require.Equal(t, PhaseChrono, view.Phase)

	f.clock.Advance(f.svc.settings.ChronoClock)
	require.NoError(t, f.svc.Act(ctx, room.Code, room.HostID, Action{Kind: ActionAdvanceRound}))

	view, err = f.svc.State(ctx, room.Code)
	require.NoError(t, err)
	require.Equal(t, StatusFinished, view.Status)
	require.NotNil(t, view.Winner)

	eventually(t, func() bool {
		doc, _ := f.store.game(room.Code)
		return doc.Status == StatusFinished && doc.WinnerID != nil
	})
	eventually(t, func() bool {
		for _, tx := range f.store.transactions() {
			if tx.Reason == tracker.ReasonWinnerBonus {
				return true
			}
		}
		return false
	})

	winner, err := f.store.GetPlayerDoc(ctx, view.Winner.ID)
	require.NoError(t, err)
	assert.Contains(t, winner.Badges, tracker.BadgeChampion)

	loserID := room.HostID
	if view.Winner.ID == room.HostID {
		loserID = bob.ID
	}
	loser, err := f.store.GetPlayerDoc(ctx, loserID)
	require.NoError(t, err)
	assert.True(t, loser.IsEliminated)

	err = f.svc.Act(ctx, room.Code, bob.ID, Action{Kind: ActionSelectOption, Index: 0})
	assert.ErrorIs(t, err, ErrGameFinished)
}

func TestStateFallsBackToStoredSnapshot(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	require.NoError(t, f.state.SaveSnapshot(ctx, Snapshot{Version: 7, RoomCode: "777777", Status: StatusPlaying, Round: 3}))
	view, err := f.svc.State(ctx, "777777")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), view.Version)
	assert.Equal(t, 3, view.CurrentRound)

	_, err = f.svc.State(ctx, "123123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestOlderSnapshotsDoNotReplaceView(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 0)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, room.Code, "Bob", "")
	require.NoError(t, err)
	eventually(t, func() bool {
		v, ok := f.lastView(room.Code)
		return ok && len(v.Players) == 2
	})

	before := f.viewCount(room.Code)
	stale, err := json.Marshal(Snapshot{Version: 1, RoomCode: room.Code})
	require.NoError(t, err)
	require.NoError(t, f.channel.Publish(ctx, realtime.GameKey("", room.Code), stale))
	require.NoError(t, f.channel.Publish(ctx, realtime.GameKey("", room.Code), []byte("not json")))

	assert.Equal(t, before, f.viewCount(room.Code))
	v, _ := f.lastView(room.Code)
	assert.Len(t, v.Players, 2)
}

func TestPersistFailuresAreCounted(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()
	f.store.mu.Lock()
	f.store.failUpdate = errors.New("db down")
	f.store.mu.Unlock()

	before := testutil.ToFloat64(persistErrorsTotal.WithLabelValues("game_doc"))
	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 0)
	require.NoError(t, err)

	eventually(t, func() bool {
		return testutil.ToFloat64(persistErrorsTotal.WithLabelValues("game_doc")) > before
	})
	eventually(t, func() bool { return f.state.version(room.Code) > 0 })
}

func TestShutdownDropsSubscriptions(t *testing.T) {
	f := newServiceFixture(t, testQuestions())
	ctx := context.Background()

	room, _, err := f.svc.CreateRoom(ctx, "Alice", "", 0)
	require.NoError(t, err)
	key := realtime.GameKey("", room.Code)
	require.Equal(t, 1, f.channel.Subscribers(key))

	require.NoError(t, f.svc.Shutdown(ctx))
	assert.Zero(t, f.channel.Subscribers(key))
	assert.ErrorIs(t, f.svc.Watch(ctx, room.Code), realtime.ErrClosed)
}
