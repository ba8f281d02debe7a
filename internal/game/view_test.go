package game

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
)

func TestDeriveViewStateIsPure(t *testing.T) {
	h := newHarness(t, 3)
	h.start()
	h.answer(0, selectionCorrect)
	s := h.snap()

	first := DeriveViewState(s)
	second := DeriveViewState(s)
	assert.Equal(t, first, second)

	assert.Equal(t, s.Version, first.Version)
	assert.Equal(t, 1, first.CurrentRound)
	assert.Equal(t, 0, first.RoundStart)
	assert.Equal(t, 24, first.RoundEnd)
	assert.Equal(t, tracker.StatusGreen, first.PlayerStatus[h.ids[1]])
	assert.Equal(t, h.ids[0], first.Standings[0])
	assert.Nil(t, first.Winner)

	first.Players[0].Name = "changed"
	assert.NotEqual(t, "changed", DeriveViewState(s).Players[0].Name)
}

func TestReconcileKeepsHighestVersion(t *testing.T) {
	h := newHarness(t, 2)
	h.start()
	older := h.snap()
	h.answer(0, selectionCorrect)
	newer := h.snap()
	require.Greater(t, newer.Version, older.Version)

	view, replaced := Reconcile(ViewState{}, newer)
	assert.True(t, replaced)
	assert.Equal(t, newer.Version, view.Version)

	view, replaced = Reconcile(view, older)
	assert.False(t, replaced)
	assert.Equal(t, newer.Version, view.Version)

	view, replaced = Reconcile(view, newer)
	assert.False(t, replaced)
	assert.Equal(t, DeriveViewState(newer), view)
}

func TestSnapshotRoundTripsThroughJSON(t *testing.T) {
	h := newHarness(t, 2)
	h.start()
	require.NoError(t, h.engine.AdvanceRound(h.ids[0]))
	s := h.snap()
	require.NotNil(t, s.Chrono)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, DeriveViewState(s).Standings, DeriveViewState(decoded).Standings)
	assert.Equal(t, s.Chrono.TimeLeftMs, decoded.Chrono.TimeLeftMs)

	v := DeriveViewState(decoded)
	raw, err = json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(raw), h.ids[0].String())
}

func TestRankPlayers(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	ranked := RankPlayers([]tracker.Player{
		{ID: a, Status: tracker.StatusOrange, Score: 900},
		{ID: b, Status: tracker.StatusGreen, Score: 100},
		{ID: c, Status: tracker.StatusEliminated, IsEliminated: true, Score: 5000},
		{ID: d, Status: tracker.StatusGreen, Score: 300},
	})
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, p := range ranked {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uuid.UUID{d, b, a, c}, ids)
}
