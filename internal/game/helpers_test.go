package game

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires timers synchronously from Advance, in deadline order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, when: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) || (t.when.Equal(next.when) && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.mu.Unlock()
		next.fn()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Answer layout of the fixture set.
const (
	selectionCorrect = 0
	selectionWrong   = 1
	duelCorrect      = 1
	trapIndex        = 3
	chronoCorrect    = 0
	chronoWrong      = 1
	clueCorrect      = 2
)

func testQuestions() []question.Question {
	out := make([]question.Question, 0, question.SetSize())
	for _, quota := range question.Quotas {
		for i := 0; i < quota.Count; i++ {
			q := question.Question{
				ID:       fmt.Sprintf("%s-%02d", quota.Type, i),
				Type:     quota.Type,
				Category: fmt.Sprintf("cat-%s-%d", quota.Type, i),
				Prompt:   "?",
			}
			switch quota.Type {
			case question.TypeSelection:
				q.Options = []string{"a", "b", "c", "d"}
				q.CorrectIndex = selectionCorrect
			case question.TypeDuel, question.TypeFaceAFace:
				q.Options = []string{"a", "b", "c"}
				q.CorrectIndex = duelCorrect
			case question.TypeTrapList:
				q.Options = []string{"ok1", "ok2", "ok3", "trap"}
				q.CorrectIndex = trapIndex
				q.Spec = question.AnswerSpec{Kind: question.SpecTrapIndex, Index: trapIndex}
			case question.TypeChrono:
				q.Options = []string{"yes", "no"}
				q.CorrectIndex = chronoCorrect
			case question.TypeClueGrid:
				q.Options = []string{"a", "b", "c", "d"}
				q.CorrectIndex = clueCorrect
			}
			if q.Spec.Kind == "" {
				q.Spec = question.AnswerSpec{Kind: question.SpecExplicitIndex, Index: q.CorrectIndex}
			}
			out = append(out, q)
		}
	}
	return out
}

type harness struct {
	t      *testing.T
	clock  *fakeClock
	engine *Engine
	ids    []uuid.UUID

	mu    sync.Mutex
	snaps []Snapshot
}

type harnessOption func(*Settings, map[int]bool)

func withBots(idx ...int) harnessOption {
	return func(_ *Settings, bots map[int]bool) {
		for _, i := range idx {
			bots[i] = true
		}
	}
}

func withSettings(fn func(*Settings)) harnessOption {
	return func(s *Settings, _ map[int]bool) { fn(s) }
}

// newHarness seats n players; player 0 is the host.
func newHarness(t *testing.T, n int, opts ...harnessOption) *harness {
	t.Helper()
	settings := DefaultSettings()
	bots := map[int]bool{}
	for _, opt := range opts {
		opt(&settings, bots)
	}

	h := &harness{t: t, clock: newFakeClock()}
	for i := 0; i < n; i++ {
		h.ids = append(h.ids, uuid.New())
	}
	h.engine = NewEngine(EngineConfig{
		RoomCode: "424242",
		HostID:   h.ids[0],
		Settings: settings,
		Clock:    h.clock,
		Bot:      NewBot(rand.NewPCG(7, 11)),
		Sink:     SinkFunc(h.record),
		Logger:   zerolog.New(io.Discard),
	})
	for i, id := range h.ids {
		_, err := h.engine.AddPlayer(tracker.Join{ID: id, Name: fmt.Sprintf("p%d", i), IsBot: bots[i]})
		require.NoError(t, err)
	}
	return h
}

func (h *harness) record(s Snapshot) {
	h.mu.Lock()
	h.snaps = append(h.snaps, s)
	h.mu.Unlock()
}

func (h *harness) start() {
	h.t.Helper()
	require.NoError(h.t, h.engine.Start(testQuestions()))
}

func (h *harness) snap() Snapshot {
	return h.engine.Snapshot()
}

func (h *harness) player(i int) tracker.Player {
	h.t.Helper()
	p, ok := h.engine.Player(h.ids[i])
	require.True(h.t, ok)
	return p
}

func (h *harness) turn() uuid.UUID {
	h.t.Helper()
	s := h.snap()
	require.NotNil(h.t, s.Turn)
	return s.Turn.PlayerID
}

// answer submits index for player i and lets the reveal pause run out.
func (h *harness) answer(i, index int) {
	h.t.Helper()
	require.NoError(h.t, h.engine.SelectOption(h.ids[i], index))
	h.clock.Advance(h.engine.settings.RevealPause)
}

func (h *harness) reasons(i int, reason string) int {
	n := 0
	for _, tx := range h.snap().CoinTransactions {
		if tx.PlayerID == h.ids[i] && tx.Reason == reason {
			n++
		}
	}
	return n
}
