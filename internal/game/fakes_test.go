package game

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// memoryBank serves testQuestions as raw bank records.
type memoryBank struct {
	records map[string]question.Record
	order   []string
}

func newMemoryBank(qs []question.Question) *memoryBank {
	b := &memoryBank{records: map[string]question.Record{}}
	for _, q := range qs {
		r := question.Record{ID: q.ID, Type: q.Type, Category: q.Category, Question: q.Prompt}
		idx := q.CorrectIndex
		if q.IsTrap() {
			r.Propositions = slices.Clone(q.Options)
			r.FalseIndex = &idx
		} else {
			r.Options = slices.Clone(q.Options)
			r.CorrectIndex = &idx
		}
		b.records[r.ID] = r
		b.order = append(b.order, r.ID)
	}
	return b
}

func (b *memoryBank) ListQuestionIDsByType(_ context.Context, qType string, _ int) ([]string, error) {
	var ids []string
	for _, id := range b.order {
		if b.records[id].Type == qType {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (b *memoryBank) GetQuestionByID(_ context.Context, id string) (question.Record, error) {
	r, ok := b.records[id]
	if !ok {
		return question.Record{}, question.ErrNotFound
	}
	return r, nil
}

type memoryStore struct {
	mu         sync.Mutex
	games      map[uuid.UUID]GameDoc
	players    map[uuid.UUID]tracker.Player
	txs        []tracker.CoinTransaction
	patches    int
	failUpdate error
}

var _ Store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		games:   map[uuid.UUID]GameDoc{},
		players: map[uuid.UUID]tracker.Player{},
	}
}

func (m *memoryStore) CreateGameDoc(_ context.Context, doc GameDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[doc.ID] = doc
	return nil
}

func (m *memoryStore) UpdateGameDoc(_ context.Context, id uuid.UUID, patch repository.GamePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	doc, ok := m.games[id]
	if !ok {
		return ErrDocNotFound
	}
	if patch.PlayerIDs != nil {
		doc.PlayerIDs = slices.Clone(patch.PlayerIDs)
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	if patch.Round != nil {
		doc.Round = *patch.Round
	}
	if patch.CurrentQuestionIndex != nil {
		doc.CurrentQuestionIndex = *patch.CurrentQuestionIndex
	}
	if patch.WinnerID != nil {
		w := *patch.WinnerID
		doc.WinnerID = &w
	}
	m.games[id] = doc
	m.patches++
	return nil
}

func (m *memoryStore) ListGameDocsByRoomID(_ context.Context, roomCode string) ([]GameDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []GameDoc
	for _, doc := range m.games {
		if doc.RoomCode == roomCode {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memoryStore) CreatePlayerDoc(_ context.Context, _ uuid.UUID, p tracker.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
	return nil
}

func (m *memoryStore) GetPlayerDoc(_ context.Context, id uuid.UUID) (tracker.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return tracker.Player{}, ErrDocNotFound
	}
	return p, nil
}

func (m *memoryStore) UpdatePlayerDoc(_ context.Context, p tracker.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[p.ID]; !ok {
		return ErrDocNotFound
	}
	m.players[p.ID] = p
	return nil
}

func (m *memoryStore) InsertCoinTransactions(_ context.Context, _ uuid.UUID, txs []tracker.CoinTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, txs...)
	return nil
}

func (m *memoryStore) game(code string) (GameDoc, bool) {
	docs, _ := m.ListGameDocsByRoomID(context.Background(), code)
	if len(docs) == 0 {
		return GameDoc{}, false
	}
	return docs[0], true
}

func (m *memoryStore) transactions() []tracker.CoinTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.txs)
}

// memoryState is the in-process SnapshotStore.
type memoryState struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
	locks map[string]bool
}

var _ SnapshotStore = (*memoryState)(nil)

func newMemoryState() *memoryState {
	return &memoryState{snaps: map[string]Snapshot{}, locks: map[string]bool{}}
}

func (m *memoryState) SaveSnapshot(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.snaps[s.RoomCode]; ok && cur.Version >= s.Version {
		return nil
	}
	m.snaps[s.RoomCode] = s
	return nil
}

func (m *memoryState) LoadSnapshot(_ context.Context, roomCode string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[roomCode]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memoryState) LockStart(_ context.Context, roomCode string) (func() error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[roomCode] {
		return nil, ErrLockHeld
	}
	m.locks[roomCode] = true
	return func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.locks[roomCode] {
			return errors.New("lock not held")
		}
		delete(m.locks, roomCode)
		return nil
	}, nil
}

func (m *memoryState) version(roomCode string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snaps[roomCode].Version
}
