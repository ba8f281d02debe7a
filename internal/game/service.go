package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/coupsurcoup/internal/game/rewards"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/logging"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
	"github.com/gokatarajesh/coupsurcoup/internal/realtime"
)

const persistTimeout = 5 * time.Second

// ViewObserver receives every view that replaced a room's previous one.
type ViewObserver func(roomCode string, view ViewState)

// Service orchestrates rooms, engines, persistence and snapshot fan-out.
type Service struct {
	questions *question.Service
	store     Store
	state     SnapshotStore
	channel   realtime.Channel
	rooms     *RoomManager
	rewards   *rewards.Engine
	settings  Settings
	clock     Clock
	newBot    func() *Bot
	prefetch  chan<- question.PrefetchRequest
	prefix    string
	minPlayer int
	maxPlayer int
	root      zerolog.Logger
	logger    zerolog.Logger

	mu        sync.Mutex
	loops     map[string]*persistLoop
	watches   map[string]*watch
	observers []ViewObserver
	closed    bool
}

// ServiceOptions configures the game service.
type ServiceOptions struct {
	Settings      Settings
	Rewards       *rewards.Engine
	MinPlayers    int
	MaxPlayers    int
	ChannelPrefix string
	Clock         Clock
	NewBot        func() *Bot
	Prefetch      chan<- question.PrefetchRequest
}

type watch struct {
	view        ViewState
	unsubscribe realtime.Unsubscribe
}

// NewService creates a game service with all dependencies.
func NewService(
	questions *question.Service,
	store Store,
	state SnapshotStore,
	channel realtime.Channel,
	rooms *RoomManager,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	if opts.Settings.SelectiveTurn == 0 {
		opts.Settings = DefaultSettings()
	}
	if opts.Rewards == nil {
		opts.Rewards = rewards.NewEngine(rewards.DefaultRules())
	}
	if opts.MinPlayers < 2 {
		opts.MinPlayers = 2
	}
	if opts.MaxPlayers < opts.MinPlayers {
		opts.MaxPlayers = 8
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.NewBot == nil {
		opts.NewBot = func() *Bot { return NewBot(nil) }
	}

	return &Service{
		questions: questions,
		store:     store,
		state:     state,
		channel:   channel,
		rooms:     rooms,
		rewards:   opts.Rewards,
		settings:  opts.Settings,
		clock:     opts.Clock,
		newBot:    opts.NewBot,
		prefetch:  opts.Prefetch,
		prefix:    opts.ChannelPrefix,
		minPlayer: opts.MinPlayers,
		maxPlayer: opts.MaxPlayers,
		root:      logger,
		logger:    logger.With().Str("component", "game_service").Logger(),
		loops:     make(map[string]*persistLoop),
		watches:   make(map[string]*watch),
	}
}

// OnView registers an observer for reconciled views.
func (s *Service) OnView(fn ViewObserver) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// CreateRoom draws a question set, opens a lobby and seats the host.
func (s *Service) CreateRoom(ctx context.Context, hostName, avatar string, maxPlayers int) (*Room, tracker.Player, error) {
	ids, err := s.questions.DrawQuestionSet(ctx)
	if err != nil {
		return nil, tracker.Player{}, fmt.Errorf("draw question set: %w", err)
	}
	if maxPlayers <= 0 || maxPlayers > s.maxPlayer {
		maxPlayers = s.maxPlayer
	}

	hostID := uuid.New()
	gameID := uuid.New()
	var loop *persistLoop
	room, err := s.rooms.Reserve(func(code string) (*Room, error) {
		loop = newPersistLoop(s, code, gameID)
		engine := NewEngine(EngineConfig{
			GameID:      gameID,
			RoomCode:    code,
			HostID:      hostID,
			QuestionIDs: ids,
			Settings:    s.settings,
			Rewards:     s.rewards,
			Clock:       s.clock,
			Bot:         s.newBot(),
			Sink:        loop,
			Logger:      s.root,
		})
		return &Room{
			Code:       code,
			GameID:     gameID,
			HostID:     hostID,
			MaxPlayers: maxPlayers,
			CreatedAt:  s.clock.Now(),
			engine:     engine,
		}, nil
	})
	if err != nil {
		return nil, tracker.Player{}, err
	}

	doc := GameDocFromSnapshot(room.engine.Snapshot())
	if err := s.store.CreateGameDoc(ctx, doc); err != nil {
		s.rooms.Remove(room.Code)
		return nil, tracker.Player{}, fmt.Errorf("create game doc: %w", err)
	}
	loop.last = doc

	s.mu.Lock()
	s.loops[room.Code] = loop
	s.mu.Unlock()
	go loop.run()

	if err := s.Watch(ctx, room.Code); err != nil {
		s.logger.Warn().Err(err).Str("room_code", room.Code).Msg("realtime subscribe failed")
	}

	host, err := room.engine.AddPlayer(tracker.Join{ID: hostID, Name: hostName, Avatar: avatar})
	if err != nil {
		return nil, tracker.Player{}, fmt.Errorf("seat host: %w", err)
	}

	if s.prefetch != nil {
		select {
		case s.prefetch <- question.PrefetchRequest{RoomCode: room.Code, IDs: ids}:
		default:
			s.logger.Debug().Str("room_code", room.Code).Msg("prefetch queue full")
		}
	}
	return room, host, nil
}

// Room returns a live room.
func (s *Service) Room(code string) (*Room, error) {
	return s.rooms.Get(code)
}

// JoinRoom seats a human player in a lobby.
func (s *Service) JoinRoom(ctx context.Context, code, name, avatar string) (tracker.Player, error) {
	room, err := s.rooms.Get(code)
	if err != nil {
		return tracker.Player{}, err
	}
	room.seats.Lock()
	defer room.seats.Unlock()

	if room.engine.PlayerCount() >= room.MaxPlayers {
		return tracker.Player{}, ErrRoomFull
	}
	p, err := room.engine.AddPlayer(tracker.Join{ID: uuid.New(), Name: name, Avatar: avatar})
	if err != nil {
		return tracker.Player{}, err
	}
	s.logger.Info().
		Str("room_code", code).
		Str("player_id", p.ID.String()).
		Msg("player joined room")
	return p, nil
}

// AddBots fills up to count free seats with bots. Only the host may do this.
func (s *Service) AddBots(ctx context.Context, code string, hostID uuid.UUID, count int) ([]tracker.Player, error) {
	room, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}
	if hostID != room.HostID {
		return nil, ErrNotHost
	}
	room.seats.Lock()
	defer room.seats.Unlock()

	free := room.MaxPlayers - room.engine.PlayerCount()
	if free <= 0 {
		return nil, ErrRoomFull
	}
	count = min(count, free)

	added := make([]tracker.Player, 0, count)
	for i := 0; i < count; i++ {
		n := room.engine.PlayerCount() + 1
		p, err := room.engine.AddPlayer(tracker.Join{
			ID:    uuid.New(),
			Name:  fmt.Sprintf("Bot %d", n),
			IsBot: true,
		})
		if err != nil {
			return added, err
		}
		added = append(added, p)
	}
	return added, nil
}

// StartGame loads the drawn set and opens round 1. Only the host may start.
func (s *Service) StartGame(ctx context.Context, code string, hostID uuid.UUID) error {
	room, err := s.rooms.Get(code)
	if err != nil {
		return err
	}
	if hostID != room.HostID {
		return ErrNotHost
	}
	if room.engine.PlayerCount() < s.minPlayer {
		return ErrNotEnoughPlayers
	}

	unlock, err := s.state.LockStart(ctx, code)
	if err != nil {
		return fmt.Errorf("lock start: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("room_code", code).Msg("failed to release start lock")
		}
	}()

	qs, err := s.questions.LoadQuestions(ctx, room.engine.Snapshot().QuestionIDs)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	return room.engine.Start(qs)
}

// Act applies a player action to the room's engine.
func (s *Service) Act(ctx context.Context, code string, player uuid.UUID, a Action) error {
	room, err := s.rooms.Get(code)
	if err != nil {
		return err
	}
	return room.engine.Apply(player, a)
}

// State returns the freshest view known for a room: the reconciled realtime
// view, the local engine, then the stored snapshot.
func (s *Service) State(ctx context.Context, code string) (ViewState, error) {
	s.mu.Lock()
	w, ok := s.watches[code]
	var view ViewState
	if ok {
		view = w.view
	}
	s.mu.Unlock()

	if room, err := s.rooms.Get(code); err == nil {
		local := room.engine.Snapshot()
		if local.Version > view.Version {
			view = DeriveViewState(local)
		}
	}
	if view.Version > 0 {
		return view, nil
	}

	snap, err := s.state.LoadSnapshot(ctx, code)
	if err != nil {
		return ViewState{}, err
	}
	if snap == nil {
		return ViewState{}, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return DeriveViewState(*snap), nil
}

// Watch subscribes this instance to a room's snapshots. Calling it again for
// the same room is a no-op.
func (s *Service) Watch(ctx context.Context, code string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return realtime.ErrClosed
	}
	if _, ok := s.watches[code]; ok {
		s.mu.Unlock()
		return nil
	}
	w := &watch{}
	s.watches[code] = w
	s.mu.Unlock()

	unsubscribe, err := s.channel.Subscribe(ctx, realtime.GameKey(s.prefix, code), func(payload []byte) {
		s.receive(code, payload)
	})
	if err != nil {
		s.mu.Lock()
		delete(s.watches, code)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	w.unsubscribe = unsubscribe
	s.mu.Unlock()

	if snap, err := s.state.LoadSnapshot(ctx, code); err == nil && snap != nil {
		s.apply(code, *snap)
	}
	return nil
}

func (s *Service) receive(code string, payload []byte) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		s.logger.Warn().Err(err).Str("room_code", code).Msg("failed to decode snapshot")
		return
	}
	s.apply(code, snap)
}

func (s *Service) apply(code string, snap Snapshot) {
	s.mu.Lock()
	w, ok := s.watches[code]
	if !ok {
		s.mu.Unlock()
		return
	}
	view, replaced := Reconcile(w.view, snap)
	if !replaced {
		s.mu.Unlock()
		return
	}
	w.view = view
	observers := append([]ViewObserver(nil), s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(code, view)
	}
}

// Shutdown stops every engine, drains the persist loops and drops the
// realtime subscriptions.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	loops := make([]*persistLoop, 0, len(s.loops))
	for _, l := range s.loops {
		loops = append(loops, l)
	}
	watches := make([]*watch, 0, len(s.watches))
	for _, w := range s.watches {
		watches = append(watches, w)
	}
	s.mu.Unlock()

	for _, code := range s.rooms.Codes() {
		if room, err := s.rooms.Get(code); err == nil {
			room.engine.Stop()
		}
	}

	var err error
	for _, l := range loops {
		l.close()
		select {
		case <-l.done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	for _, w := range watches {
		if w.unsubscribe != nil {
			w.unsubscribe()
		}
	}
	s.logger.Info().Int("rooms", len(loops)).Msg("game service stopped")
	return err
}

// persistLoop writes one game's snapshots in commit order. Snapshots that
// arrive while a write is in flight are coalesced into the newest one.
type persistLoop struct {
	svc      *Service
	roomCode string
	gameID   uuid.UUID
	logger   zerolog.Logger

	mu      sync.Mutex
	pending *Snapshot
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once

	last    GameDoc
	known   map[uuid.UUID]bool
	flushed int
}

var _ Sink = (*persistLoop)(nil)

func newPersistLoop(svc *Service, roomCode string, gameID uuid.UUID) *persistLoop {
	return &persistLoop{
		svc:      svc,
		roomCode: roomCode,
		gameID:   gameID,
		logger:   logging.ForGame(svc.logger, roomCode),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		known:    make(map[uuid.UUID]bool),
	}
}

// Commit is called under the engine lock and never blocks.
func (l *persistLoop) Commit(snap Snapshot) {
	l.mu.Lock()
	if l.pending == nil || snap.Version > l.pending.Version {
		l.pending = &snap
	}
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *persistLoop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.wake:
			l.drain()
		case <-l.quit:
			l.drain()
			return
		}
	}
}

func (l *persistLoop) close() {
	l.once.Do(func() { close(l.quit) })
}

func (l *persistLoop) drain() {
	for {
		l.mu.Lock()
		snap := l.pending
		l.pending = nil
		l.mu.Unlock()
		if snap == nil {
			return
		}
		l.persist(*snap)
	}
}

func (l *persistLoop) persist(snap Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := l.svc.state.SaveSnapshot(ctx, snap); err != nil {
		l.fail("snapshot", snap.Version, err)
	}

	for _, p := range snap.Players {
		if l.known[p.ID] {
			continue
		}
		if err := l.svc.store.CreatePlayerDoc(ctx, l.gameID, p); err != nil {
			l.fail("player_doc", snap.Version, err)
			continue
		}
		l.known[p.ID] = true
	}

	doc := GameDocFromSnapshot(snap)
	if patch, changed := diffGameDoc(l.last, doc); changed {
		if err := l.svc.store.UpdateGameDoc(ctx, l.gameID, patch); err != nil {
			l.fail("game_doc", snap.Version, err)
		} else {
			l.last = doc
		}
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		l.fail("encode", snap.Version, err)
	} else if err := l.svc.channel.Publish(ctx, realtime.GameKey(l.svc.prefix, l.roomCode), raw); err != nil {
		l.fail("publish", snap.Version, err)
	}

	if snap.Status == StatusFinished {
		l.finalize(ctx, snap)
	}
}

// finalize writes player progress and the ledger entries not yet stored.
func (l *persistLoop) finalize(ctx context.Context, snap Snapshot) {
	for _, p := range snap.Players {
		if err := l.svc.store.UpdatePlayerDoc(ctx, p); err != nil {
			l.fail("player_progress", snap.Version, err)
		}
	}
	if l.flushed >= len(snap.CoinTransactions) {
		return
	}
	txs := snap.CoinTransactions[l.flushed:]
	if err := l.svc.store.InsertCoinTransactions(ctx, l.gameID, txs); err != nil {
		l.fail("coin_transactions", snap.Version, err)
		return
	}
	l.flushed = len(snap.CoinTransactions)
	l.logger.Info().Int("transactions", len(txs)).Msg("game ledger persisted")
}

func (l *persistLoop) fail(step string, version uint64, err error) {
	persistErrorsTotal.WithLabelValues(step).Inc()
	l.logger.Error().Err(err).Str("step", step).Uint64("version", version).Msg("snapshot persistence failed")
}
