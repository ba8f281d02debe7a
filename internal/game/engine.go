package game

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/coupsurcoup/internal/game/rewards"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/logging"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// Sink receives every committed snapshot, in commit order.
type Sink interface {
	Commit(Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

func (f SinkFunc) Commit(s Snapshot) { f(s) }

// EngineConfig wires one engine.
type EngineConfig struct {
	GameID      uuid.UUID
	RoomCode    string
	HostID      uuid.UUID
	QuestionIDs []string
	Settings    Settings
	Rewards     *rewards.Engine
	Clock       Clock
	Bot         *Bot
	Sink        Sink
	Logger      zerolog.Logger
}

// Engine is the authoritative state of one game. Every entry point (player
// action, turn timer, bot timer) runs under mu, and every successful mutation
// ends with a commit that bumps Version and hands a snapshot to the sink.
type Engine struct {
	mu sync.Mutex

	gameID   uuid.UUID
	roomCode string
	hostID   uuid.UUID
	settings Settings
	rewards  *rewards.Engine
	clock    Clock
	bot      *Bot
	sink     Sink
	logger   zerolog.Logger
	tracker  *tracker.Tracker

	questionIDs []string
	questions   []question.Question

	status  string
	round   int
	phase   Phase
	qIndex  int
	version uint64
	created time.Time
	updated time.Time

	timers   PhaseTimers
	token    uint64
	turn     uuid.UUID
	deadline time.Time
	answered bool
	last     *AnswerView

	sel    selectiveState
	trap   *trapState
	duel   *duelState
	chrono *chronoState
	clue   *clueState

	winner    uuid.UUID
	hasWinner bool
}

// NewEngine builds an engine in the lobby phase.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Bot == nil {
		cfg.Bot = NewBot(nil)
	}
	if cfg.Rewards == nil {
		cfg.Rewards = rewards.NewEngine(rewards.DefaultRules())
	}
	if cfg.GameID == uuid.Nil {
		cfg.GameID = uuid.New()
	}
	now := cfg.Clock.Now()
	return &Engine{
		gameID:      cfg.GameID,
		roomCode:    cfg.RoomCode,
		hostID:      cfg.HostID,
		settings:    cfg.Settings,
		rewards:     cfg.Rewards,
		clock:       cfg.Clock,
		bot:         cfg.Bot,
		sink:        cfg.Sink,
		logger:      logging.ForGame(cfg.Logger.With().Str("component", "game_engine").Logger(), cfg.RoomCode),
		tracker:     tracker.New(cfg.Rewards, cfg.Clock.Now),
		questionIDs: slices.Clone(cfg.QuestionIDs),
		status:      StatusWaiting,
		phase:       PhaseLobby,
		created:     now,
		updated:     now,
	}
}

// ID is the game document id.
func (e *Engine) ID() uuid.UUID { return e.gameID }

// RoomCode is the 6-digit lobby code.
func (e *Engine) RoomCode() string { return e.roomCode }

// HostID is the player allowed to start and advance the game.
func (e *Engine) HostID() uuid.UUID { return e.hostID }

// AddPlayer seats a player while the game is in the lobby.
func (e *Engine) AddPlayer(j tracker.Join) (tracker.Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusWaiting {
		return tracker.Player{}, ErrGameStarted
	}
	j.IsHost = j.ID == e.hostID
	p, err := e.tracker.Add(j)
	if err != nil {
		return tracker.Player{}, err
	}
	e.commit()
	return p, nil
}

// Player returns one player's current document.
func (e *Engine) Player(id uuid.UUID) (tracker.Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Player(id)
}

// PlayerCount is the number of seated players.
func (e *Engine) PlayerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tracker.Order())
}

// Start leaves the lobby and opens round 1 with the drawn questions.
func (e *Engine) Start(qs []question.Question) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusWaiting {
		return ErrGameStarted
	}
	if len(qs) != question.SetSize() {
		return ErrQuestionSet
	}
	if len(e.tracker.Active()) < 2 {
		return ErrNotEnoughPlayers
	}
	e.questions = slices.Clone(qs)
	e.questionIDs = make([]string, len(qs))
	for i, q := range qs {
		e.questionIDs[i] = q.ID
	}
	e.status = StatusPlaying
	gamesStartedTotal.Inc()
	e.logger.Info().Int("players", len(e.tracker.Order())).Msg("game started")

	e.enterSelective()
	e.commit()
	return nil
}

// Apply routes a player action to its entry point.
func (e *Engine) Apply(player uuid.UUID, a Action) error {
	switch a.Kind {
	case ActionSelectOption:
		return e.SelectOption(player, a.Index)
	case ActionChooseTheme:
		return e.ChooseTheme(player, a.Index)
	case ActionStartDuel:
		opponent, err := uuid.Parse(a.OpponentID)
		if err != nil {
			return ErrInvalidOpponent
		}
		return e.StartDuel(player, opponent)
	case ActionAdvanceRound:
		return e.AdvanceRound(player)
	case ActionClaimReward:
		return e.ClaimReward(player, a.ChallengeID)
	case ActionPass:
		return e.Pass(player)
	}
	return ErrWrongPhase
}

// SelectOption answers the current question (or claims a proposition in the
// trap list).
func (e *Engine) SelectOption(player uuid.UUID, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.playing(); err != nil {
		return err
	}
	var err error
	switch e.phase {
	case PhaseSelective:
		err = e.answerSelective(player, index)
	case PhaseDuelAnswer:
		err = e.answerDuel(player, index)
	case PhaseTrapList:
		err = e.pickTrap(player, index)
	case PhaseChrono:
		err = e.answerChrono(player, index)
	case PhaseClueGrid:
		err = e.answerClue(player, index)
	default:
		err = ErrWrongPhase
	}
	if err != nil {
		return err
	}
	e.commit()
	return nil
}

// StartDuel is the challenger naming an opponent.
func (e *Engine) StartDuel(player, opponent uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.playing(); err != nil {
		return err
	}
	if e.phase != PhaseDuelPick {
		return ErrWrongPhase
	}
	if err := e.pickOpponent(player, opponent); err != nil {
		return err
	}
	e.commit()
	return nil
}

// ChooseTheme is the opponent picking one of the two themed questions.
func (e *Engine) ChooseTheme(player uuid.UUID, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.playing(); err != nil {
		return err
	}
	if e.phase != PhaseDuelTheme {
		return ErrWrongPhase
	}
	if err := e.pickTheme(player, index); err != nil {
		return err
	}
	e.commit()
	return nil
}

// Pass skips a chrono question; the clock keeps running.
func (e *Engine) Pass(player uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.playing(); err != nil {
		return err
	}
	if e.phase != PhaseChrono {
		return ErrWrongPhase
	}
	if err := e.passChrono(player); err != nil {
		return err
	}
	e.commit()
	return nil
}

// AdvanceRound lets the host close the current round early.
func (e *Engine) AdvanceRound(player uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.playing(); err != nil {
		return err
	}
	if player != e.hostID {
		return ErrNotHost
	}
	switch e.phase {
	case PhaseSelective:
		e.leaveSelective()
	case PhaseTrapList:
		e.enterChrono()
	case PhaseClueGrid:
		e.finish()
	default:
		return ErrWrongPhase
	}
	e.logger.Info().Int("round", e.round).Str("phase", string(e.phase)).Msg("host advanced round")
	e.commit()
	return nil
}

// ClaimReward credits a completed challenge.
func (e *Engine) ClaimReward(player uuid.UUID, challengeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := ChallengeByID(challengeID)
	if !ok {
		return ErrUnknownChallenge
	}
	if err := e.tracker.ClaimChallenge(player, c); err != nil {
		return err
	}
	e.commit()
	return nil
}

// Snapshot returns the current state without committing.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Stop cancels every pending timer; the engine ignores them afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidate()
}

func (e *Engine) playing() error {
	switch e.status {
	case StatusFinished:
		return ErrGameFinished
	case StatusWaiting:
		return ErrWrongPhase
	}
	return nil
}

func (e *Engine) commit() {
	e.version++
	e.updated = e.clock.Now()
	if e.sink != nil {
		e.sink.Commit(e.snapshot())
	}
}

// invalidate cancels the phase timers and bumps the turn token so callbacks
// already in flight are dropped.
func (e *Engine) invalidate() {
	e.timers.CancelAll()
	e.token++
}

// after arms a phase timer bound to the current turn token.
func (e *Engine) after(d time.Duration, kind string, fn func()) {
	token := e.token
	e.timers.Add(e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if token != e.token {
			e.dropStale(kind, token)
			return
		}
		fn()
		e.commit()
	}))
}

func (e *Engine) dropStale(kind string, token uint64) {
	staleTimersTotal.WithLabelValues(kind).Inc()
	e.logger.Debug().
		Err(ErrStaleTimer).
		Str("kind", kind).
		Uint64("token", token).
		Uint64("current_token", e.token).
		Msg("dropping timer callback")
}

// beginTurn hands the turn to player; onTimeout runs if the deadline passes.
func (e *Engine) beginTurn(player uuid.UUID, d time.Duration, onTimeout func()) {
	e.invalidate()
	e.turn = player
	e.answered = false
	e.deadline = e.clock.Now().Add(d)
	e.after(d, "turn_timeout", onTimeout)
}

// scheduleBot arms the bot's answer for the current turn, if it is a bot's.
func (e *Engine) scheduleBot(req BotRequest, act func(choice int) error) {
	token := e.token
	e.timers.Add(e.bot.Schedule(e.clock, req, func(choice int) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if token != e.token {
			e.dropStale("bot", token)
			return
		}
		if err := act(choice); err != nil {
			e.logger.Debug().Err(err).Int("choice", choice).Msg("bot action rejected")
			return
		}
		e.commit()
	}))
}

// scheduleBotDecision arms a non-answer bot move (opponent or theme pick).
func (e *Engine) scheduleBotDecision(player uuid.UUID, decide func()) {
	if !e.isBot(player) {
		return
	}
	e.after(e.bot.Delay(e.botRequest(player, 0, 0, nil)), "bot", decide)
}

func (e *Engine) botRequest(player uuid.UUID, correct, n int, wrong []int) BotRequest {
	return BotRequest{
		IsBotTurn:    e.isBot(player),
		CorrectIndex: correct,
		NbOptions:    n,
		WrongIndexes: wrong,
		SuccessRate:  e.settings.BotSuccessRate,
		MinDelay:     e.settings.BotMinDelay,
		MaxDelay:     e.settings.BotMaxDelay,
	}
}

func (e *Engine) isBot(id uuid.UUID) bool {
	p, ok := e.tracker.Player(id)
	return ok && p.IsBot
}

// claimTurn checks that player may answer now.
func (e *Engine) claimTurn(player uuid.UUID) error {
	if player != e.turn {
		return ErrNotYourTurn
	}
	if e.answered {
		return ErrAlreadyAnswered
	}
	return nil
}

func (e *Engine) validOption(index int) error {
	if index < 0 || index >= len(e.questions[e.qIndex].Options) {
		return ErrInvalidOption
	}
	return nil
}

func (e *Engine) remaining() time.Duration {
	left := e.deadline.Sub(e.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

func (e *Engine) roundLabel() string {
	return strconv.Itoa(e.round)
}

// seekPlayable scans the block from idx (wrapping) for a question accept
// agrees to play, skipping unresolvable ones.
func (e *Engine) seekPlayable(b question.Bounds, idx int, accept func(question.Question) bool) (int, bool) {
	for i := 0; i < b.Len(); i++ {
		j := b.Wrap(idx + i)
		q := e.questions[j]
		if !q.Invalid && len(q.Options) > 1 && (accept == nil || accept(q)) {
			return j, true
		}
		e.skipQuestion(q, j)
	}
	return idx, false
}

func (e *Engine) skipQuestion(q question.Question, idx int) {
	skippedQuestionsTotal.WithLabelValues(e.roundLabel()).Inc()
	e.logger.Warn().
		Str("question_id", q.ID).
		Int("index", idx).
		Int("round", e.round).
		Msg("skipping unplayable question")
}

// nextActiveAfter walks the join ring from id to the next non-eliminated player.
func (e *Engine) nextActiveAfter(id uuid.UUID) (uuid.UUID, bool) {
	order := e.tracker.Order()
	start := slices.Index(order, id)
	for i := 1; i <= len(order); i++ {
		cand := order[(start+i)%len(order)]
		if e.tracker.IsActive(cand) {
			return cand, true
		}
	}
	return uuid.Nil, false
}

// strike applies one ladder step and reports the resulting status.
func (e *Engine) strike(player uuid.UUID, timedOut bool, reason string) tracker.Status {
	kind, outcome := tracker.StrikeWrong, "wrong"
	if timedOut {
		kind, outcome = tracker.StrikeTimeout, "timeout"
	}
	answersTotal.WithLabelValues(e.roundLabel(), outcome).Inc()
	status, err := e.tracker.Strike(player, kind, reason)
	if err != nil {
		e.logger.Warn().Err(err).Str("player_id", player.String()).Msg("strike rejected")
		return ""
	}
	if status == tracker.StatusEliminated {
		eliminationsTotal.WithLabelValues("strikes").Inc()
		e.logger.Info().Str("player_id", player.String()).Int("round", e.round).Msg("player eliminated")
	}
	return status
}

func (e *Engine) recordCorrect(player uuid.UUID, remaining, turn time.Duration) {
	answersTotal.WithLabelValues(e.roundLabel(), "correct").Inc()
	out, err := e.tracker.RecordCorrect(player, remaining, turn)
	if err != nil {
		e.logger.Warn().Err(err).Str("player_id", player.String()).Msg("correct answer not recorded")
		return
	}
	if out.LevelsGained > 0 {
		e.logger.Debug().Str("player_id", player.String()).Int("levels", out.LevelsGained).Msg("level up")
	}
}

func (e *Engine) eliminate(player uuid.UUID, cause string) {
	if !e.tracker.IsActive(player) {
		return
	}
	if err := e.tracker.Eliminate(player); err != nil {
		e.logger.Warn().Err(err).Str("player_id", player.String()).Msg("eliminate failed")
		return
	}
	eliminationsTotal.WithLabelValues(cause).Inc()
	e.logger.Info().Str("player_id", player.String()).Str("cause", cause).Msg("player eliminated")
}

// declareWinner runs once per game: winner bonus, champion badge, then the
// bonus clue grid.
func (e *Engine) declareWinner(winner uuid.UUID) {
	if e.hasWinner {
		return
	}
	e.hasWinner = true
	e.winner = winner
	for _, id := range e.tracker.Active() {
		if id != winner {
			e.eliminate(id, "final")
		}
	}
	if err := e.tracker.Credit(winner, e.rewards.Rules().WinnerBonus, tracker.ReasonWinnerBonus); err != nil {
		e.logger.Error().Err(err).Msg("winner bonus failed")
	}
	_, _ = e.tracker.AwardBadge(winner, tracker.BadgeChampion)
	e.logger.Info().Str("winner_id", winner.String()).Msg("winner declared")
	e.enterClueGrid()
}

func (e *Engine) finish() {
	e.invalidate()
	e.status = StatusFinished
	e.phase = PhaseFinished
	e.turn = uuid.Nil
	e.deadline = time.Time{}
	gamesFinishedTotal.Inc()
	e.logger.Info().Str("winner_id", e.winner.String()).Msg("game finished")
}
