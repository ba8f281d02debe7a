package game

import (
	"errors"
	"time"

	"github.com/gokatarajesh/coupsurcoup/internal/config"
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
)

// Game document statuses.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Phase is the sub-state of the current round.
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseSelective  Phase = "selective"
	PhaseDuelPick   Phase = "duel_pick"
	PhaseDuelTheme  Phase = "duel_theme"
	PhaseDuelAnswer Phase = "duel_answer"
	PhaseTrapList   Phase = "trap_list"
	PhaseChrono     Phase = "chrono"
	PhaseClueGrid   Phase = "clue_grid"
	PhaseFinished   Phase = "finished"
)

// IsDuel reports whether p belongs to a duel.
func (p Phase) IsDuel() bool {
	return p == PhaseDuelPick || p == PhaseDuelTheme || p == PhaseDuelAnswer
}

var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyAnswered  = errors.New("turn already answered")
	ErrWrongPhase       = errors.New("action not allowed in this phase")
	ErrGameFinished     = errors.New("game finished")
	ErrGameStarted      = errors.New("game already started")
	ErrInvalidOption    = errors.New("invalid option")
	ErrInvalidOpponent  = errors.New("invalid duel opponent")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrStaleTimer       = errors.New("stale timer fired")
	ErrQuestionSet      = errors.New("question set does not match the round table")

	ErrUnknownPlayer    = tracker.ErrUnknownPlayer
	ErrUnknownChallenge = tracker.ErrUnknownChallenge
	ErrChallengeLocked  = tracker.ErrChallengeLocked
	ErrChallengeClaimed = tracker.ErrChallengeClaimed
)

// Settings holds round timings and bot tuning for one engine.
type Settings struct {
	SelectiveTurn      time.Duration
	SelectiveSurvivors int
	TrapTurn           time.Duration
	TrapAdvanceDelay   time.Duration
	RevealPause        time.Duration
	DuelPick           time.Duration
	DuelAnswer         time.Duration
	ChronoClock        time.Duration
	ClueTurn           time.Duration

	BotSuccessRate float64
	BotMinDelay    time.Duration
	BotMaxDelay    time.Duration
}

// DefaultSettings mirrors the config defaults.
func DefaultSettings() Settings {
	return Settings{
		SelectiveTurn:      10 * time.Second,
		SelectiveSurvivors: 3,
		TrapTurn:           15 * time.Second,
		TrapAdvanceDelay:   2 * time.Second,
		RevealPause:        1500 * time.Millisecond,
		DuelPick:           10 * time.Second,
		DuelAnswer:         10 * time.Second,
		ChronoClock:        60 * time.Second,
		ClueTurn:           20 * time.Second,
		BotSuccessRate:     0.7,
		BotMinDelay:        time.Second,
		BotMaxDelay:        3 * time.Second,
	}
}

// SettingsFromConfig maps env config onto engine settings.
func SettingsFromConfig(g config.Game, b config.Bot) Settings {
	return Settings{
		SelectiveTurn:      g.SelectiveTurn,
		SelectiveSurvivors: g.SelectiveSurvivor,
		TrapTurn:           g.TrapTurn,
		TrapAdvanceDelay:   g.TrapAdvanceDelay,
		RevealPause:        g.RevealPause,
		DuelPick:           g.DuelPick,
		DuelAnswer:         g.DuelAnswer,
		ChronoClock:        g.ChronoClock,
		ClueTurn:           g.ClueTurn,
		BotSuccessRate:     b.SuccessRate,
		BotMinDelay:        b.MinDelay,
		BotMaxDelay:        b.MaxDelay,
	}
}

// ActionKind names a player action.
type ActionKind string

const (
	ActionSelectOption ActionKind = "select_option"
	ActionChooseTheme  ActionKind = "choose_theme"
	ActionStartDuel    ActionKind = "start_duel"
	ActionAdvanceRound ActionKind = "advance_round"
	ActionClaimReward  ActionKind = "claim_reward"
	ActionPass         ActionKind = "pass"
)

// Action is a player intent routed to the engine.
type Action struct {
	Kind        ActionKind
	Index       int
	OpponentID  string
	ChallengeID string
}
