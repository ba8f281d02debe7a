// Package tracker owns per-player status, the coin ledger and gamification
// fields. It is the only writer of those fields; callers go through the
// mutation methods below. A Tracker is not safe for concurrent use; the game
// engine serialises access.
package tracker

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/rewards"
)

// Status is a rung on the strike ladder.
type Status string

const (
	StatusGreen      Status = "green"
	StatusOrange     Status = "orange"
	StatusRed        Status = "red"
	StatusEliminated Status = "eliminated"
)

// Rank orders statuses; higher is worse.
func (s Status) Rank() int {
	switch s {
	case StatusGreen:
		return 0
	case StatusOrange:
		return 1
	case StatusRed:
		return 2
	case StatusEliminated:
		return 3
	}
	return -1
}

// Next is the status after one more strike.
func (s Status) Next() Status {
	switch s {
	case StatusGreen:
		return StatusOrange
	case StatusOrange:
		return StatusRed
	default:
		return StatusEliminated
	}
}

// Lobby defaults for a new player.
const (
	StartingCoins = 1000
	StartingLevel = 1
)

// Coin transaction reasons.
const (
	ReasonCorrectAnswer = "correct_answer"
	ReasonWrongAnswer   = "wrong_answer"
	ReasonTimeout       = "timeout"
	ReasonTrapHit       = "trap_hit"
	ReasonDuelBonus     = "duel_bonus"
	ReasonWinnerBonus   = "winner_bonus"
	ReasonLevelUp       = "level_up"
	ReasonChallenge     = "challenge_reward"
	ReasonClueGrid      = "clue_grid"
)

// Badge ids.
const (
	BadgeDuelWinner = "duel_winner"
	BadgeChampion   = "champion"
	BadgeSurvivor   = "survivor"
	BadgeTrapDodger = "trap_dodger"
)

// StrikeKind selects the penalty applied with a strike.
type StrikeKind int

const (
	StrikeWrong StrikeKind = iota
	StrikeTimeout
)

var (
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrDuplicatePlayer  = errors.New("player already joined")
	ErrPlayerEliminated = errors.New("player eliminated")
	ErrChallengeLocked  = errors.New("challenge not completed yet")
	ErrChallengeClaimed = errors.New("challenge reward already claimed")
	ErrUnknownChallenge = errors.New("unknown challenge")
)

// Player is the per-player document plus in-match stats.
type Player struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Avatar              string    `json:"avatar"`
	IsHost              bool      `json:"is_host"`
	IsBot               bool      `json:"is_bot"`
	IsEliminated        bool      `json:"is_eliminated"`
	Status              Status    `json:"status"`
	Score               int       `json:"score"`
	Coins               int       `json:"coins"`
	Level               int       `json:"level"`
	Experience          int       `json:"experience"`
	Badges              []string  `json:"badges"`
	Achievements        []string  `json:"achievements"`
	ChallengesCompleted []string  `json:"challenges_completed"`
	StreakDays          int       `json:"streak_days"`

	Answered       int `json:"answered"`
	CorrectAnswers int `json:"correct_answers"`
	Streak         int `json:"streak"`
	BestStreak     int `json:"best_streak"`
	DuelsWon       int `json:"duels_won"`
}

func (p Player) clone() Player {
	p.Badges = slices.Clone(p.Badges)
	p.Achievements = slices.Clone(p.Achievements)
	p.ChallengesCompleted = slices.Clone(p.ChallengesCompleted)
	return p
}

// HasBadge reports whether the badge id is held.
func (p Player) HasBadge(id string) bool {
	return slices.Contains(p.Badges, id)
}

// CoinTransaction is an immutable ledger entry.
type CoinTransaction struct {
	ID        uuid.UUID `json:"id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Challenge is a claimable objective; Done decides whether it is unlocked.
type Challenge struct {
	ID     string
	Title  string
	Reward int
	Done   func(Player) bool
}

// Join carries the identity fields for a new player.
type Join struct {
	ID         uuid.UUID
	Name       string
	Avatar     string
	IsHost     bool
	IsBot      bool
	StreakDays int
}

// CorrectOutcome summarises the ledger effects of a correct answer.
type CorrectOutcome struct {
	Points       int
	Coins        int
	XP           int
	LevelsGained int
}

type Tracker struct {
	engine  *rewards.Engine
	players map[uuid.UUID]*Player
	order   []uuid.UUID
	log     []CoinTransaction
	now     func() time.Time
}

func New(engine *rewards.Engine, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		engine:  engine,
		players: make(map[uuid.UUID]*Player),
		now:     now,
	}
}

// Add registers a player with lobby defaults.
func (t *Tracker) Add(j Join) (Player, error) {
	if _, ok := t.players[j.ID]; ok {
		return Player{}, ErrDuplicatePlayer
	}
	p := &Player{
		ID:                  j.ID,
		Name:                j.Name,
		Avatar:              j.Avatar,
		IsHost:              j.IsHost,
		IsBot:               j.IsBot,
		Status:              StatusGreen,
		Coins:               StartingCoins,
		Level:               StartingLevel,
		Badges:              []string{},
		Achievements:        []string{},
		ChallengesCompleted: []string{},
		StreakDays:          j.StreakDays,
	}
	t.players[j.ID] = p
	t.order = append(t.order, j.ID)
	return p.clone(), nil
}

// Player returns a copy of one player.
func (t *Tracker) Player(id uuid.UUID) (Player, bool) {
	p, ok := t.players[id]
	if !ok {
		return Player{}, false
	}
	return p.clone(), true
}

// Players returns copies in join order.
func (t *Tracker) Players() []Player {
	out := make([]Player, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.players[id].clone())
	}
	return out
}

// Order is the join order (ring order for turn rotation).
func (t *Tracker) Order() []uuid.UUID {
	return slices.Clone(t.order)
}

// Active lists non-eliminated players in ring order.
func (t *Tracker) Active() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(t.order))
	for _, id := range t.order {
		if !t.players[id].IsEliminated {
			out = append(out, id)
		}
	}
	return out
}

// IsActive reports whether id is in the match and not eliminated.
func (t *Tracker) IsActive(id uuid.UUID) bool {
	p, ok := t.players[id]
	return ok && !p.IsEliminated
}

// Transactions returns the ledger in append order.
func (t *Tracker) Transactions() []CoinTransaction {
	return slices.Clone(t.log)
}

// RecordCorrect credits a correct answer: points, coins, XP and level-ups.
func (t *Tracker) RecordCorrect(id uuid.UUID, remaining, turn time.Duration) (CorrectOutcome, error) {
	p, err := t.active(id)
	if err != nil {
		return CorrectOutcome{}, err
	}
	rules := t.engine.Rules()
	p.Answered++
	p.CorrectAnswers++
	p.Streak++
	if p.Streak > p.BestStreak {
		p.BestStreak = p.Streak
	}
	out := CorrectOutcome{
		Points: t.engine.Points(remaining, turn, p.Streak-1),
		Coins:  rules.CorrectCoins,
		XP:     rules.XPPerCorrect,
	}
	p.Score += out.Points
	t.credit(p, rules.CorrectCoins, ReasonCorrectAnswer)
	out.LevelsGained = t.gainXP(p, rules.XPPerCorrect)
	return out, nil
}

// RecordMiss counts an answer that carries no strike (chrono wrong/pass).
func (t *Tracker) RecordMiss(id uuid.UUID) error {
	p, err := t.active(id)
	if err != nil {
		return err
	}
	p.Answered++
	p.Streak = 0
	return nil
}

// Strike applies the penalty for kind and moves the player one rung down the
// ladder. Reaching eliminated flags the player.
func (t *Tracker) Strike(id uuid.UUID, kind StrikeKind, reason string) (Status, error) {
	p, err := t.active(id)
	if err != nil {
		return "", err
	}
	rules := t.engine.Rules()
	penalty := rules.WrongPenalty
	if kind == StrikeTimeout {
		penalty = rules.TimeoutPenalty
	}
	if reason == "" {
		reason = ReasonWrongAnswer
		if kind == StrikeTimeout {
			reason = ReasonTimeout
		}
	}
	p.Answered++
	p.Streak = 0
	if penalty != 0 {
		t.credit(p, -penalty, reason)
	}
	t.advance(p, p.Status.Next())
	return p.Status, nil
}

// Eliminate flags the player out of the match. Idempotent.
func (t *Tracker) Eliminate(id uuid.UUID) error {
	p, ok := t.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	t.advance(p, StatusEliminated)
	return nil
}

// Credit adds a ledger entry of amount (may be negative).
func (t *Tracker) Credit(id uuid.UUID, amount int, reason string) error {
	p, ok := t.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	t.credit(p, amount, reason)
	return nil
}

// AwardBadge adds a badge; returns false if it was already held.
func (t *Tracker) AwardBadge(id uuid.UUID, badge string) (bool, error) {
	p, ok := t.players[id]
	if !ok {
		return false, ErrUnknownPlayer
	}
	if slices.Contains(p.Badges, badge) {
		return false, nil
	}
	p.Badges = append(p.Badges, badge)
	return true, nil
}

// RecordDuelWin credits the duel bonus and the duel badge.
func (t *Tracker) RecordDuelWin(id uuid.UUID) error {
	p, ok := t.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	p.DuelsWon++
	t.credit(p, t.engine.Rules().DuelBonus, ReasonDuelBonus)
	_, err := t.AwardBadge(id, BadgeDuelWinner)
	return err
}

// ClaimChallenge credits a challenge reward once, after its condition holds.
func (t *Tracker) ClaimChallenge(id uuid.UUID, c Challenge) error {
	p, ok := t.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if slices.Contains(p.ChallengesCompleted, c.ID) {
		return ErrChallengeClaimed
	}
	if c.Done == nil || !c.Done(p.clone()) {
		return ErrChallengeLocked
	}
	p.ChallengesCompleted = append(p.ChallengesCompleted, c.ID)
	if c.Reward != 0 {
		t.credit(p, c.Reward, ReasonChallenge)
	}
	return nil
}

func (t *Tracker) active(id uuid.UUID) (*Player, error) {
	p, ok := t.players[id]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if p.IsEliminated {
		return nil, ErrPlayerEliminated
	}
	return p, nil
}

// advance only ever moves forward on the ladder.
func (t *Tracker) advance(p *Player, to Status) {
	if to.Rank() <= p.Status.Rank() {
		return
	}
	p.Status = to
	if to == StatusEliminated {
		p.IsEliminated = true
		p.Streak = 0
	}
}

// credit is the single place balances change; the log entry is written in the same step.
func (t *Tracker) credit(p *Player, amount int, reason string) {
	p.Coins += amount
	t.log = append(t.log, CoinTransaction{
		ID:        uuid.New(),
		PlayerID:  p.ID,
		Amount:    amount,
		Reason:    reason,
		Timestamp: t.now(),
	})
}

func (t *Tracker) gainXP(p *Player, xp int) int {
	old := p.Experience
	p.Experience += xp
	p.Level = t.engine.LevelFor(p.Experience)
	levels, bonus := t.engine.LevelUpCoins(old, p.Experience)
	if levels > 0 {
		t.credit(p, bonus, ReasonLevelUp)
		achievement := fmt.Sprintf("level_%d", p.Level)
		if !slices.Contains(p.Achievements, achievement) {
			p.Achievements = append(p.Achievements, achievement)
		}
	}
	return levels
}

// Balance sums the ledger for one player on top of the starting coins; it
// always equals Player.Coins.
func (t *Tracker) Balance(id uuid.UUID) int {
	total := StartingCoins
	for _, tx := range t.log {
		if tx.PlayerID == id {
			total += tx.Amount
		}
	}
	return total
}
