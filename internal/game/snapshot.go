package game

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// Snapshot is an immutable copy of a game's full state at one commit.
type Snapshot struct {
	Version              uint64                    `json:"version"`
	GameID               uuid.UUID                 `json:"game_id"`
	RoomCode             string                    `json:"room_code"`
	HostID               uuid.UUID                 `json:"host_id"`
	Status               string                    `json:"status"`
	Round                int                       `json:"round"`
	Phase                Phase                     `json:"phase"`
	CurrentQuestionIndex int                       `json:"current_question_index"`
	QuestionIDs          []string                  `json:"question_ids"`
	Players              []tracker.Player          `json:"players"`
	Turn                 *TurnView                 `json:"turn,omitempty"`
	Question             *question.PublicQuestion  `json:"question,omitempty"`
	Claimed              []ClaimView               `json:"claimed,omitempty"`
	Duel                 *DuelView                 `json:"duel,omitempty"`
	Chrono               *ChronoView               `json:"chrono,omitempty"`
	LastAnswer           *AnswerView               `json:"last_answer,omitempty"`
	WinnerID             *uuid.UUID                `json:"winner_id,omitempty"`
	CoinTransactions     []tracker.CoinTransaction `json:"coin_transactions"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

// TurnView is whose turn it is and until when.
type TurnView struct {
	PlayerID uuid.UUID `json:"player_id"`
	Deadline time.Time `json:"deadline"`
	Token    uint64    `json:"token"`
	Answered bool      `json:"answered"`
}

// ClaimView is one claimed trap-list proposition.
type ClaimView struct {
	Index    int       `json:"index"`
	PlayerID uuid.UUID `json:"player_id"`
}

// DuelView exposes the duel in progress.
type DuelView struct {
	ChallengerID uuid.UUID `json:"challenger_id"`
	OpponentID   uuid.UUID `json:"opponent_id"`
	OriginRound  int       `json:"origin_round"`
	Themes       []string  `json:"themes"`
	Outcome      string    `json:"outcome,omitempty"`
}

// ChronoView exposes both clocks of the final.
type ChronoView struct {
	Finalists  [2]uuid.UUID `json:"finalists"`
	TimeLeftMs [2]int64     `json:"time_left_ms"`
	ActiveID   uuid.UUID    `json:"active_id"`
}

// AnswerView is the last resolved answer.
type AnswerView struct {
	PlayerID uuid.UUID `json:"player_id"`
	Index    int       `json:"index"`
	Correct  bool      `json:"correct"`
	TimedOut bool      `json:"timed_out,omitempty"`
	Passed   bool      `json:"passed,omitempty"`
}

func (e *Engine) snapshot() Snapshot {
	now := e.clock.Now()
	s := Snapshot{
		Version:              e.version,
		GameID:               e.gameID,
		RoomCode:             e.roomCode,
		HostID:               e.hostID,
		Status:               e.status,
		Round:                e.round,
		Phase:                e.phase,
		CurrentQuestionIndex: e.qIndex,
		QuestionIDs:          slices.Clone(e.questionIDs),
		Players:              e.tracker.Players(),
		CoinTransactions:     e.tracker.Transactions(),
		CreatedAt:            e.created,
		UpdatedAt:            e.updated,
	}
	if e.last != nil {
		last := *e.last
		s.LastAnswer = &last
	}
	if e.hasWinner {
		w := e.winner
		s.WinnerID = &w
	}
	if e.status != StatusPlaying {
		return s
	}

	s.Turn = &TurnView{PlayerID: e.turn, Deadline: e.deadline, Token: e.token, Answered: e.answered}
	if e.phase != PhaseDuelPick && e.phase != PhaseDuelTheme {
		pq := e.questions[e.qIndex].Public()
		s.Question = &pq
	}
	if e.phase == PhaseTrapList && e.trap != nil {
		s.Claimed = e.trap.claims()
	}
	if e.duel != nil {
		d := e.duel
		themes := make([]string, 0, len(d.themes))
		for _, idx := range d.themes {
			themes = append(themes, e.questions[idx].Category)
		}
		s.Duel = &DuelView{
			ChallengerID: d.challenger,
			OpponentID:   d.opponent,
			OriginRound:  d.origin,
			Themes:       themes,
			Outcome:      d.outcome,
		}
	}
	if e.phase == PhaseChrono && e.chrono != nil {
		c := e.chrono
		s.Chrono = &ChronoView{
			Finalists: c.finalists,
			TimeLeftMs: [2]int64{
				c.timeLeft(0, now).Milliseconds(),
				c.timeLeft(1, now).Milliseconds(),
			},
			ActiveID: c.finalists[c.active],
		}
	}
	return s
}
