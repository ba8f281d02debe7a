package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// ViewState is what clients render. It is derived from a snapshot only.
type ViewState struct {
	Version              uint64                       `json:"version"`
	RoomCode             string                       `json:"room_code"`
	Status               string                       `json:"status"`
	CurrentRound         int                          `json:"current_round"`
	Phase                Phase                        `json:"phase"`
	CurrentQuestionIndex int                          `json:"current_question_index"`
	RoundStart           int                          `json:"round_start"`
	RoundEnd             int                          `json:"round_end"`
	HostID               uuid.UUID                    `json:"host_id"`
	Players              []tracker.Player             `json:"players"`
	PlayerStatus         map[uuid.UUID]tracker.Status `json:"player_status"`
	Standings            []uuid.UUID                  `json:"standings"`
	Turn                 *TurnView                    `json:"turn,omitempty"`
	Question             *question.PublicQuestion     `json:"question,omitempty"`
	Claimed              []ClaimView                  `json:"claimed,omitempty"`
	Duel                 *DuelView                    `json:"duel,omitempty"`
	Chrono               *ChronoView                  `json:"chrono,omitempty"`
	LastAnswer           *AnswerView                  `json:"last_answer,omitempty"`
	Winner               *tracker.Player              `json:"winner,omitempty"`
	CoinTransactions     []tracker.CoinTransaction    `json:"coin_transactions"`
}

// DeriveViewState rebuilds the client view from a snapshot. It is pure:
// the same snapshot always yields the same view.
func DeriveViewState(s Snapshot) ViewState {
	v := ViewState{
		Version:              s.Version,
		RoomCode:             s.RoomCode,
		Status:               s.Status,
		CurrentRound:         s.Round,
		Phase:                s.Phase,
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		HostID:               s.HostID,
		Players:              clonePlayers(s.Players),
		PlayerStatus:         make(map[uuid.UUID]tracker.Status, len(s.Players)),
		Turn:                 s.Turn,
		Question:             s.Question,
		Claimed:              s.Claimed,
		Duel:                 s.Duel,
		Chrono:               s.Chrono,
		LastAnswer:           s.LastAnswer,
		CoinTransactions:     append([]tracker.CoinTransaction(nil), s.CoinTransactions...),
	}
	if b, err := question.RoundBounds(s.Round); err == nil {
		v.RoundStart, v.RoundEnd = b.Start, b.End
	}
	for _, p := range s.Players {
		v.PlayerStatus[p.ID] = p.Status
		if s.WinnerID != nil && p.ID == *s.WinnerID {
			w := p
			v.Winner = &w
		}
	}
	for _, p := range RankPlayers(s.Players) {
		v.Standings = append(v.Standings, p.ID)
	}
	return v
}

// Reconcile keeps the newest state: an incoming snapshot replaces the current
// view only when its version is higher. The bool reports a replacement.
func Reconcile(current ViewState, incoming Snapshot) (ViewState, bool) {
	if incoming.Version <= current.Version {
		return current, false
	}
	return DeriveViewState(incoming), true
}

// RankPlayers orders players for standings and final qualification:
// non-eliminated first, then by status (green best), then by score, then by
// join order.
func RankPlayers(players []tracker.Player) []tracker.Player {
	out := clonePlayers(players)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsEliminated != b.IsEliminated {
			return !a.IsEliminated
		}
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		return a.Score > b.Score
	})
	return out
}

func clonePlayers(in []tracker.Player) []tracker.Player {
	if in == nil {
		return []tracker.Player{}
	}
	return append([]tracker.Player(nil), in...)
}
