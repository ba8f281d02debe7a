package game

import (
	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// Duel outcomes as shown to clients.
const (
	DuelChallengerWon = "challenger"
	DuelOpponentWon   = "opponent"
	DuelVoid          = "void"
)

type duelState struct {
	challenger uuid.UUID
	opponent   uuid.UUID
	// origin is the round the duel interrupted (1 or 3).
	origin int
	// resume is the question index to restore when play returns to origin.
	resume  int
	themes  []int
	chosen  int
	outcome string
}

// openDuel suspends the current round for a challenger who just reached red.
func (e *Engine) openDuel(challenger uuid.UUID) {
	e.invalidate()
	d := &duelState{
		challenger: challenger,
		origin:     e.round,
		resume:     e.qIndex,
		chosen:     -1,
	}
	e.duel = d
	e.round++
	e.logger.Info().Str("challenger_id", challenger.String()).Int("origin_round", d.origin).Msg("duel opened")

	d.themes = e.duelThemes()
	opponents := e.duelOpponents(challenger)
	if len(opponents) == 0 || len(d.themes) == 0 {
		d.outcome = DuelVoid
		e.logger.Warn().
			Int("opponents", len(opponents)).
			Int("themes", len(d.themes)).
			Msg("duel cannot be played")
		e.resumeAfterDuel()
		return
	}

	e.phase = PhaseDuelPick
	if len(opponents) == 1 {
		e.setOpponent(opponents[0])
		return
	}
	e.beginTurn(challenger, e.settings.DuelPick, func() {
		e.setOpponent(opponents[e.bot.Pick(len(opponents))])
	})
	e.scheduleBotDecision(challenger, func() {
		e.setOpponent(opponents[e.bot.Pick(len(opponents))])
	})
}

// duelThemes lists the playable themed candidates: the round 2 and round 4
// questions of the drawn set.
func (e *Engine) duelThemes() []int {
	themes := make([]int, 0, 2)
	for _, round := range []int{2, 4} {
		idx := question.MustRoundBounds(round).Start
		q := e.questions[idx]
		if q.Invalid || q.IsTrap() || len(q.Options) < 2 {
			e.skipQuestion(q, idx)
			continue
		}
		themes = append(themes, idx)
	}
	return themes
}

func (e *Engine) duelOpponents(challenger uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0)
	for _, id := range e.tracker.Active() {
		if id != challenger {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) pickOpponent(player, opponent uuid.UUID) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if opponent == player || !e.tracker.IsActive(opponent) {
		return ErrInvalidOpponent
	}
	e.answered = true
	e.setOpponent(opponent)
	return nil
}

func (e *Engine) setOpponent(opponent uuid.UUID) {
	d := e.duel
	d.opponent = opponent
	e.phase = PhaseDuelTheme
	if len(d.themes) == 1 {
		e.setTheme(0)
		return
	}
	e.beginTurn(opponent, e.settings.DuelPick, func() {
		e.setTheme(e.bot.Pick(len(d.themes)))
	})
	e.scheduleBotDecision(opponent, func() {
		e.setTheme(e.bot.Pick(len(d.themes)))
	})
}

func (e *Engine) pickTheme(player uuid.UUID, index int) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if index < 0 || index >= len(e.duel.themes) {
		return ErrInvalidOption
	}
	e.answered = true
	e.setTheme(index)
	return nil
}

// setTheme commits the duel to one question; only the challenger answers it.
func (e *Engine) setTheme(index int) {
	d := e.duel
	d.chosen = d.themes[index]
	e.qIndex = d.chosen
	e.phase = PhaseDuelAnswer

	challenger := d.challenger
	q := e.questions[d.chosen]
	e.beginTurn(challenger, e.settings.DuelAnswer, func() {
		e.resolveDuel(-1, true)
	})
	e.scheduleBot(e.botRequest(challenger, q.CorrectIndex, len(q.Options), nil), func(choice int) error {
		return e.answerDuel(challenger, choice)
	})
}

func (e *Engine) answerDuel(player uuid.UUID, index int) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if err := e.validOption(index); err != nil {
		return err
	}
	e.resolveDuel(index, false)
	return nil
}

func (e *Engine) resolveDuel(index int, timedOut bool) {
	e.answered = true
	d := e.duel
	won := !timedOut && e.questions[d.chosen].IsCorrect(index)
	e.last = &AnswerView{PlayerID: d.challenger, Index: index, Correct: won, TimedOut: timedOut}

	winner, loser := d.challenger, d.opponent
	d.outcome = DuelChallengerWon
	if !won {
		winner, loser = d.opponent, d.challenger
		d.outcome = DuelOpponentWon
	}
	outcome := "correct"
	switch {
	case timedOut:
		outcome = "timeout"
	case !won:
		outcome = "wrong"
	}
	answersTotal.WithLabelValues(e.roundLabel(), outcome).Inc()

	if err := e.tracker.RecordDuelWin(winner); err != nil {
		e.logger.Warn().Err(err).Msg("duel bonus failed")
	}
	e.eliminate(loser, "duel")
	e.logger.Info().
		Str("winner_id", winner.String()).
		Str("loser_id", loser.String()).
		Msg("duel resolved")

	e.invalidate()
	e.after(e.settings.RevealPause, "reveal", e.resumeAfterDuel)
}

// resumeAfterDuel hands control back to the round the duel interrupted.
func (e *Engine) resumeAfterDuel() {
	d := e.duel
	e.duel = nil
	e.round = d.origin
	e.qIndex = d.resume

	switch d.origin {
	case 1:
		e.phase = PhaseSelective
		if d.outcome != DuelVoid {
			e.sel.eliminated = true
		}
		e.nextSelectiveTurn()
	default:
		e.phase = PhaseTrapList
		e.closeTrapQuestion()
	}
}
