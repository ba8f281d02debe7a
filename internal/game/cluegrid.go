package game

import (
	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

type clueState struct {
	index   int
	correct int
}

// enterClueGrid gives the winner the bonus grid. No penalties apply here.
func (e *Engine) enterClueGrid() {
	e.invalidate()
	e.round = 6
	e.phase = PhaseClueGrid
	e.clue = &clueState{}
	e.beginClue(question.MustRoundBounds(6).Start)
}

func (e *Engine) beginClue(from int) {
	b := question.MustRoundBounds(6)
	idx := from
	for ; idx <= b.End; idx++ {
		q := e.questions[idx]
		if !q.Invalid && !q.IsTrap() && len(q.Options) > 1 {
			break
		}
		e.skipQuestion(q, idx)
	}
	if idx > b.End {
		e.finish()
		return
	}
	e.clue.index = idx
	e.qIndex = idx
	e.last = nil

	player := e.winner
	q := e.questions[idx]
	e.beginTurn(player, e.settings.ClueTurn, func() {
		e.resolveClue(player, -1, true)
	})
	e.scheduleBot(e.botRequest(player, q.CorrectIndex, len(q.Options), nil), func(choice int) error {
		return e.answerClue(player, choice)
	})
}

func (e *Engine) answerClue(player uuid.UUID, index int) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if err := e.validOption(index); err != nil {
		return err
	}
	e.resolveClue(player, index, false)
	return nil
}

func (e *Engine) resolveClue(player uuid.UUID, index int, timedOut bool) {
	e.answered = true
	correct := !timedOut && e.questions[e.clue.index].IsCorrect(index)
	e.last = &AnswerView{PlayerID: player, Index: index, Correct: correct, TimedOut: timedOut}

	outcome := "wrong"
	if timedOut {
		outcome = "timeout"
	}
	if correct {
		outcome = "correct"
		e.clue.correct++
		if err := e.tracker.Credit(player, e.rewards.Rules().CorrectCoins, tracker.ReasonClueGrid); err != nil {
			e.logger.Warn().Err(err).Msg("clue reward failed")
		}
	}
	answersTotal.WithLabelValues(e.roundLabel(), outcome).Inc()

	next := e.clue.index + 1
	e.invalidate()
	e.after(e.settings.RevealPause, "reveal", func() { e.beginClue(next) })
}
