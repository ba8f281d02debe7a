package game

import (
	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

type selectiveState struct {
	current uuid.UUID
	// eliminated records that someone left the game during round 1.
	eliminated bool
}

func (e *Engine) enterSelective() {
	e.invalidate()
	e.round = 1
	e.phase = PhaseSelective
	e.sel = selectiveState{}
	first, ok := e.nextActiveAfter(uuid.Nil)
	if !ok {
		e.finish()
		return
	}
	e.sel.current = first
	e.qIndex = question.MustRoundBounds(1).Start
	e.beginSelectiveTurn()
}

func (e *Engine) beginSelectiveTurn() {
	idx, ok := e.seekPlayable(question.MustRoundBounds(1), e.qIndex, nil)
	if !ok {
		e.logger.Error().Msg("round 1 has no playable question")
		e.leaveSelective()
		return
	}
	e.qIndex = idx
	e.last = nil

	player := e.sel.current
	q := e.questions[idx]
	e.beginTurn(player, e.settings.SelectiveTurn, func() {
		e.resolveSelective(player, -1, true)
	})
	e.scheduleBot(e.botRequest(player, q.CorrectIndex, len(q.Options), nil), func(choice int) error {
		return e.answerSelective(player, choice)
	})
}

func (e *Engine) answerSelective(player uuid.UUID, index int) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if err := e.validOption(index); err != nil {
		return err
	}
	e.resolveSelective(player, index, false)
	return nil
}

func (e *Engine) resolveSelective(player uuid.UUID, index int, timedOut bool) {
	e.answered = true
	q := e.questions[e.qIndex]
	correct := !timedOut && q.IsCorrect(index)
	e.last = &AnswerView{PlayerID: player, Index: index, Correct: correct, TimedOut: timedOut}

	if correct {
		e.recordCorrect(player, e.remaining(), e.settings.SelectiveTurn)
	} else {
		switch e.strike(player, timedOut, "") {
		case tracker.StatusRed:
			e.openDuel(player)
			return
		case tracker.StatusEliminated:
			e.sel.eliminated = true
		}
	}
	e.invalidate()
	e.after(e.settings.RevealPause, "reveal", e.nextSelectiveTurn)
}

func (e *Engine) nextSelectiveTurn() {
	if e.sel.eliminated {
		active := len(e.tracker.Active())
		if active <= 2 {
			e.enterChrono()
			return
		}
		if active <= e.settings.SelectiveSurvivors {
			e.enterTrapList()
			return
		}
	}
	next, ok := e.nextActiveAfter(e.sel.current)
	if !ok {
		e.finish()
		return
	}
	e.sel.current = next
	e.qIndex = question.MustRoundBounds(1).Wrap(e.qIndex + 1)
	e.beginSelectiveTurn()
}

// leaveSelective closes round 1: straight to the final when two or fewer
// players remain, otherwise to the trap list.
func (e *Engine) leaveSelective() {
	if len(e.tracker.Active()) <= 2 {
		e.enterChrono()
		return
	}
	e.enterTrapList()
}
