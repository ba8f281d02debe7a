package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

type trapState struct {
	index   int
	current uuid.UUID
	claimed map[int]uuid.UUID
	trapHit bool
	// autoAdvanced counts questions closed because every safe proposition was claimed.
	autoAdvanced int
}

func (e *Engine) enterTrapList() {
	e.invalidate()
	e.round = 3
	e.phase = PhaseTrapList
	first, ok := e.nextActiveAfter(e.sel.current)
	if !ok {
		e.finish()
		return
	}
	e.trap = &trapState{current: first}
	e.beginTrapQuestion(question.MustRoundBounds(3).Start)
}

// beginTrapQuestion opens the first playable trap question at or after from;
// running off the block moves the game to the final.
func (e *Engine) beginTrapQuestion(from int) {
	b := question.MustRoundBounds(3)
	idx := from
	for ; idx <= b.End; idx++ {
		q := e.questions[idx]
		if !q.Invalid && q.IsTrap() && len(q.Options) > 1 {
			break
		}
		e.skipQuestion(q, idx)
	}
	if idx > b.End {
		e.enterChrono()
		return
	}
	t := e.trap
	t.index = idx
	t.claimed = make(map[int]uuid.UUID)
	t.trapHit = false
	e.qIndex = idx
	e.beginTrapTurn()
}

func (e *Engine) beginTrapTurn() {
	t := e.trap
	player := t.current
	q := e.questions[t.index]
	e.last = nil
	e.beginTurn(player, e.settings.TrapTurn, func() {
		e.resolveTrap(player, q.CorrectIndex, true)
	})

	open := e.openPropositions()
	if len(open) == 0 {
		return
	}
	target := open[e.bot.Pick(len(open))]
	e.scheduleBot(e.botRequest(player, target, len(q.Options), []int{q.CorrectIndex}), func(choice int) error {
		return e.pickTrap(player, choice)
	})
}

// openPropositions lists unclaimed safe propositions.
func (e *Engine) openPropositions() []int {
	q := e.questions[e.trap.index]
	out := make([]int, 0, len(q.Options))
	for i := range q.Options {
		if i == q.CorrectIndex {
			continue
		}
		if _, taken := e.trap.claimed[i]; !taken {
			out = append(out, i)
		}
	}
	return out
}

func (e *Engine) pickTrap(player uuid.UUID, index int) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if err := e.validOption(index); err != nil {
		return err
	}
	if _, taken := e.trap.claimed[index]; taken {
		return ErrInvalidOption
	}
	e.resolveTrap(player, index, false)
	return nil
}

// resolveTrap settles one pick. A timeout arrives here as a pick of the trap.
func (e *Engine) resolveTrap(player uuid.UUID, index int, timedOut bool) {
	e.answered = true
	t := e.trap
	q := e.questions[t.index]
	safe := q.IsCorrect(index)
	e.last = &AnswerView{PlayerID: player, Index: index, Correct: safe, TimedOut: timedOut}

	if !safe {
		t.trapHit = true
		if e.strike(player, timedOut, tracker.ReasonTrapHit) == tracker.StatusRed {
			e.openDuel(player)
			return
		}
		e.invalidate()
		e.after(e.settings.RevealPause, "reveal", e.closeTrapQuestion)
		return
	}

	t.claimed[index] = player
	e.recordCorrect(player, e.remaining(), e.settings.TrapTurn)
	e.invalidate()
	if len(e.openPropositions()) == 0 && !t.trapHit {
		t.autoAdvanced++
		e.awardTrapDodgers()
		e.after(e.settings.TrapAdvanceDelay, "trap_advance", e.closeTrapQuestion)
		return
	}
	e.after(e.settings.RevealPause, "reveal", e.nextTrapTurn)
}

// awardTrapDodgers badges every player who claimed a proposition on a
// question nobody trapped on.
func (e *Engine) awardTrapDodgers() {
	for _, id := range e.trap.claimed {
		if _, err := e.tracker.AwardBadge(id, tracker.BadgeTrapDodger); err != nil {
			e.logger.Warn().Err(err).Msg("trap dodger badge failed")
		}
	}
}

func (e *Engine) nextTrapTurn() {
	if len(e.tracker.Active()) <= 2 {
		e.enterChrono()
		return
	}
	next, ok := e.nextActiveAfter(e.trap.current)
	if !ok {
		e.finish()
		return
	}
	e.trap.current = next
	e.beginTrapTurn()
}

func (e *Engine) closeTrapQuestion() {
	if len(e.tracker.Active()) <= 2 {
		e.enterChrono()
		return
	}
	next, ok := e.nextActiveAfter(e.trap.current)
	if !ok {
		e.finish()
		return
	}
	e.trap.current = next
	e.beginTrapQuestion(e.trap.index + 1)
}

// claims returns the claimed propositions ordered by index.
func (t *trapState) claims() []ClaimView {
	out := make([]ClaimView, 0, len(t.claimed))
	for idx, id := range t.claimed {
		out = append(out, ClaimView{Index: idx, PlayerID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
