package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
	"github.com/gokatarajesh/coupsurcoup/internal/question"
)

// chronoState holds the two personal clocks of the final. Only the active
// finalist's clock runs; left[active] is its value as of since.
type chronoState struct {
	finalists [2]uuid.UUID
	left      [2]time.Duration
	active    int
	since     time.Time
	index     int
}

func (c *chronoState) timeLeft(i int, now time.Time) time.Duration {
	left := c.left[i]
	if i == c.active {
		left -= now.Sub(c.since)
	}
	if left < 0 {
		return 0
	}
	return left
}

// bank freezes the running clock at now.
func (c *chronoState) bank(now time.Time) {
	c.left[c.active] = c.timeLeft(c.active, now)
	c.since = now
}

// enterChrono seats the two best survivors in the final. Everyone else still
// standing is eliminated as not qualified.
func (e *Engine) enterChrono() {
	e.invalidate()
	active := e.tracker.Active()
	switch len(active) {
	case 0:
		e.finish()
		return
	case 1:
		e.declareWinner(active[0])
		return
	}

	ranked := RankPlayers(e.tracker.Players())
	finalists := [2]uuid.UUID{ranked[0].ID, ranked[1].ID}
	for _, p := range ranked[2:] {
		e.eliminate(p.ID, "not_qualified")
	}
	for _, id := range finalists {
		_, _ = e.tracker.AwardBadge(id, tracker.BadgeSurvivor)
	}

	e.round = 5
	e.phase = PhaseChrono
	e.duel = nil
	e.chrono = &chronoState{
		finalists: finalists,
		left:      [2]time.Duration{e.settings.ChronoClock, e.settings.ChronoClock},
		since:     e.clock.Now(),
	}
	e.logger.Info().
		Str("finalist_a", finalists[0].String()).
		Str("finalist_b", finalists[1].String()).
		Msg("chrono final started")
	e.beginChronoQuestion(question.MustRoundBounds(5).Start)
}

func (e *Engine) beginChronoQuestion(from int) {
	c := e.chrono
	idx, ok := e.seekPlayable(question.MustRoundBounds(5), from, func(q question.Question) bool {
		return !q.IsTrap()
	})
	if !ok {
		// Nothing left to ask: the clock with more time wins.
		c.bank(e.clock.Now())
		winner := c.finalists[0]
		if c.left[1] > c.left[0] {
			winner = c.finalists[1]
		}
		e.logger.Error().Msg("round 5 has no playable question")
		e.declareWinner(winner)
		return
	}
	c.index = idx
	e.qIndex = idx
	e.armChrono()
}

// armChrono (re)arms the running clock's expiry and the bot for the active finalist.
func (e *Engine) armChrono() {
	c := e.chrono
	now := e.clock.Now()
	player := c.finalists[c.active]
	left := c.timeLeft(c.active, now)

	e.invalidate()
	e.turn = player
	e.answered = false
	e.deadline = now.Add(left)
	e.after(left, "chrono_clock", e.chronoExpired)

	q := e.questions[c.index]
	e.scheduleBot(e.botRequest(player, q.CorrectIndex, len(q.Options), nil), func(choice int) error {
		return e.answerChrono(player, choice)
	})
}

func (e *Engine) answerChrono(player uuid.UUID, index int) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	if err := e.validOption(index); err != nil {
		return err
	}
	e.answered = true
	c := e.chrono
	now := e.clock.Now()
	correct := e.questions[c.index].IsCorrect(index)
	e.last = &AnswerView{PlayerID: player, Index: index, Correct: correct}

	if correct {
		e.recordCorrect(player, c.timeLeft(c.active, now), e.settings.ChronoClock)
		c.bank(now)
		c.active = 1 - c.active
	} else {
		answersTotal.WithLabelValues(e.roundLabel(), "wrong").Inc()
		if err := e.tracker.RecordMiss(player); err != nil {
			e.logger.Warn().Err(err).Msg("chrono miss not recorded")
		}
	}
	e.beginChronoQuestion(question.MustRoundBounds(5).Wrap(c.index + 1))
	return nil
}

func (e *Engine) passChrono(player uuid.UUID) error {
	if err := e.claimTurn(player); err != nil {
		return err
	}
	e.answered = true
	c := e.chrono
	e.last = &AnswerView{PlayerID: player, Index: -1, Passed: true}
	answersTotal.WithLabelValues(e.roundLabel(), "pass").Inc()
	if err := e.tracker.RecordMiss(player); err != nil {
		e.logger.Warn().Err(err).Msg("chrono pass not recorded")
	}
	e.beginChronoQuestion(question.MustRoundBounds(5).Wrap(c.index + 1))
	return nil
}

// chronoExpired ends the final: the running clock hit zero, so its owner
// loses whatever question was in flight.
func (e *Engine) chronoExpired() {
	c := e.chrono
	c.bank(e.clock.Now())
	c.left[c.active] = 0
	loser := c.finalists[c.active]
	winner := c.finalists[1-c.active]
	e.eliminate(loser, "clock")
	e.declareWinner(winner)
}
