package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// BotRequest describes one bot decision.
type BotRequest struct {
	IsBotTurn    bool
	CorrectIndex int
	NbOptions    int
	// WrongIndexes, when set, is the explicit pool of wrong choices.
	WrongIndexes []int
	SuccessRate  float64
	MinDelay     time.Duration
	MaxDelay     time.Duration
}

// Bot simulates non-human players.
type Bot struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBot builds a bot over src; a nil src seeds from the runtime.
func NewBot(src rand.Source) *Bot {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Bot{rng: rand.New(src)}
}

// Choose returns CorrectIndex with probability SuccessRate, otherwise a
// uniformly drawn wrong index. It falls back to CorrectIndex only when no
// wrong index exists.
func (b *Bot) Choose(req BotRequest) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if req.SuccessRate >= 1 || (req.SuccessRate > 0 && b.rng.Float64() < req.SuccessRate) {
		return req.CorrectIndex
	}
	wrong := req.WrongIndexes
	if len(wrong) == 0 {
		wrong = make([]int, 0, req.NbOptions)
		for i := 0; i < req.NbOptions; i++ {
			if i != req.CorrectIndex {
				wrong = append(wrong, i)
			}
		}
	} else {
		wrong = slices.DeleteFunc(slices.Clone(wrong), func(i int) bool { return i == req.CorrectIndex })
	}
	if len(wrong) == 0 {
		return req.CorrectIndex
	}
	return wrong[b.rng.IntN(len(wrong))]
}

// Pick draws uniformly in [0, n).
func (b *Bot) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.IntN(n)
}

// Delay draws a think time in [MinDelay, MaxDelay].
func (b *Bot) Delay(req BotRequest) time.Duration {
	if req.MaxDelay <= req.MinDelay {
		return req.MinDelay
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return req.MinDelay + time.Duration(b.rng.Int64N(int64(req.MaxDelay-req.MinDelay)+1))
}

// Schedule arms a timer that calls fn with the bot's choice. It returns nil
// when it is not a bot's turn.
func (b *Bot) Schedule(clock Clock, req BotRequest, fn func(choice int)) Timer {
	if !req.IsBotTurn {
		return nil
	}
	delay := b.Delay(req)
	return clock.AfterFunc(delay, func() {
		fn(b.Choose(req))
	})
}
