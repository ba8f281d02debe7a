package game

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so engines can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock is backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PhaseTimers is the set of timers owned by the current phase.
type PhaseTimers struct {
	mu     sync.Mutex
	timers []Timer
}

// Add tracks t so CancelAll can stop it.
func (p *PhaseTimers) Add(t Timer) {
	if t == nil {
		return
	}
	p.mu.Lock()
	p.timers = append(p.timers, t)
	p.mu.Unlock()
}

// CancelAll stops every tracked timer and returns how many were still pending.
func (p *PhaseTimers) CancelAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	stopped := 0
	for _, t := range p.timers {
		if t.Stop() {
			stopped++
		}
	}
	p.timers = p.timers[:0]
	return stopped
}

// Len is the number of tracked timers.
func (p *PhaseTimers) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}
