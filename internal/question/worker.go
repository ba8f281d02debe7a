package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PrefetchRequest asks the worker to warm the cache for a room's drawn set.
type PrefetchRequest struct {
	RoomCode string
	IDs      []string
}

// PrefetchWorker loads drawn sets ahead of the start so the first round does
// not pay for cold bank reads.
type PrefetchWorker struct {
	service   *Service
	queue     <-chan PrefetchRequest
	logger    zerolog.Logger
	timeout   time.Duration
	shutdownC chan struct{}
}

func NewPrefetchWorker(service *Service, queue <-chan PrefetchRequest, logger zerolog.Logger, timeout time.Duration) *PrefetchWorker {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &PrefetchWorker{
		service:   service,
		queue:     queue,
		logger:    logger.With().Str("component", "question_prefetch").Logger(),
		timeout:   timeout,
		shutdownC: make(chan struct{}),
	}
}

func (w *PrefetchWorker) Run() {
	for {
		select {
		case <-w.shutdownC:
			w.logger.Info().Msg("question prefetch stopping")
			return
		case req, ok := <-w.queue:
			if !ok {
				return
			}
			w.handle(req)
		}
	}
}

func (w *PrefetchWorker) handle(req PrefetchRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	qs, err := w.service.LoadQuestions(ctx, req.IDs)
	if err != nil {
		w.logger.Warn().Err(err).Str("room_code", req.RoomCode).Msg("prefetch failed")
		return
	}
	invalid := 0
	for _, q := range qs {
		if q.Invalid {
			invalid++
		}
	}
	w.logger.Debug().
		Str("room_code", req.RoomCode).
		Int("questions", len(qs)).
		Int("invalid", invalid).
		Msg("question set warmed")
}

func (w *PrefetchWorker) Stop() {
	close(w.shutdownC)
}
