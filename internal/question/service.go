package question

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// Bank is the persistence view of the question bank.
type Bank interface {
	ListQuestionIDsByType(ctx context.Context, qType string, limit int) ([]string, error)
	GetQuestionByID(ctx context.Context, id string) (Record, error)
}

// QuestionCache defines cache behavior (implemented by Redis-backed Cache).
type QuestionCache interface {
	GetMany(ctx context.Context, ids []string) (map[string]Question, error)
	SetMany(ctx context.Context, questions []Question) error
}

// ErrNotFound is returned by banks for unknown question ids.
var ErrNotFound = errors.New("question not found")

// Service draws match sets and loads normalised questions through the cache.
type Service struct {
	bank    Bank
	cache   QuestionCache
	logger  zerolog.Logger
	shuffle func(n int, swap func(i, j int))
}

type ServiceOptions struct {
	// Shuffle overrides the random permutation; tests pin it for determinism.
	Shuffle func(n int, swap func(i, j int))
}

func NewService(bank Bank, cache QuestionCache, logger zerolog.Logger, opts ServiceOptions) *Service {
	shuffle := opts.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Service{
		bank:    bank,
		cache:   cache,
		logger:  logger.With().Str("component", "question_service").Logger(),
		shuffle: shuffle,
	}
}

// DrawQuestionSet returns the ordered ids for one match. Each quota is shuffled
// on its own and the chunks are concatenated in table order.
func (s *Service) DrawQuestionSet(ctx context.Context) ([]string, error) {
	out := make([]string, 0, SetSize())
	for _, quota := range Quotas {
		ids, err := s.bank.ListQuestionIDsByType(ctx, quota.Type, 0)
		if err != nil {
			return nil, fmt.Errorf("list %s questions: %w", quota.Type, err)
		}
		if len(ids) < quota.Count {
			return nil, &InsufficientBankError{Type: quota.Type, Need: quota.Count, Have: len(ids)}
		}
		pool := append([]string(nil), ids...)
		s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		out = append(out, pool[:quota.Count]...)
	}
	return out, nil
}

// LoadQuestions resolves ids in order. Records that fail normalisation come back
// flagged Invalid so the round can skip them.
func (s *Service) LoadQuestions(ctx context.Context, ids []string) ([]Question, error) {
	cached := map[string]Question{}
	if s.cache != nil {
		hit, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			s.logger.Warn().Err(err).Msg("question cache read failed")
		} else if hit != nil {
			cached = hit
		}
	}

	out := make([]Question, 0, len(ids))
	var fresh []Question
	for _, id := range ids {
		if q, ok := cached[id]; ok {
			out = append(out, q)
			continue
		}
		rec, err := s.bank.GetQuestionByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load question %s: %w", id, err)
		}
		q, err := Normalize(rec)
		if err != nil {
			s.logger.Error().Err(err).Str("question_id", id).Msg("question flagged invalid")
		}
		out = append(out, q)
		fresh = append(fresh, q)
	}

	if s.cache != nil && len(fresh) > 0 {
		if err := s.cache.SetMany(ctx, fresh); err != nil {
			s.logger.Warn().Err(err).Msg("question cache write failed")
		}
	}
	return out, nil
}
