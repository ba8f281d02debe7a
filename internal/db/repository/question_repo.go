package repository

import (
	"context"

	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

type questionStore interface {
	ListQuestionIDsByType(ctx context.Context, arg sqlcgen.ListQuestionIDsByTypeParams) ([]string, error)
	GetQuestion(ctx context.Context, questionID string) (sqlcgen.Question, error)
	UpsertQuestion(ctx context.Context, arg sqlcgen.UpsertQuestionParams) error
}

// QuestionRepository wraps sqlc queries for the question bank.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// ListIDsByType returns ids for one round tag; limit 0 means all.
func (r *QuestionRepository) ListIDsByType(ctx context.Context, qType string, limit int) ([]string, error) {
	return r.store.ListQuestionIDsByType(ctx, sqlcgen.ListQuestionIDsByTypeParams{
		Type:  qType,
		Limit: int32(limit),
	})
}

func (r *QuestionRepository) Get(ctx context.Context, questionID string) (sqlcgen.Question, error) {
	return r.store.GetQuestion(ctx, questionID)
}

// Upsert stores a seeded question, replacing an existing id.
func (r *QuestionRepository) Upsert(ctx context.Context, params sqlcgen.UpsertQuestionParams) error {
	return r.store.UpsertQuestion(ctx, params)
}
