package question

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

// PostgresBank serves the question bank from the questions table.
type PostgresBank struct {
	repo *repository.QuestionRepository
}

var _ Bank = (*PostgresBank)(nil)

func NewPostgresBank(repo *repository.QuestionRepository) *PostgresBank {
	return &PostgresBank{repo: repo}
}

func (b *PostgresBank) ListQuestionIDsByType(ctx context.Context, qType string, limit int) ([]string, error) {
	return b.repo.ListIDsByType(ctx, qType, limit)
}

func (b *PostgresBank) GetQuestionByID(ctx context.Context, id string) (Record, error) {
	row, err := b.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return recordFromRow(row), nil
}

// Save upserts a record; used by the seed command.
func (b *PostgresBank) Save(ctx context.Context, r Record) error {
	return b.repo.Upsert(ctx, sqlcgen.UpsertQuestionParams{
		QuestionID:   r.ID,
		Type:         r.Type,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Prompt:       r.Question,
		Options:      nonNil(r.Options),
		CorrectIndex: optInt(r.CorrectIndex),
		Correct:      optText(r.Correct),
		HiddenAnswer: optText(r.HiddenAnswer),
		Propositions: nonNil(r.Propositions),
		FalseIndex:   optInt(r.FalseIndex),
	})
}

func recordFromRow(row sqlcgen.Question) Record {
	r := Record{
		ID:           row.QuestionID,
		Type:         row.Type,
		Category:     row.Category,
		Difficulty:   row.Difficulty,
		Question:     row.Prompt,
		Options:      row.Options,
		Correct:      row.Correct.String,
		HiddenAnswer: row.HiddenAnswer.String,
		Propositions: row.Propositions,
	}
	if row.CorrectIndex.Valid {
		v := int(row.CorrectIndex.Int32)
		r.CorrectIndex = &v
	}
	if row.FalseIndex.Valid {
		v := int(row.FalseIndex.Int32)
		r.FalseIndex = &v
	}
	return r
}

func optInt(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func optText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
