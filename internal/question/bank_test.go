package question

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/coupsurcoup/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

type mockQuestionStore struct {
	mock.Mock
}

func (m *mockQuestionStore) ListQuestionIDsByType(ctx context.Context, arg sqlcgen.ListQuestionIDsByTypeParams) ([]string, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockQuestionStore) GetQuestion(ctx context.Context, questionID string) (sqlcgen.Question, error) {
	args := m.Called(ctx, questionID)
	return args.Get(0).(sqlcgen.Question), args.Error(1)
}

func (m *mockQuestionStore) UpsertQuestion(ctx context.Context, arg sqlcgen.UpsertQuestionParams) error {
	return m.Called(ctx, arg).Error(0)
}

func TestPostgresBankMapsRow(t *testing.T) {
	store := new(mockQuestionStore)
	bank := NewPostgresBank(repository.NewQuestionRepository(store))

	store.On("GetQuestion", mock.Anything, "trap-1").Return(sqlcgen.Question{
		QuestionID:   "trap-1",
		Type:         TypeTrapList,
		Prompt:       "Lesquels sont des fleuves ?",
		Propositions: []string{"Loire", "Seine", "Everest"},
		FalseIndex:   pgtype.Int4{Int32: 2, Valid: true},
	}, nil)

	rec, err := bank.GetQuestionByID(context.Background(), "trap-1")
	require.NoError(t, err)
	require.NotNil(t, rec.FalseIndex)
	assert.Equal(t, 2, *rec.FalseIndex)
	assert.Nil(t, rec.CorrectIndex)

	q, err := Normalize(rec)
	require.NoError(t, err)
	assert.Equal(t, 2, q.CorrectIndex)
	assert.True(t, q.IsTrap())
}

func TestPostgresBankNotFound(t *testing.T) {
	store := new(mockQuestionStore)
	bank := NewPostgresBank(repository.NewQuestionRepository(store))
	store.On("GetQuestion", mock.Anything, "nope").Return(sqlcgen.Question{}, pgx.ErrNoRows)

	_, err := bank.GetQuestionByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresBankSave(t *testing.T) {
	store := new(mockQuestionStore)
	bank := NewPostgresBank(repository.NewQuestionRepository(store))

	store.On("UpsertQuestion", mock.Anything, mock.MatchedBy(func(p sqlcgen.UpsertQuestionParams) bool {
		return p.QuestionID == "sel-1" &&
			p.Correct.Valid && p.Correct.String == "visible2" &&
			!p.CorrectIndex.Valid &&
			p.Propositions != nil
	})).Return(nil)

	err := bank.Save(context.Background(), Record{
		ID:       "sel-1",
		Type:     TypeSelection,
		Question: "Capitale de l'Italie ?",
		Options:  []string{"Milan", "Rome"},
		Correct:  "visible2",
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}
