package repository

import (
	"context"
	"fmt"

	sqlcgen "github.com/gokatarajesh/coupsurcoup/internal/db/sqlc"
)

type coinStore interface {
	InsertCoinTransaction(ctx context.Context, arg sqlcgen.InsertCoinTransactionParams) error
}

// CoinRepository appends coin transactions; rows are never updated.
type CoinRepository struct {
	store coinStore
}

func NewCoinRepository(store coinStore) *CoinRepository {
	return &CoinRepository{store: store}
}

// AppendAll inserts each entry; ids are idempotent so retries are safe.
func (r *CoinRepository) AppendAll(ctx context.Context, entries []sqlcgen.InsertCoinTransactionParams) error {
	for _, e := range entries {
		if err := r.store.InsertCoinTransaction(ctx, e); err != nil {
			return fmt.Errorf("insert coin transaction: %w", err)
		}
	}
	return nil
}
