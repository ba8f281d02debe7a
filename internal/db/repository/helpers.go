package repository

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned when an update touches no row.
var ErrNotFound = errors.New("record not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PgUUID converts a google uuid into the pgtype used by sqlc params.
func PgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// FromPgUUID converts back; invalid values map to uuid.Nil.
func FromPgUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}

// PgUUIDs converts a slice of ids.
func PgUUIDs(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		out[i] = PgUUID(id)
	}
	return out
}
