package question

import (
	"errors"
	"fmt"
)

// Quota is one entry of the fixed draw table.
type Quota struct {
	Round int
	Type  string
	Count int
}

// Quotas is drawn in this exact order; a question's position in the flat set
// decides which round consumes it.
var Quotas = []Quota{
	{Round: 1, Type: TypeSelection, Count: 25},
	{Round: 2, Type: TypeDuel, Count: 1},
	{Round: 3, Type: TypeTrapList, Count: 3},
	{Round: 4, Type: TypeFaceAFace, Count: 1},
	{Round: 5, Type: TypeChrono, Count: 25},
	{Round: 6, Type: TypeClueGrid, Count: 5},
}

// ErrInvalidRound is returned for rounds outside 1..6.
var ErrInvalidRound = errors.New("invalid round")

// Bounds is an inclusive [Start, End] slice of the drawn set.
type Bounds struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of questions in the block.
func (b Bounds) Len() int {
	return b.End - b.Start + 1
}

// Contains reports whether idx falls inside the block.
func (b Bounds) Contains(idx int) bool {
	return idx >= b.Start && idx <= b.End
}

// Wrap maps idx back into the block, cycling when it runs past the end.
func (b Bounds) Wrap(idx int) int {
	off := (idx - b.Start) % b.Len()
	if off < 0 {
		off += b.Len()
	}
	return b.Start + off
}

var roundBounds = buildBounds(Quotas)

func buildBounds(quotas []Quota) map[int]Bounds {
	out := make(map[int]Bounds, len(quotas))
	cursor := 0
	for _, q := range quotas {
		out[q.Round] = Bounds{Start: cursor, End: cursor + q.Count - 1}
		cursor += q.Count
	}
	return out
}

// SetSize is the total number of questions drawn per match.
func SetSize() int {
	total := 0
	for _, q := range Quotas {
		total += q.Count
	}
	return total
}

// RoundBounds looks up the fixed block for a round.
func RoundBounds(round int) (Bounds, error) {
	b, ok := roundBounds[round]
	if !ok {
		return Bounds{}, fmt.Errorf("round %d: %w", round, ErrInvalidRound)
	}
	return b, nil
}

// MustRoundBounds is RoundBounds for callers holding a known-valid round.
func MustRoundBounds(round int) Bounds {
	b, err := RoundBounds(round)
	if err != nil {
		panic(err)
	}
	return b
}

// InsufficientBankError means the bank cannot satisfy a quota.
type InsufficientBankError struct {
	Type string
	Need int
	Have int
}

func (e *InsufficientBankError) Error() string {
	return fmt.Sprintf("insufficient %s questions: need %d got %d", e.Type, e.Need, e.Have)
}
