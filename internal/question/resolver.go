package question

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDataEncoding marks a record whose correct answer cannot be derived.
var ErrDataEncoding = errors.New("question answer encoding unresolvable")

// DataEncodingError carries the offending question id.
type DataEncodingError struct {
	QuestionID string
	Reason     string
}

func (e *DataEncodingError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

func (e *DataEncodingError) Unwrap() error {
	return ErrDataEncoding
}

// ParseSpec picks the encoding in priority order: "autre", "visibleN",
// correctIndex, then trap-list falseIndex.
func ParseSpec(r Record) (AnswerSpec, error) {
	switch {
	case r.Correct == CorrectOther:
		if strings.TrimSpace(r.HiddenAnswer) == "" {
			return AnswerSpec{}, &DataEncodingError{QuestionID: r.ID, Reason: `"autre" without hidden answer`}
		}
		return AnswerSpec{Kind: SpecHiddenAnswer, Index: unresolvedSlot, Text: r.HiddenAnswer}, nil
	case strings.HasPrefix(r.Correct, visiblePrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(r.Correct, visiblePrefix))
		if err != nil || n < 1 {
			return AnswerSpec{}, &DataEncodingError{QuestionID: r.ID, Reason: fmt.Sprintf("bad visible marker %q", r.Correct)}
		}
		return AnswerSpec{Kind: SpecVisibleIndex, Index: n - 1}, nil
	case r.CorrectIndex != nil:
		return AnswerSpec{Kind: SpecExplicitIndex, Index: *r.CorrectIndex}, nil
	case r.FalseIndex != nil && len(r.Propositions) > 0:
		return AnswerSpec{Kind: SpecTrapIndex, Index: *r.FalseIndex}, nil
	}
	return AnswerSpec{}, &DataEncodingError{QuestionID: r.ID, Reason: "no answer encoding"}
}

// DisplayedOptions returns the choices shown to players. For "autre" questions
// the hidden answer is appended when the visible list does not contain it.
func DisplayedOptions(r Record, spec AnswerSpec) []string {
	if spec.Kind == SpecTrapIndex {
		return append([]string(nil), r.Propositions...)
	}
	opts := append([]string(nil), r.Options...)
	if spec.Kind == SpecHiddenAnswer && indexOf(opts, spec.Text) < 0 {
		opts = append(opts, spec.Text)
	}
	return opts
}

// ResolveCorrectIndex maps a spec onto the displayed options. For trap specs
// the returned index is the intruder. Returns -1 when out of range.
func ResolveCorrectIndex(spec AnswerSpec, displayed []string) int {
	idx := unresolvedSlot
	switch spec.Kind {
	case SpecHiddenAnswer:
		idx = indexOf(displayed, spec.Text)
	case SpecVisibleIndex, SpecExplicitIndex, SpecTrapIndex:
		idx = spec.Index
	}
	if idx < 0 || idx >= len(displayed) {
		return unresolvedSlot
	}
	return idx
}

// Normalize turns a bank record into a playable question. Unresolvable
// records come back flagged Invalid together with the DataEncodingError.
func Normalize(r Record) (Question, error) {
	q := Question{
		ID:           r.ID,
		Type:         r.Type,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Prompt:       r.Question,
		CorrectIndex: unresolvedSlot,
	}
	spec, err := ParseSpec(r)
	if err != nil {
		q.Options = append([]string(nil), r.Options...)
		q.Invalid = true
		return q, err
	}
	q.Spec = spec
	q.Options = DisplayedOptions(r, spec)
	q.CorrectIndex = ResolveCorrectIndex(spec, q.Options)
	if q.CorrectIndex < 0 {
		q.Invalid = true
		return q, &DataEncodingError{QuestionID: r.ID, Reason: fmt.Sprintf("%s index out of range", spec.Kind)}
	}
	return q, nil
}

func indexOf(opts []string, target string) int {
	for i, o := range opts {
		if o == target {
			return i
		}
	}
	return -1
}
