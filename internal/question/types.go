package question

// Round-type tags stored on every question document. The tag decides which
// quota (and therefore which round) can draw the question.
const (
	TypeSelection  = "selection"
	TypeDuel       = "duel"
	TypeTrapList   = "liste_piege"
	TypeFaceAFace  = "face_a_face"
	TypeChrono     = "chrono"
	TypeClueGrid   = "grille"
	CorrectOther   = "autre"
	visiblePrefix  = "visible"
	unresolvedSlot = -1
)

// Record is the raw bank document. Exactly one answer encoding is expected to
// be populated; Normalize turns it into an AnswerSpec.
type Record struct {
	ID           string   `json:"id" yaml:"id"`
	Type         string   `json:"type" yaml:"type"`
	Category     string   `json:"category" yaml:"category"`
	Difficulty   string   `json:"difficulty" yaml:"difficulty"`
	Question     string   `json:"question" yaml:"question"`
	Options      []string `json:"options,omitempty" yaml:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty" yaml:"correctIndex"`
	Correct      string   `json:"correct,omitempty" yaml:"correct"`
	HiddenAnswer string   `json:"hiddenAnswer,omitempty" yaml:"hiddenAnswer"`
	Propositions []string `json:"propositions,omitempty" yaml:"propositions"`
	FalseIndex   *int     `json:"falseIndex,omitempty" yaml:"falseIndex"`
}

// SpecKind tags the AnswerSpec variant.
type SpecKind string

const (
	SpecNone          SpecKind = ""
	SpecHiddenAnswer  SpecKind = "hidden_answer"
	SpecVisibleIndex  SpecKind = "visible_index"
	SpecExplicitIndex SpecKind = "explicit_index"
	SpecTrapIndex     SpecKind = "trap_index"
)

// AnswerSpec is the canonical form of the three bank encodings.
// Index is 0-based for VisibleIndex/ExplicitIndex/TrapIndex; Text is set for HiddenAnswer.
type AnswerSpec struct {
	Kind  SpecKind `json:"kind"`
	Index int      `json:"index"`
	Text  string   `json:"text,omitempty"`
}

// Question is a normalised, ready-to-play question.
type Question struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Category   string     `json:"category"`
	Difficulty string     `json:"difficulty"`
	Prompt     string     `json:"prompt"`
	Options    []string   `json:"options"`
	Spec       AnswerSpec `json:"spec"`
	// CorrectIndex is the resolved index into Options; for trap questions it
	// is the intruder. -1 when the record could not be resolved.
	CorrectIndex int  `json:"correct_index"`
	Invalid      bool `json:"invalid,omitempty"`
}

// IsTrap reports whether the question uses inverse (trap-list) semantics.
func (q Question) IsTrap() bool {
	return q.Spec.Kind == SpecTrapIndex
}

// IsCorrect reports whether choice is a correct pick for this question.
func (q Question) IsCorrect(choice int) bool {
	if q.Invalid || choice < 0 || choice >= len(q.Options) {
		return false
	}
	if q.IsTrap() {
		return choice != q.CorrectIndex
	}
	return choice == q.CorrectIndex
}

// Public strips the answer so the question can be sent to clients.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		Type:     q.Type,
		Category: q.Category,
		Prompt:   q.Prompt,
		Options:  q.Options,
	}
}

// PublicQuestion is what the presentation layer gets to see.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
}
