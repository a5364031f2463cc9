package domain

// Option is one selectable choice for a multiple-choice question. Value is
// the canonical answer payload; Label is the display text.
type Option struct {
	ID         int64  `json:"id"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	OrderIndex int    `json:"order_index,omitempty"`
}

// Question is a single intake question. An empty Options slice means the
// question takes free text.
type Question struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	OrderIndex int      `json:"order_index"`
	Options    []Option `json:"options"`
}

// IsFreeText reports whether the question takes a typed answer.
func (q *Question) IsFreeText() bool {
	return len(q.Options) == 0
}

// MatchOption finds the option whose value or label equals the given answer.
// Earlier revisions of the flow persisted the option value while later ones
// persisted the label, so a stored answer must match against either field.
func (q *Question) MatchOption(answer string) (*Option, bool) {
	if answer == "" {
		return nil, false
	}
	for i := range q.Options {
		if q.Options[i].Value == answer || q.Options[i].Label == answer {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// AnswerPair joins a question's text with the answer a mother gave it,
// ordered by the question's position in the catalog.
type AnswerPair struct {
	OrderIndex int    `json:"order_index"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}
