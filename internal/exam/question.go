package exam

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Question is a single multiple-choice item as delivered by the generation
// service. Questions are never mutated after they are accepted into a session.
type Question struct {
	// ID is opaque. The service sends integers but any JSON scalar is kept
	// verbatim so it round-trips unchanged.
	ID json.RawMessage `json:"id,omitempty"`

	// Prompt is the question statement.
	Prompt string `json:"question"`

	// Options are the answer choices in display order.
	Options []string `json:"options"`

	// CorrectIndex is the 0-based index of the correct option.
	CorrectIndex int `json:"correct_index"`

	// Explanation is shown once the question has been answered.
	Explanation string `json:"explanation"`

	// Refutations maps a stringified wrong-option index to the reason that
	// option is wrong.
	Refutations map[string]string `json:"refutations,omitempty"`
}

// Key returns the question ID as a display string. Quoted JSON strings are
// unquoted; numbers and other scalars are returned as written.
func (q Question) Key() string {
	raw := bytes.TrimSpace(q.ID)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Valid reports whether the question has a prompt and CorrectIndex points
// into Options. The classifier accepts questions that fail this check;
// the exam screen flags them instead of naming a correct option.
func (q Question) Valid() bool {
	return q.Prompt != "" && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// IsCorrect reports whether choosing option i answers the question correctly.
func (q Question) IsCorrect(i int) bool {
	return i == q.CorrectIndex
}

// Refutation returns the refutation text for wrong option i, if any.
func (q Question) Refutation(i int) (string, bool) {
	if q.Refutations == nil || i == q.CorrectIndex {
		return "", false
	}
	r, ok := q.Refutations[strconv.Itoa(i)]
	if !ok || r == "" {
		return "", false
	}
	return r, true
}

// DecodeQuestions decodes each element of a JSON array independently.
// An element that is not an object, or has mistyped fields, still yields a
// Question holding whatever fields decoded; the batch is never dropped.
func DecodeQuestions(elems []json.RawMessage) []Question {
	out := make([]Question, 0, len(elems))
	for _, raw := range elems {
		var q Question
		// json.Unmarshal fills every field it can before reporting a
		// type mismatch, so the partial value is kept.
		_ = json.Unmarshal(raw, &q)
		out = append(out, q)
	}
	return out
}
