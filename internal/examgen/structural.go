package examgen

import (
	"strings"

	"github.com/simtai/simtai/internal/exam"
)

// StructuralValidator checks that a question can be presented and scored.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *exam.Question, _ BatchInput) *ValidationError {
	if strings.TrimSpace(q.Prompt) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if len(q.Options) < 2 {
		return &ValidationError{Validator: v.Name(), Message: "fewer than 2 options"}
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return &ValidationError{Validator: v.Name(), Message: "an option is empty"}
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return &ValidationError{Validator: v.Name(), Message: "correct_index out of range"}
	}
	return nil
}

// DuplicateValidator rejects a question whose statement repeats one
// already generated for the same exam.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q *exam.Question, in BatchInput) *ValidationError {
	key := normalizePrompt(q.Prompt)
	for _, p := range in.Prior {
		if normalizePrompt(p) == key {
			return &ValidationError{Validator: v.Name(), Message: "repeats an earlier question"}
		}
	}
	return nil
}

func normalizePrompt(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
