package examgen

import (
	"fmt"

	"github.com/simtai/simtai/internal/exam"
)

// Validator checks a generated question. Implementations should be
// stateless and safe for concurrent use.
type Validator interface {
	// Name is a short identifier used in log lines, e.g. "structural".
	Name() string

	// Validate returns nil if q passes.
	Validate(q *exam.Question, in BatchInput) *ValidationError
}

// ValidationError describes why a question was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
