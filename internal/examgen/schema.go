package examgen

import "github.com/simtai/simtai/internal/llm"

// OptionCount is the number of choices every generated question carries.
const OptionCount = 4

// BatchSchema returns the response schema for a batch of at most n
// questions. The array is wrapped in an object because strict structured
// output modes reject a top-level array.
func BatchSchema(n int) *llm.Schema {
	return &llm.Schema{
		Name:        "exam-batch",
		Description: "A batch of multiple-choice exam questions with explanations",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"maxItems": n,
					"items":    questionDefinition,
				},
			},
			"required":             []any{"questions"},
			"additionalProperties": false,
		},
	}
}

var questionDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "Enunciado técnico de la pregunta",
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"minItems":    OptionCount,
			"maxItems":    OptionCount,
			"description": "Exactly 4 answer options, without letter prefixes",
		},
		"correct_index": map[string]any{
			"type":        "integer",
			"minimum":     0,
			"maximum":     OptionCount - 1,
			"description": "0-based index of the correct option",
		},
		"explanation": map[string]any{
			"type":        "string",
			"description": "Why the correct option is right, then why the others are wrong",
		},
		"refutations": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"minItems":    OptionCount,
			"maxItems":    OptionCount,
			"description": "One entry per option: why that option is wrong, empty string for the correct one",
		},
	},
	"required":             []any{"question", "options", "correct_index", "explanation", "refutations"},
	"additionalProperties": false,
}
