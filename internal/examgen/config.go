package examgen

import (
	"os"
	"strconv"
)

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run on every generated question, in order. A question
	// failing any of them is dropped from its batch.
	Validators []Validator

	// BatchSize is the number of questions requested per LLM call.
	BatchSize int

	// MaxContextChars caps the study material included in the prompt,
	// counted in characters.
	MaxContextChars int

	// MaxTokens is the token budget for each batch response.
	MaxTokens int

	// Temperature controls LLM output randomness.
	Temperature float64

	// MaxPriorQuestions is the maximum number of already generated
	// prompts listed for deduplication.
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DuplicateValidator{},
		},
		BatchSize:         5,
		MaxContextChars:   30000,
		MaxTokens:         8192,
		Temperature:       1.0,
		MaxPriorQuestions: 20,
	}
}

// ConfigFromEnv returns DefaultConfig with SIMTAI_BATCH_SIZE and
// SIMTAI_MAX_CONTEXT_CHARS applied. Unparseable or non-positive values are
// ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if n, ok := positiveEnv("SIMTAI_BATCH_SIZE"); ok {
		cfg.BatchSize = n
	}
	if n, ok := positiveEnv("SIMTAI_MAX_CONTEXT_CHARS"); ok {
		cfg.MaxContextChars = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
