// Package examgen produces exam questions from study material with an LLM,
// in batches, for the generation service.
package examgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/llm"
)

// Material modes accepted by the generation service.
const (
	ModeManual    = "manual"
	ModeRandom    = "random_1"
	ModeSimulacro = "simulacro_3"
)

// Input describes a whole exam.
type Input struct {
	NumQuestions int
	Difficulty   exam.Difficulty
	Topic        string
	Context      string
	Mode         string
}

// BatchInput is one LLM call's share of an exam.
type BatchInput struct {
	Input

	// Count is how many questions this batch asks for.
	Count int

	// Prior holds the statements already generated for this exam.
	Prior []string
}

// Batch is the outcome of one LLM call.
type Batch struct {
	Questions []exam.Question
	Rejected  []*ValidationError
}

// Sink receives the progress and output of Run. sse.Writer implements it.
type Sink interface {
	Log(msg string) error
	Batch(qs []exam.Question) error
}

// Generator produces exam questions.
type Generator interface {
	GenerateBatch(ctx context.Context, in BatchInput) (*Batch, error)
	Run(ctx context.Context, in Input, sink Sink) error
}

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &LLMGenerator{provider: provider, config: cfg}
}

// batchOutput is the raw LLM response before validation.
type batchOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Refutations  []string `json:"refutations"`
}

// GenerateBatch makes one LLM call for in.Count questions. Questions that
// fail a validator are returned in Rejected instead of Questions. IDs are
// left unset.
func (g *LLMGenerator) GenerateBatch(ctx context.Context, in BatchInput) (*Batch, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExamGen)

	req := llm.Prompt(systemPrompt, buildUserMessage(in, g.config), BatchSchema(in.Count))
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = g.config.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(raw.Questions) > in.Count {
		raw.Questions = raw.Questions[:in.Count]
	}

	batch := &Batch{}
	check := in
	check.Prior = append([]string(nil), in.Prior...)
	for _, r := range raw.Questions {
		q := r.toQuestion()
		if verr := g.validate(&q, check); verr != nil {
			batch.Rejected = append(batch.Rejected, verr)
			continue
		}
		batch.Questions = append(batch.Questions, q)
		check.Prior = append(check.Prior, q.Prompt)
	}
	return batch, nil
}

func (g *LLMGenerator) validate(q *exam.Question, in BatchInput) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q, in); verr != nil {
			return verr
		}
	}
	return nil
}

func (r questionOutput) toQuestion() exam.Question {
	q := exam.Question{
		Prompt:       r.Question,
		Options:      r.Options,
		CorrectIndex: r.CorrectIndex,
		Explanation:  r.Explanation,
	}
	for i, text := range r.Refutations {
		if i == r.CorrectIndex || i >= len(r.Options) || text == "" {
			continue
		}
		if q.Refutations == nil {
			q.Refutations = make(map[string]string)
		}
		q.Refutations[strconv.Itoa(i)] = text
	}
	return q
}

// Run generates in.NumQuestions questions in batches of Config.BatchSize.
// Each batch is announced with a log line and delivered as one Batch call,
// with IDs numbered from 1 across the whole exam. A failed batch is
// reported to the sink and generation continues with the next one. Run
// returns early only on context cancellation or a sink write error.
func (g *LLMGenerator) Run(ctx context.Context, in Input, sink Sink) error {
	size := g.config.BatchSize
	total := (in.NumQuestions + size - 1) / size
	nextID := 1
	var prior []string

	for i := range total {
		if err := ctx.Err(); err != nil {
			return err
		}
		count := min(size, in.NumQuestions-i*size)
		if err := sink.Log(fmt.Sprintf("⏳ Generando lote %d/%d (%d preguntas)...", i+1, total, count)); err != nil {
			return err
		}

		batch, err := g.GenerateBatch(ctx, BatchInput{Input: in, Count: count, Prior: prior})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err := sink.Log(fmt.Sprintf("[ERROR] Lote %d/%d: %v", i+1, total, llm.Describe(err))); err != nil {
				return err
			}
			continue
		}

		for _, verr := range batch.Rejected {
			if err := sink.Log(fmt.Sprintf("[DESCARTADA] %s", verr.Message)); err != nil {
				return err
			}
		}
		if len(batch.Questions) == 0 {
			continue
		}
		for j := range batch.Questions {
			batch.Questions[j].ID = json.RawMessage(strconv.Itoa(nextID))
			nextID++
			prior = append(prior, batch.Questions[j].Prompt)
		}
		if err := sink.Batch(batch.Questions); err != nil {
			return err
		}
	}
	return nil
}
