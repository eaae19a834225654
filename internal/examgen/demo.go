package examgen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/simtai/simtai/internal/llm"
)

var demoSeq atomic.Int64

// DemoReply answers a batch request with placeholder questions. It lets
// the service run with the mock provider and no API key.
func DemoReply(_ context.Context, req llm.Request) llm.MockResponse {
	n := batchLimit(req.Schema)
	out := batchOutput{Questions: make([]questionOutput, 0, n)}
	for range n {
		seq := demoSeq.Add(1)
		correct := int(seq % OptionCount)
		q := questionOutput{
			Question:     fmt.Sprintf("Pregunta de demostración %d: ¿qué opción es la correcta?", seq),
			CorrectIndex: correct,
			Explanation:  fmt.Sprintf("La opción %c es la correcta en esta pregunta de demostración.", 'A'+correct),
		}
		for j := range OptionCount {
			q.Options = append(q.Options, fmt.Sprintf("Opción %c", 'A'+j))
			if j == correct {
				q.Refutations = append(q.Refutations, "")
			} else {
				q.Refutations = append(q.Refutations, fmt.Sprintf("La opción %c no es la indicada.", 'A'+j))
			}
		}
		out.Questions = append(out.Questions, q)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return llm.MockResponse{Err: err}
	}
	return llm.MockResponse{Content: b}
}

// batchLimit reads the maxItems BatchSchema put on the questions array.
func batchLimit(s *llm.Schema) int {
	const fallback = 5
	if s == nil {
		return fallback
	}
	props, _ := s.Definition["properties"].(map[string]any)
	questions, _ := props["questions"].(map[string]any)
	if n, ok := questions["maxItems"].(int); ok && n > 0 {
		return n
	}
	return fallback
}
