package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/sse"
)

func batch(prompts ...string) sse.QuestionBatch {
	var qs []exam.Question
	for _, p := range prompts {
		qs = append(qs, exam.Question{Prompt: p, Options: []string{"a", "b"}})
	}
	return sse.QuestionBatch{Questions: qs}
}

func prompts(qs []exam.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Prompt
	}
	return out
}

func TestLog_RingBuffer(t *testing.T) {
	l := NewLog(3)
	for i := 1; i <= 5; i++ {
		l.Appendf("entry %d", i)
	}

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	if l.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", l.Dropped())
	}

	var got []string
	for _, e := range l.Entries() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"entry 3", "entry 4", "entry 5"}, got)

	tail := l.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, "entry 4", tail[0].Message)
	assert.Equal(t, "entry 5", tail[1].Message)

	l.Clear()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Entries())
}

func TestLog_DefaultCapacity(t *testing.T) {
	l := NewLog(0)
	if l.Capacity() != DefaultLogCapacity {
		t.Fatalf("Capacity = %d, want %d", l.Capacity(), DefaultLogCapacity)
	}
	for i := 0; i < DefaultLogCapacity+50; i++ {
		l.Append("x")
	}
	if l.Len() != DefaultLogCapacity {
		t.Errorf("Len = %d, want %d", l.Len(), DefaultLogCapacity)
	}
}

func TestLog_EntriesAreTimestamped(t *testing.T) {
	l := NewLog(2)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	l.Append("hola")

	e := l.Entries()[0]
	assert.Equal(t, fixed, e.Time)
	assert.Equal(t, "[09:30:00] hola", e.String())
}

func TestAggregator_AccumulatesInOrder(t *testing.T) {
	ctx := context.Background()
	log := NewLog(0)
	store := NewMemoryStore()
	agg := NewAggregator(log, store)

	events := []sse.Event{
		sse.LogMessage{Msg: "Generando lote 1"},
		sse.ContextUpdate{Content: "C1"},
		batch("Q1", "Q2"),
		batch("Q3"),
		sse.StreamEnd{},
	}
	for i, ev := range events {
		done := agg.Handle(ctx, ev)
		if done != (i == len(events)-1) {
			t.Fatalf("event %d: done = %v", i, done)
		}
		if i == 2 && agg.Accepted() != 2 {
			t.Fatalf("Accepted = %d after first batch, want 2", agg.Accepted())
		}
	}

	res := agg.Result()
	assert.True(t, res.Ended)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, prompts(res.Questions))

	content, ok, err := store.GetContext(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "C1", content)
	assert.Equal(t, "C1", agg.Context())

	msgs := log.Entries()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Generando lote 1", msgs[0].Message)
	assert.Contains(t, msgs[1].Message, "Context updated")
	assert.Contains(t, msgs[2].Message, "3 questions")
}

func TestAggregator_MalformedInterleaving(t *testing.T) {
	// Every interleaving of three valid batches with two malformed frames
	// yields the same questions and exactly two diagnostics.
	valid := []sse.Event{batch("Q1"), batch("Q2", "Q3"), batch("Q4")}
	bad := sse.Malformed{Preview: "{oops", Reason: sse.ReasonParse}

	positions := [][2]int{{0, 0}, {0, 3}, {1, 2}, {3, 3}, {2, 3}, {0, 1}}
	for _, pos := range positions {
		t.Run(fmt.Sprintf("malformed-at-%d-%d", pos[0], pos[1]), func(t *testing.T) {
			var events []sse.Event
			for i := 0; i <= len(valid); i++ {
				for _, p := range pos {
					if p == i {
						events = append(events, bad)
					}
				}
				if i < len(valid) {
					events = append(events, valid[i])
				}
			}
			events = append(events, sse.StreamEnd{})

			log := NewLog(0)
			agg := NewAggregator(log, nil)
			for _, ev := range events {
				agg.Handle(context.Background(), ev)
			}

			res := agg.Result()
			assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, prompts(res.Questions))
			assert.Equal(t, 2, res.Malformed)

			diagnostics := 0
			for _, e := range log.Entries() {
				if strings.HasPrefix(e.Message, "[PARSE ERROR]") {
					diagnostics++
				}
			}
			assert.Equal(t, 2, diagnostics)
		})
	}
}

func TestAggregator_CloseWithoutSentinel(t *testing.T) {
	agg := NewAggregator(NewLog(0), nil)
	agg.Handle(context.Background(), batch("Q1"))

	res := agg.Close()
	assert.False(t, res.Ended)
	assert.NoError(t, res.Err)
	assert.Len(t, res.Questions, 1)
	assert.True(t, agg.Done())
}

func TestAggregator_FailKeepsPartial(t *testing.T) {
	log := NewLog(0)
	agg := NewAggregator(log, nil)
	agg.Handle(context.Background(), batch("Q1", "Q2"))

	boom := errors.New("connection reset by peer")
	res := agg.Fail(boom)
	assert.ErrorIs(t, res.Err, boom)
	assert.Len(t, res.Questions, 2)

	last := log.Entries()[log.Len()-1]
	assert.Equal(t, "[ERROR] connection reset by peer", last.Message)
}

func TestAggregator_IgnoresEventsAfterCompletion(t *testing.T) {
	agg := NewAggregator(NewLog(0), nil)
	agg.Handle(context.Background(), sse.StreamEnd{})
	agg.Handle(context.Background(), batch("late"))
	assert.Empty(t, agg.Result().Questions)

	res := agg.Fail(errors.New("late failure"))
	assert.NoError(t, res.Err)
}

type failingStore struct{ MemoryStore }

func (f *failingStore) SetContext(context.Context, string) error {
	return errors.New("disk full")
}

func TestAggregator_ContextPersistFailureIsLogged(t *testing.T) {
	log := NewLog(0)
	agg := NewAggregator(log, &failingStore{})
	done := agg.Handle(context.Background(), sse.ContextUpdate{Content: "C1"})

	assert.False(t, done)
	assert.Equal(t, "C1", agg.Context())
	assert.Contains(t, log.Entries()[0].Message, "disk full")
}
