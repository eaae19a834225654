// Package ingest accumulates the events of one generation stream into a
// question list, a diagnostic log and the persisted study context.
package ingest

import (
	"context"
	"fmt"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/sse"
)

// Result is what a finished stream produced.
type Result struct {
	// Questions holds every accepted question in arrival order.
	Questions []exam.Question

	// Ended is true when the terminal sentinel was seen.
	Ended bool

	// Err is the transport failure that ended the stream, if any.
	Err error

	// Malformed counts rejected frames.
	Malformed int
}

// Aggregator applies the events of a single generation request. It is not
// safe for concurrent use; events must be applied in arrival order.
type Aggregator struct {
	log   *Log
	store ContextStore

	context   string
	questions []exam.Question
	malformed int
	done      bool
	result    Result
}

// NewAggregator returns an Aggregator writing diagnostics to log and
// persisting context updates to store. store may be nil.
func NewAggregator(log *Log, store ContextStore) *Aggregator {
	return &Aggregator{log: log, store: store}
}

// Handle applies one event. It returns true once the stream is complete;
// later events are ignored.
func (a *Aggregator) Handle(ctx context.Context, ev sse.Event) bool {
	if a.done {
		return true
	}

	switch e := ev.(type) {
	case sse.LogMessage:
		a.log.Append(e.Msg)

	case sse.ContextUpdate:
		a.context = e.Content
		if a.store != nil {
			if err := a.store.SetContext(ctx, e.Content); err != nil {
				a.log.Appendf("[ERROR] saving context: %v", err)
				break
			}
		}
		a.log.Appendf("Context updated (%d chars)", len([]rune(e.Content)))

	case sse.QuestionBatch:
		a.questions = append(a.questions, e.Questions...)

	case sse.Malformed:
		a.malformed++
		a.log.Appendf("[%s] %s", tagFor(e.Reason), e.Preview)

	case sse.StreamEnd:
		a.log.Appendf("Stream finished: %d questions", len(a.questions))
		a.complete(true, nil)

	default:
		a.log.Appendf("[PARSE ERROR] unhandled event %T", ev)
	}
	return a.done
}

// Close marks the stream complete when the transport ended without the
// terminal sentinel.
func (a *Aggregator) Close() Result {
	if !a.done {
		a.log.Appendf("Stream closed: %d questions", len(a.questions))
		a.complete(false, nil)
	}
	return a.result
}

// Fail records a transport failure and completes with what was accumulated.
func (a *Aggregator) Fail(err error) Result {
	if !a.done {
		a.log.Appendf("[ERROR] %v", err)
		a.complete(false, err)
	}
	return a.result
}

// Result returns the completion result. It is zero until the stream ends.
func (a *Aggregator) Result() Result {
	return a.result
}

// Done reports whether the stream has completed.
func (a *Aggregator) Done() bool {
	return a.done
}

// Accepted is the running count of questions received.
func (a *Aggregator) Accepted() int {
	return len(a.questions)
}

// Context returns the latest context seen on this stream.
func (a *Aggregator) Context() string {
	return a.context
}

func (a *Aggregator) complete(ended bool, err error) {
	a.done = true
	a.result = Result{
		Questions: a.questions,
		Ended:     ended,
		Err:       err,
		Malformed: a.malformed,
	}
}

func tagFor(reason string) string {
	switch reason {
	case sse.ReasonNotArray:
		return "NOT ARRAY"
	case sse.ReasonUnknownShape:
		return "UNKNOWN"
	}
	return "PARSE ERROR"
}

// String summarizes a result for logs.
func (r Result) String() string {
	status := "closed"
	switch {
	case r.Err != nil:
		status = fmt.Sprintf("failed: %v", r.Err)
	case r.Ended:
		status = "done"
	}
	return fmt.Sprintf("%d questions, %d malformed, %s", len(r.Questions), r.Malformed, status)
}
