package sse

import "github.com/simtai/simtai/internal/exam"

// Event is one classified frame. The set of variants is closed: the marker
// method is unexported, so only this package can add one.
type Event interface {
	event()
}

// LogMessage is a progress line from the generation service.
type LogMessage struct {
	Msg string
}

// ContextUpdate carries freshly extracted study material to persist.
type ContextUpdate struct {
	Content string
}

// QuestionBatch is one array of questions, in service order. Elements are
// not validated.
type QuestionBatch struct {
	Questions []exam.Question
}

// Malformed is a data frame whose payload could not be used.
type Malformed struct {
	// Preview is the start of the payload, at most PreviewLimit runes.
	Preview string
	// Reason says why the payload was rejected.
	Reason string
}

// StreamEnd is the terminal sentinel frame.
type StreamEnd struct{}

func (LogMessage) event()    {}
func (ContextUpdate) event() {}
func (QuestionBatch) event() {}
func (Malformed) event()     {}
func (StreamEnd) event()     {}

// Reasons reported on Malformed events.
const (
	ReasonParse        = "parse error"
	ReasonNotArray     = "not an array"
	ReasonUnknownShape = "unrecognized payload"
)
