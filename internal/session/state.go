package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/simtai/simtai/internal/exam"
)

// State is the phase of an exam session.
type State int

const (
	StateIdle       State = iota // Waiting for a start request
	StateGenerating              // Streaming questions from the service
	StatePresenting              // The user is answering
	StateFinished                // Scored; review is available
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StatePresenting:
		return "presenting"
	case StateFinished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrBusy is returned by Start while a generation is in flight.
	ErrBusy = errors.New("a generation is already in progress")

	// ErrNoQuestions is the last error after a stream that produced nothing.
	ErrNoQuestions = errors.New("no questions produced, check input or retry")

	// ErrNoConfig is returned by Retry when no configuration was retained.
	ErrNoConfig = errors.New("no previous configuration to retry")

	// ErrInvalidState is returned for an operation the current state does not allow.
	ErrInvalidState = errors.New("operation not allowed in the current state")

	// ErrInvalidOption is returned by Select for an index outside the options.
	ErrInvalidOption = errors.New("option index out of range")

	// ErrPickerUnavailable is returned when the host has no folder picker.
	ErrPickerUnavailable = errors.New("folder picker is not available on this host")
)

// Progress is the generation progress shown while streaming.
type Progress struct {
	Accepted  int
	Requested int
}

// Current is the question on screen and its answer state.
type Current struct {
	Index    int
	Total    int
	Question exam.Question
	Record   exam.AnswerRecord
}

// ReviewItem is one question in a review listing.
type ReviewItem struct {
	Index    int
	Question exam.Question
	Record   exam.AnswerRecord
}

// Summary describes a finished session for display.
type Summary struct {
	SessionID string
	Score     exam.Score
	Duration  time.Duration
	Expired   bool
	Config    exam.SessionConfig
}
