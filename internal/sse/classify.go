package sse

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/simtai/simtai/internal/exam"
)

const (
	// DataPrefix marks a frame that carries a payload. Other frames are
	// comments or heartbeats.
	DataPrefix = "data: "

	// DoneSentinel is the payload of the terminal frame.
	DoneSentinel = "[DONE]"

	// PreviewLimit caps the payload preview kept on Malformed events.
	PreviewLimit = 500
)

// Classify parses one trimmed frame. ok is false when the frame produces no
// event: it lacks the data prefix, or it is a context update with empty
// content.
func Classify(frame string) (ev Event, ok bool) {
	payload, found := strings.CutPrefix(frame, DataPrefix)
	if !found {
		return nil, false
	}
	if payload == DoneSentinel {
		return StreamEnd{}, true
	}

	raw := []byte(payload)
	if !json.Valid(raw) {
		return Malformed{Preview: Preview(payload), Reason: ReasonParse}, true
	}

	switch firstByte(raw) {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return Malformed{Preview: Preview(payload), Reason: ReasonParse}, true
		}
		return QuestionBatch{Questions: exam.DecodeQuestions(elems)}, true

	case '{':
		return classifyObject(raw, payload)
	}

	return Malformed{Preview: Preview(payload), Reason: ReasonNotArray}, true
}

// envelope is the discriminated object shape used for log and context frames.
type envelope struct {
	Type    string `json:"type"`
	Msg     string `json:"msg,omitempty"`
	Content string `json:"content,omitempty"`
}

func classifyObject(raw []byte, payload string) (Event, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Valid JSON with a mistyped field, such as a numeric msg.
		return Malformed{Preview: Preview(payload), Reason: ReasonUnknownShape}, true
	}

	switch env.Type {
	case "log":
		return LogMessage{Msg: env.Msg}, true
	case "context":
		if env.Content == "" {
			return nil, false
		}
		return ContextUpdate{Content: env.Content}, true
	}
	return Malformed{Preview: Preview(payload), Reason: ReasonUnknownShape}, true
}

func firstByte(raw []byte) byte {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// Preview truncates s to PreviewLimit runes.
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= PreviewLimit {
		return s
	}
	n := 0
	for i := range s {
		if n == PreviewLimit {
			return s[:i]
		}
		n++
	}
	return s
}
