package llm

import (
	"context"
	"encoding/json"
)

// Provider is a chat model that answers one request at a time. Every
// vendor adapter, the retry and logging decorators and MockProvider
// implement it.
type Provider interface {
	// Generate returns the model's reply. When req.Schema is set the reply
	// has already been checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, recorded with every call.
	ModelID() string
}

// Request is one model call.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured JSON output. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature of zero leaves the vendor default.
	Temperature float64
}

// Prompt builds a single-turn request: a system prompt and one user
// message.
func Prompt(system, user string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
		Schema:   schema,
	}
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is who sent a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output. Name is kebab-case,
// e.g. "exam-batch"; some vendors require one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model's reply.
type Response struct {
	// Content is the validated JSON when a Schema was sent, else the raw
	// text.
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the call, which routing
	// vendors may report differently from ModelID.
	Model string

	// StopReason is "end". Truncated replies come back as
	// ErrMaxTokensExceeded.
	StopReason string
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
