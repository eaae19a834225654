package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that is not JSON of the requested shape.
// Content holds what the model sent, if anything.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model reply: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers outages, network failures and any other
// provider error that is not a rate limit.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a reply cut off at MaxTokens. A batch that
// large will not fit on a retry either.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model reply truncated at the token limit"
}

// RawContent returns the model output carried by a rejected reply, or "".
func RawContent(err error) string {
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return string(inv.Content)
	}
	var mt *ErrMaxTokensExceeded
	if errors.As(err, &mt) {
		return string(mt.Content)
	}
	return ""
}

// Describe is the short reason shown to the person taking the exam.
func Describe(err error) string {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return "demasiadas peticiones a la IA (429), espera un minuto"
	}
	var mt *ErrMaxTokensExceeded
	if errors.As(err, &mt) {
		return "respuesta truncada, reduce el tamaño del lote"
	}
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return "la IA devolvió un formato no válido"
	}
	return err.Error()
}
