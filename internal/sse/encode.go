package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/simtai/simtai/internal/exam"
)

// Writer emits frames in the format Classify reads. Each write is flushed
// immediately when the underlying writer supports it. Writer is safe for
// concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
	f  http.Flusher
}

// NewWriter wraps w. If w is an http.Flusher, every frame is flushed.
func NewWriter(w io.Writer) *Writer {
	f, _ := w.(http.Flusher)
	return &Writer{w: w, f: f}
}

// Log writes a progress frame.
func (w *Writer) Log(msg string) error {
	return w.json(envelope{Type: "log", Msg: msg})
}

// Context writes a context frame. Empty content is skipped because readers
// ignore it.
func (w *Writer) Context(content string) error {
	if content == "" {
		return nil
	}
	return w.json(envelope{Type: "context", Content: content})
}

// Batch writes one question array frame.
func (w *Writer) Batch(qs []exam.Question) error {
	if qs == nil {
		qs = []exam.Question{}
	}
	return w.json(qs)
}

// Done writes the terminal sentinel.
func (w *Writer) Done() error {
	return w.frame(DoneSentinel)
}

func (w *Writer) json(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	return w.frame(string(b))
}

func (w *Writer) frame(payload string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, DataPrefix+payload+"\n\n"); err != nil {
		return err
	}
	if w.f != nil {
		w.f.Flush()
	}
	return nil
}
