package sse

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simtai/simtai/internal/exam"
)

func TestWriter_FramesReadBack(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	q := exam.Question{
		Prompt:       "¿Qué significa TCP?",
		Options:      []string{"Transmission Control Protocol", "Total Control", "Tele Com", "Ninguna"},
		CorrectIndex: 0,
		Explanation:  "Protocolo de transporte.",
		Refutations:  map[string]string{"1": "No existe."},
	}
	require.NoError(t, w.Log("Generando lote 1/1"))
	require.NoError(t, w.Context(""))
	require.NoError(t, w.Context("Tema 1: redes"))
	require.NoError(t, w.Batch([]exam.Question{q}))
	require.NoError(t, w.Batch(nil))
	require.NoError(t, w.Done())

	items := collect(t, Stream(context.Background(), &buf, 7))
	var events []Event
	for _, it := range items {
		require.NoError(t, it.Err)
		events = append(events, it.Event)
	}

	require.Len(t, events, 5)
	assert.Equal(t, LogMessage{Msg: "Generando lote 1/1"}, events[0])
	assert.Equal(t, ContextUpdate{Content: "Tema 1: redes"}, events[1])
	batch, ok := events[2].(QuestionBatch)
	require.True(t, ok)
	require.Len(t, batch.Questions, 1)
	assert.Equal(t, q.Prompt, batch.Questions[0].Prompt)
	assert.Equal(t, "No existe.", batch.Questions[0].Refutations["1"])
	assert.Equal(t, QuestionBatch{Questions: []exam.Question{}}, events[3])
	assert.Equal(t, StreamEnd{}, events[4])
}

func TestWriter_LogFrameShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Log("hola"))
	assert.Equal(t, "data: {\"type\":\"log\",\"msg\":\"hola\"}\n\n", buf.String())
}

func TestWriter_FlushesResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	require.NoError(t, w.Done())
	assert.True(t, rec.Flushed)
	assert.Equal(t, "data: [DONE]\n\n", rec.Body.String())
}
