package exam

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/router"
	"github.com/simtai/simtai/internal/session"
	"github.com/simtai/simtai/internal/sse"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testQuestions() []ex.Question {
	return []ex.Question{
		{
			Prompt:       "¿Qué puerto usa HTTP?",
			Options:      []string{"80", "21", "22", "25"},
			CorrectIndex: 0,
			Explanation:  "HTTP usa el puerto 80.",
			Refutations:  map[string]string{"1": "El 21 es FTP."},
		},
		{
			Prompt:       "¿En qué capa está IP?",
			Options:      []string{"Red", "Enlace", "Transporte", "Aplicación"},
			CorrectIndex: 0,
			Explanation:  "IP es un protocolo de red.",
		},
	}
}

func streamBody(t *testing.T, qs []ex.Question) string {
	t.Helper()
	var buf bytes.Buffer
	w := sse.NewWriter(&buf)
	require.NoError(t, w.Log("Generando lote 1/1"))
	require.NoError(t, w.Batch(qs))
	require.NoError(t, w.Done())
	return buf.String()
}

type fakeGen struct {
	body string
	err  error
	reqs []ex.GenerationRequest
}

func (g *fakeGen) Generate(_ context.Context, req ex.GenerationRequest) (io.ReadCloser, error) {
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return io.NopCloser(strings.NewReader(g.body)), nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// drive runs commands the way the app does, pumping stream messages until
// the screen handles the end of the run. It returns the screen's command.
func drive(t *testing.T, s *ExamScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 100, "stream did not end")
		msg := cmd()
		if next, ok := Pump(msg); ok {
			cmd = next
			continue
		}
		_, out := s.Update(msg)
		return out
	}
	return nil
}

func startExam(t *testing.T, gen *fakeGen) (*ExamScreen, *session.Machine) {
	t.Helper()
	m := session.New(session.Options{Generator: gen, Now: func() time.Time { return t0 }})
	cfg := ex.DefaultSessionConfig()
	cfg.NumQuestions = 2
	cfg.Topic = "Redes"
	run, err := m.Start(context.Background(), cfg)
	require.NoError(t, err)

	s := New(context.Background(), m, run)
	s.now = func() time.Time { return t0 }
	return s, m
}

func presentingExam(t *testing.T) (*ExamScreen, *session.Machine, *fakeGen) {
	t.Helper()
	gen := &fakeGen{body: streamBody(t, testQuestions())}
	s, m := startExam(t, gen)
	assert.Equal(t, "Generating", s.Title())
	assert.Nil(t, drive(t, s, s.Init()))
	require.Equal(t, session.StatePresenting, m.State())
	return s, m, gen
}

func TestExamScreen_GenerationToPresenting(t *testing.T) {
	s, _, gen := presentingExam(t)

	require.Len(t, gen.reqs, 1)
	assert.Equal(t, "Redes", gen.reqs[0].Topic)
	assert.Equal(t, "Exam", s.Title())
	assert.Contains(t, s.Status(), "15:00")

	view := s.View(100, 30)
	assert.Contains(t, view, "Question 1 of 2")
	assert.Contains(t, view, "¿Qué puerto usa HTTP?")
	assert.Contains(t, view, "A)  80")
}

func TestExamScreen_GeneratingView(t *testing.T) {
	gen := &fakeGen{body: streamBody(t, testQuestions())}
	s, _ := startExam(t, gen)

	view := s.View(100, 30)
	assert.Contains(t, view, "Generating questions")
	assert.Contains(t, view, "0/2")
	assert.Contains(t, view, "Requesting 2 questions")
}

func TestExamScreen_AnswerShowsFeedback(t *testing.T) {
	s, m, _ := presentingExam(t)

	s.Update(keyPress('b'))
	view := s.View(100, 30)
	assert.Contains(t, view, "Incorrect")
	assert.Contains(t, view, "El 21 es FTP.")
	assert.Contains(t, view, "HTTP usa el puerto 80.")

	s.Update(keyPress('A'))
	assert.Contains(t, s.View(100, 30), "Correct")
	assert.True(t, m.Records()[0].Correct, "latest selection wins")
}

func TestExamScreen_Navigation(t *testing.T) {
	s, m, _ := presentingExam(t)

	s.Update(specialKey(tea.KeyRight))
	assert.Contains(t, s.View(100, 30), "Question 2 of 2")
	s.Update(specialKey(tea.KeyRight))
	c, _ := m.Current()
	assert.Equal(t, 1, c.Index, "next at the last question is a no-op")

	s.Update(specialKey(tea.KeyLeft))
	c, _ = m.Current()
	assert.Equal(t, 0, c.Index)
}

func TestExamScreen_IgnoresKeysOutsideOptions(t *testing.T) {
	s, m, _ := presentingExam(t)
	s.Update(keyPress('e'))
	assert.False(t, m.Records()[0].Answered)
}

func TestExamScreen_FinishShowsScore(t *testing.T) {
	s, m, _ := presentingExam(t)
	s.Update(keyPress('a'))
	s.Update(keyPress('f'))

	require.Equal(t, session.StateFinished, m.State())
	assert.Equal(t, "Results", s.Title())
	assert.Empty(t, s.Status())

	view := s.View(100, 30)
	assert.Contains(t, view, "Exam finished")
	assert.Contains(t, view, "1.00 / 2")
	assert.Contains(t, view, "50%")
}

func TestExamScreen_TimeUpTitle(t *testing.T) {
	s, m, _ := presentingExam(t)
	require.True(t, m.Tick(t0.Add(15*time.Minute)))
	assert.Contains(t, s.View(100, 30), "Time is up")
}

func TestExamScreen_ReviewFilters(t *testing.T) {
	s, m, _ := presentingExam(t)
	s.Update(keyPress('a'))
	s.Update(keyPress('f'))

	s.Update(keyPress('u'))
	f, ok := m.Reviewing()
	require.True(t, ok)
	assert.Equal(t, ex.ReviewUnanswered, f)
	assert.Equal(t, "Review: Unanswered", s.Title())
	view := s.View(100, 40)
	assert.Contains(t, view, "¿En qué capa está IP?")
	assert.NotContains(t, view, "¿Qué puerto usa HTTP?")

	s.Update(keyPress('c'))
	assert.Contains(t, s.View(100, 40), "¿Qué puerto usa HTTP?")

	s.Update(keyPress('i'))
	assert.Contains(t, s.View(100, 40), "Nothing to show")

	s.Update(specialKey(tea.KeyEscape))
	_, ok = m.Reviewing()
	assert.False(t, ok)
	assert.Equal(t, session.StateFinished, m.State())
}

func TestExamScreen_RetryWithDifficulty(t *testing.T) {
	s, m, gen := presentingExam(t)
	s.Update(keyPress('f'))

	_, cmd := s.Update(keyPress('3'))
	require.NotNil(t, cmd)
	assert.Equal(t, session.StateGenerating, m.State())
	assert.Nil(t, drive(t, s, cmd))

	require.Len(t, gen.reqs, 2)
	assert.Equal(t, ex.DifficultyAdvanced, gen.reqs[1].Difficulty)
	assert.Equal(t, "Redes", gen.reqs[1].Topic)
	assert.Equal(t, session.StatePresenting, m.State())
}

func TestExamScreen_RetrySameConfig(t *testing.T) {
	s, _, gen := presentingExam(t)
	s.Update(keyPress('f'))

	_, cmd := s.Update(keyPress('r'))
	require.NotNil(t, cmd)
	drive(t, s, cmd)
	require.Len(t, gen.reqs, 2)
	assert.Equal(t, gen.reqs[0], gen.reqs[1])
}

func TestExamScreen_RestartPops(t *testing.T) {
	s, m, _ := presentingExam(t)
	s.Update(keyPress('f'))

	_, cmd := s.Update(keyPress('h'))
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopToRootMsg{}, cmd())
	assert.Equal(t, session.StateIdle, m.State())
}

func TestExamScreen_RequestFailureReturnsToStart(t *testing.T) {
	gen := &fakeGen{err: errors.New("connection refused")}
	s, m := startExam(t, gen)

	cmd := drive(t, s, s.Init())
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
	assert.Equal(t, session.StateIdle, m.State())
	assert.ErrorContains(t, m.LastError(), "connection refused")
}

func TestExamScreen_EmptyStreamReturnsToStart(t *testing.T) {
	gen := &fakeGen{body: streamBody(t, nil)}
	s, m := startExam(t, gen)

	cmd := drive(t, s, s.Init())
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
	assert.ErrorIs(t, m.LastError(), session.ErrNoQuestions)
}

func TestExamScreen_CancelGeneration(t *testing.T) {
	gen := &fakeGen{body: streamBody(t, testQuestions())}
	s, m := startExam(t, gen)

	_, cmd := s.Update(specialKey(tea.KeyEscape))
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
	assert.Equal(t, session.StateIdle, m.State())

	// The canceled run's stream no longer touches the session.
	drive(t, s, s.Init())
	assert.Equal(t, session.StateIdle, m.State())
	assert.Empty(t, m.Questions())
}

func TestExamScreen_ResumeInIdlePops(t *testing.T) {
	gen := &fakeGen{err: errors.New("boom")}
	s, m := startExam(t, gen)
	drive(t, s, s.Init())
	require.Equal(t, session.StateIdle, m.State())

	cmd := s.Resume()
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestExamScreen_LogShortcut(t *testing.T) {
	s, _, _ := presentingExam(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PushScreenMsg)
	assert.True(t, ok)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "15:00", formatClock(15*time.Minute))
	assert.Equal(t, "01:05", formatClock(65*time.Second))
	assert.Equal(t, "00:00", formatClock(0))
}

func presentingWith(t *testing.T, qs []ex.Question) (*ExamScreen, *session.Machine) {
	t.Helper()
	s, m := startExam(t, &fakeGen{body: streamBody(t, qs)})
	assert.Nil(t, drive(t, s, s.Init()))
	require.Equal(t, session.StatePresenting, m.State())
	return s, m
}

func finishHint(s *ExamScreen) string {
	for _, h := range s.KeyHints() {
		if h.Description == "Finish" {
			return h.Key
		}
	}
	return ""
}

func TestExamScreen_SixthOptionBeatsFinish(t *testing.T) {
	six := ex.Question{
		Prompt:       "¿Qué protocolo resuelve nombres?",
		Options:      []string{"ARP", "DHCP", "ICMP", "NTP", "SMTP", "DNS"},
		CorrectIndex: 5,
	}
	s, m := presentingWith(t, []ex.Question{six, six})
	assert.Equal(t, "Ctrl+F", finishHint(s))

	s.Update(keyPress('f'))
	require.Equal(t, session.StatePresenting, m.State())
	rec := m.Records()[0]
	assert.True(t, rec.Answered)
	assert.Equal(t, 5, rec.Selected)
	assert.True(t, rec.Correct)

	s.Update(tea.KeyPressMsg{Code: 'f', Mod: tea.ModCtrl})
	assert.Equal(t, session.StateFinished, m.State())
}

func TestExamScreen_FinishHintOnShortQuestions(t *testing.T) {
	s, m, _ := presentingExam(t)
	assert.Equal(t, "F", finishHint(s))
	s.Update(tea.KeyPressMsg{Code: 'f', Mod: tea.ModCtrl})
	assert.Equal(t, session.StateFinished, m.State())
}

func TestExamScreen_MalformedQuestionHasNoAnswerLabel(t *testing.T) {
	for _, idx := range []int{-1, 7} {
		bad := ex.Question{
			Prompt:       "¿Cuál es la máscara por defecto de clase C?",
			Options:      []string{"255.0.0.0", "255.255.0.0", "255.255.255.0", "0.0.0.0"},
			CorrectIndex: idx,
		}
		s, m := presentingWith(t, []ex.Question{bad, testQuestions()[0]})
		assert.Contains(t, s.View(100, 30), "malformed", "index %d", idx)

		s.Update(keyPress('c'))
		require.True(t, m.Records()[0].Answered)
		view := s.View(100, 30)
		assert.Contains(t, view, "Incorrect")
		assert.Contains(t, view, "(no valid answer)")
		assert.NotContains(t, view, "(answer:", "index %d", idx)
	}

	s, _, _ := presentingExam(t)
	s.Update(keyPress('b'))
	assert.NotContains(t, s.View(100, 30), "malformed")
	assert.Contains(t, s.View(100, 30), "(answer: A)")
}
