package start

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/ingest"
	"github.com/simtai/simtai/internal/router"
	examscreen "github.com/simtai/simtai/internal/screens/exam"
	"github.com/simtai/simtai/internal/session"
)

type nopGen struct{}

func (nopGen) Generate(context.Context, ex.GenerationRequest) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type staticPicker struct{ path string }

func (p staticPicker) PickFolder(context.Context) (string, bool, error) {
	return p.path, true, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *StartScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func newMachine(opts session.Options) *session.Machine {
	if opts.Generator == nil {
		opts.Generator = nopGen{}
	}
	return session.New(opts)
}

func TestStartScreen_Defaults(t *testing.T) {
	s := New(context.Background(), newMachine(session.Options{}))
	cfg := s.Config()

	assert.Equal(t, ex.DefaultNumQuestions, cfg.NumQuestions)
	assert.Equal(t, ex.DefaultMinutes, cfg.Minutes)
	assert.Equal(t, ex.DefaultDifficulty, cfg.Difficulty)
	assert.Equal(t, ex.SourceNormal, cfg.Mode)
	assert.Empty(t, cfg.Topic)
	assert.Equal(t, "New exam", s.Title())
}

func TestStartScreen_CycleChoices(t *testing.T) {
	s := New(context.Background(), newMachine(session.Options{}))

	s.Update(specialKey(tea.KeyRight))
	assert.Equal(t, 20, s.Config().NumQuestions)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyLeft))
	assert.Equal(t, 5, s.Config().Minutes)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	assert.Equal(t, ex.DifficultyAdvanced, s.Config().Difficulty)
	s.Update(specialKey(tea.KeyRight))
	assert.Equal(t, ex.DifficultyBasic, s.Config().Difficulty, "choices wrap around")
}

func TestStartScreen_TypeTopic(t *testing.T) {
	s := New(context.Background(), newMachine(session.Options{}))
	for range 3 {
		s.Update(specialKey(tea.KeyDown))
	}
	require.Equal(t, fieldTopic, s.focus)

	typeText(s, "Redes")
	assert.Equal(t, "Redes", s.Config().Topic)
}

func TestStartScreen_FolderFieldsSkippedWithoutPicker(t *testing.T) {
	s := New(context.Background(), newMachine(session.Options{}))
	for range 5 {
		s.Update(specialKey(tea.KeyDown))
	}
	assert.Equal(t, fieldStart, s.focus)
	assert.Contains(t, s.View(100, 30), "folder picking unavailable")
}

func TestStartScreen_SubmitStartsGeneration(t *testing.T) {
	m := newMachine(session.Options{})
	s := New(context.Background(), m)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, session.StateGenerating, m.State())

	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &examscreen.ExamScreen{}, msg.Screen)
}

func TestStartScreen_InvalidFileShowsError(t *testing.T) {
	m := newMachine(session.Options{})
	s := New(context.Background(), m)
	s.focus = fieldFile
	s.file.Focus()
	typeText(s, "notes.docx")

	assert.Contains(t, s.View(100, 30), "only PDF, TXT or MD")

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, session.StateIdle, m.State())
	assert.Contains(t, s.View(100, 30), "unsupported file")

	s.Update(specialKey(tea.KeyEscape))
	assert.Empty(t, s.errorText())
	assert.NoError(t, m.LastError())
}

func TestStartScreen_ShowsSavedContext(t *testing.T) {
	store := ingest.NewMemoryStore()
	require.NoError(t, store.SetContext(context.Background(), "Tema 1: redes"))
	s := New(context.Background(), newMachine(session.Options{Store: store}))

	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.Contains(t, s.View(100, 30), "13 characters")
}

func TestStartScreen_NoSavedContext(t *testing.T) {
	s := New(context.Background(), newMachine(session.Options{}))
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "Saved context: none")
}

func TestStartScreen_RandomFolderMode(t *testing.T) {
	m := newMachine(session.Options{Picker: staticPicker{path: "/estudio"}})
	s := New(context.Background(), m)

	s.focus = fieldMode
	s.Update(specialKey(tea.KeyRight))
	require.Equal(t, ex.SourceRandomFolder, s.mode)

	s.Update(specialKey(tea.KeyDown))
	require.Equal(t, fieldStrategy, s.focus)
	s.Update(specialKey(tea.KeyRight))

	s.Update(specialKey(tea.KeyDown))
	require.Equal(t, fieldFolder, s.focus)
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	s.Update(cmd())

	cfg := s.Config()
	assert.Equal(t, "/estudio", cfg.FolderPath)
	assert.Equal(t, ex.FolderSimulacro, cfg.Strategy)
	assert.Equal(t, "simulacro_3", cfg.Request("").Mode)
}

func TestStartScreen_PrefillsFromLastConfig(t *testing.T) {
	m := newMachine(session.Options{})
	cfg := ex.DefaultSessionConfig()
	cfg.NumQuestions = 50
	cfg.Topic = "Linux"
	_, err := m.Start(context.Background(), cfg)
	require.NoError(t, err)
	m.Restart()

	s := New(context.Background(), m)
	assert.Equal(t, 50, s.Config().NumQuestions)
	assert.Equal(t, "Linux", s.Config().Topic)
}

func TestStartScreen_LogShortcut(t *testing.T) {
	s := New(context.Background(), newMachine(session.Options{}))
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PushScreenMsg)
	assert.True(t, ok)
}
