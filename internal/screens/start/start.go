// Package start is the exam configuration screen.
package start

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	ex "github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/router"
	"github.com/simtai/simtai/internal/screen"
	"github.com/simtai/simtai/internal/screens/exam"
	"github.com/simtai/simtai/internal/screens/logview"
	"github.com/simtai/simtai/internal/session"
	"github.com/simtai/simtai/internal/ui/components"
	"github.com/simtai/simtai/internal/ui/layout"
)

type field int

const (
	fieldCount field = iota
	fieldMinutes
	fieldDifficulty
	fieldTopic
	fieldFile
	fieldMode
	fieldStrategy
	fieldFolder
	fieldStart
	numFields
)

// savedContextMsg reports the persisted context slot.
type savedContextMsg struct {
	chars int
	ok    bool
	err   error
}

// folderPickedMsg is the result of a folder pick.
type folderPickedMsg struct {
	path string
	ok   bool
	err  error
}

// StartScreen collects a SessionConfig and starts the machine.
type StartScreen struct {
	ctx context.Context
	m   *session.Machine

	focus      field
	count      int
	minutes    int
	difficulty int
	topic      components.TextInput
	file       components.TextInput
	mode       ex.SourceMode
	strategy   ex.FolderStrategy
	folder     string

	saved  savedContextMsg
	errMsg string
}

var _ screen.Screen = (*StartScreen)(nil)
var _ screen.KeyHintProvider = (*StartScreen)(nil)
var _ screen.EscapeHandler = (*StartScreen)(nil)
var _ screen.Resumer = (*StartScreen)(nil)

// New creates the start screen, prefilled from the machine's last
// configuration when there is one.
func New(ctx context.Context, m *session.Machine) *StartScreen {
	cfg, ok := m.Config()
	if !ok {
		cfg = ex.DefaultSessionConfig()
	}
	s := &StartScreen{
		ctx:        ctx,
		m:          m,
		count:      indexOr(ex.QuestionCounts, cfg.NumQuestions, ex.DefaultNumQuestions),
		minutes:    indexOr(ex.MinuteChoices, cfg.Minutes, ex.DefaultMinutes),
		difficulty: indexOr(ex.Difficulties, cfg.Difficulty, ex.DefaultDifficulty),
		topic:      components.NewTextInput("Topic ", "optional, e.g. Redes TCP/IP", 200),
		file:       components.NewTextInput("File  ", "optional .pdf, .txt or .md", 1024),
		mode:       cfg.Mode,
		strategy:   cfg.Strategy,
		folder:     cfg.FolderPath,
	}
	s.topic.SetValue(cfg.Topic)
	s.file.SetValue(cfg.FilePath)
	if s.strategy == "" {
		s.strategy = ex.FolderSingle
	}
	if !m.CanPickFolder() {
		s.mode = ex.SourceNormal
	}
	return s
}

func indexOr[T comparable](list []T, v, fallback T) int {
	if i := slices.Index(list, v); i >= 0 {
		return i
	}
	return max(0, slices.Index(list, fallback))
}

func (s *StartScreen) Init() tea.Cmd {
	return s.loadSavedContext()
}

// Resume refreshes the saved-context indicator, which a finished
// generation may have replaced.
func (s *StartScreen) Resume() tea.Cmd {
	s.errMsg = ""
	return s.loadSavedContext()
}

func (s *StartScreen) loadSavedContext() tea.Cmd {
	ctx, m := s.ctx, s.m
	return func() tea.Msg {
		content, ok, err := m.SavedContext(ctx)
		return savedContextMsg{chars: len([]rune(content)), ok: ok, err: err}
	}
}

func (s *StartScreen) Title() string {
	return "New exam"
}

func (s *StartScreen) HandlesEscape() bool {
	return true
}

func (s *StartScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Generate"},
		{Key: "Ctrl+L", Description: "Log"},
	}
	if s.errorText() != "" {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Dismiss error"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Config is the configuration the form currently describes.
func (s *StartScreen) Config() ex.SessionConfig {
	cfg := ex.SessionConfig{
		NumQuestions: ex.QuestionCounts[s.count],
		Minutes:      ex.MinuteChoices[s.minutes],
		Difficulty:   ex.Difficulties[s.difficulty],
		Topic:        strings.TrimSpace(s.topic.Value()),
		FilePath:     strings.TrimSpace(s.file.Value()),
		Mode:         s.mode,
		Strategy:     s.strategy,
	}
	if s.mode == ex.SourceRandomFolder {
		cfg.FolderPath = s.folder
	}
	return cfg
}

func (s *StartScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedContextMsg:
		s.saved = msg
		return s, nil

	case folderPickedMsg:
		switch {
		case msg.err != nil:
			s.errMsg = msg.err.Error()
		case msg.ok:
			s.folder = msg.path
			s.errMsg = ""
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s.forwardToInput(msg)
}

func (s *StartScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		return s, push(logview.New(s.m.Log()))
	case "esc":
		s.errMsg = ""
		s.m.ClearError()
		return s, nil
	case "up", "shift+tab":
		return s, s.moveFocus(-1)
	case "down", "tab":
		return s, s.moveFocus(1)
	case "enter":
		if s.focus == fieldFolder {
			return s, s.pickFolder()
		}
		return s, s.submit()
	case "left":
		if s.cycle(-1) {
			return s, nil
		}
	case "right":
		if s.cycle(1) {
			return s, nil
		}
	}
	return s.forwardToInput(msg)
}

func (s *StartScreen) forwardToInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.focus {
	case fieldTopic:
		s.topic, cmd = s.topic.Update(msg)
	case fieldFile:
		s.file, cmd = s.file.Update(msg)
	}
	return s, cmd
}

// enabled reports whether a field can take focus in the current mode.
func (s *StartScreen) enabled(f field) bool {
	switch f {
	case fieldMode:
		return s.m.CanPickFolder()
	case fieldStrategy, fieldFolder:
		return s.mode == ex.SourceRandomFolder
	}
	return true
}

func (s *StartScreen) moveFocus(delta int) tea.Cmd {
	next := s.focus
	for {
		next = (next + field(delta) + numFields) % numFields
		if s.enabled(next) {
			break
		}
	}
	s.focus = next

	s.topic.Blur()
	s.file.Blur()
	switch s.focus {
	case fieldTopic:
		return s.topic.Focus()
	case fieldFile:
		return s.file.Focus()
	}
	return nil
}

// cycle changes the value of a choice field. It returns false when the
// focused field is not a choice.
func (s *StartScreen) cycle(delta int) bool {
	wrap := func(i, n int) int { return (i + delta + n) % n }
	switch s.focus {
	case fieldCount:
		s.count = wrap(s.count, len(ex.QuestionCounts))
	case fieldMinutes:
		s.minutes = wrap(s.minutes, len(ex.MinuteChoices))
	case fieldDifficulty:
		s.difficulty = wrap(s.difficulty, len(ex.Difficulties))
	case fieldMode:
		if s.mode == ex.SourceRandomFolder {
			s.mode = ex.SourceNormal
		} else {
			s.mode = ex.SourceRandomFolder
		}
	case fieldStrategy:
		if s.strategy == ex.FolderSimulacro {
			s.strategy = ex.FolderSingle
		} else {
			s.strategy = ex.FolderSimulacro
		}
	default:
		return false
	}
	return true
}

func (s *StartScreen) pickFolder() tea.Cmd {
	if !s.m.CanPickFolder() {
		s.errMsg = session.ErrPickerUnavailable.Error()
		return nil
	}
	ctx, m := s.ctx, s.m
	return func() tea.Msg {
		path, ok, err := m.PickFolder(ctx)
		return folderPickedMsg{path: path, ok: ok, err: err}
	}
}

func (s *StartScreen) submit() tea.Cmd {
	run, err := s.m.Start(s.ctx, s.Config())
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	return push(exam.New(s.ctx, s.m, run))
}

// errorText is the error shown under the form: the local one first, then
// the machine's last error.
func (s *StartScreen) errorText() string {
	if s.errMsg != "" {
		return s.errMsg
	}
	if err := s.m.LastError(); err != nil {
		return err.Error()
	}
	return ""
}

func push(scr screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: scr} }
}

func savedLabel(m savedContextMsg) string {
	switch {
	case m.err != nil:
		return fmt.Sprintf("unavailable (%v)", m.err)
	case m.ok:
		return fmt.Sprintf("%d characters, used when no topic or file is given", m.chars)
	}
	return "none"
}
