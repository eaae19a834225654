// Package exam is the screen that follows one session from generation to
// review.
package exam

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	ex "github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/router"
	"github.com/simtai/simtai/internal/screen"
	"github.com/simtai/simtai/internal/screens/logview"
	"github.com/simtai/simtai/internal/session"
	"github.com/simtai/simtai/internal/ui/components"
	"github.com/simtai/simtai/internal/ui/layout"
	"github.com/simtai/simtai/internal/ui/theme"
)

// retryDifficulties maps the Finished-view digits to a difficulty override.
var retryDifficulties = map[string]ex.Difficulty{
	"1": ex.DifficultyBasic,
	"2": ex.DifficultyIntermediate,
	"3": ex.DifficultyAdvanced,
}

// ExamScreen renders whatever state the machine is in after a Start.
type ExamScreen struct {
	ctx    context.Context
	m      *session.Machine
	run    *session.Run
	now    func() time.Time
	scroll int
	errMsg string
}

var _ screen.Screen = (*ExamScreen)(nil)
var _ screen.KeyHintProvider = (*ExamScreen)(nil)
var _ screen.StatusProvider = (*ExamScreen)(nil)
var _ screen.EscapeHandler = (*ExamScreen)(nil)
var _ screen.Resumer = (*ExamScreen)(nil)

// New creates the screen for a run returned by Machine.Start.
func New(ctx context.Context, m *session.Machine, run *session.Run) *ExamScreen {
	return &ExamScreen{ctx: ctx, m: m, run: run, now: time.Now}
}

func (s *ExamScreen) Init() tea.Cmd {
	if s.run == nil {
		return nil
	}
	return Open(s.run)
}

func (s *ExamScreen) Title() string {
	switch s.m.State() {
	case session.StateGenerating:
		return "Generating"
	case session.StatePresenting:
		return "Exam"
	case session.StateFinished:
		if f, ok := s.m.Reviewing(); ok {
			return "Review: " + f.Label()
		}
		return "Results"
	}
	return "Exam"
}

// Status is the countdown while the exam is running.
func (s *ExamScreen) Status() string {
	d, ok := s.m.Remaining(s.now())
	if !ok {
		return ""
	}
	style := theme.Timer
	if d < lowTime {
		style = theme.TimerLow
	}
	return style.Render("⏱ " + formatClock(d))
}

// HandlesEscape keeps Esc on this screen: it cancels generation and leaves
// a review.
func (s *ExamScreen) HandlesEscape() bool {
	return true
}

// Resume leaves the screen once the session has gone back to Idle, for
// example when a generation failed while the log was open.
func (s *ExamScreen) Resume() tea.Cmd {
	if s.m.State() == session.StateIdle {
		return pop
	}
	return nil
}

func (s *ExamScreen) KeyHints() []layout.KeyHint {
	switch s.m.State() {
	case session.StateGenerating:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel"},
			{Key: "Ctrl+L", Description: "Log"},
		}
	case session.StatePresenting:
		return []layout.KeyHint{
			{Key: "A-D", Description: "Answer"},
			{Key: "←→", Description: "Navigate"},
			{Key: s.finishKey(), Description: "Finish"},
			{Key: "Ctrl+L", Description: "Log"},
		}
	case session.StateFinished:
		if _, ok := s.m.Reviewing(); ok {
			return []layout.KeyHint{
				{Key: "↑↓", Description: "Scroll"},
				{Key: "C/I/U", Description: "Filter"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "1/2/3", Description: "Retry at level"},
			{Key: "C/I/U", Description: "Review"},
			{Key: "H", Description: "Home"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

// finishKey is the hint for finishing, which is Ctrl+F when "f" is an
// option letter.
func (s *ExamScreen) finishKey() string {
	if c, ok := s.m.Current(); ok {
		if _, isOption := components.OptionIndex("f", len(c.Question.Options)); isOption {
			return "Ctrl+F"
		}
	}
	return "F"
}

func (s *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case RunEndedMsg:
		if msg.Run == s.run && s.m.State() == session.StateIdle {
			return s, pop
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ExamScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if len(key) == 1 {
		key = strings.ToLower(key)
	}
	if key == "ctrl+l" {
		return s, push(logview.New(s.m.Log()))
	}

	switch s.m.State() {
	case session.StateGenerating:
		if key == "esc" {
			_ = s.m.Cancel()
			return s, pop
		}

	case session.StatePresenting:
		return s.handlePresentingKey(key)

	case session.StateFinished:
		if _, ok := s.m.Reviewing(); ok {
			return s.handleReviewKey(key)
		}
		return s.handleFinishedKey(key)

	default:
		if key == "esc" || key == "enter" {
			return s, pop
		}
	}
	return s, nil
}

func (s *ExamScreen) handlePresentingKey(key string) (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	switch key {
	case "left":
		_ = s.m.Prev()
	case "right":
		_ = s.m.Next()
	case "home":
		_ = s.m.Goto(0)
	case "end":
		if c, ok := s.m.Current(); ok {
			_ = s.m.Goto(c.Total - 1)
		}
	case "ctrl+f":
		_ = s.m.Finish()
	default:
		c, ok := s.m.Current()
		if !ok {
			return s, nil
		}
		// Option letters win, so "f" finishes only on questions with
		// fewer than six options.
		if i, ok := components.OptionIndex(key, len(c.Question.Options)); ok {
			if err := s.m.Select(i); err != nil {
				s.errMsg = err.Error()
			}
			return s, nil
		}
		if key == "f" {
			_ = s.m.Finish()
		}
	}
	return s, nil
}

func (s *ExamScreen) handleFinishedKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "r":
		return s.retry("")
	case "1", "2", "3":
		return s.retry(retryDifficulties[key])
	case "h":
		s.m.Restart()
		return s, popToRoot
	case "c", "i", "u":
		s.scroll = 0
		_ = s.m.EnterReview(filterFor(key))
	}
	return s, nil
}

func (s *ExamScreen) handleReviewKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "esc":
		s.scroll = 0
		_ = s.m.ExitReview()
	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
	case "down", "j":
		s.scroll++
	case "c", "i", "u":
		s.scroll = 0
		_ = s.m.EnterReview(filterFor(key))
	}
	return s, nil
}

func (s *ExamScreen) retry(d ex.Difficulty) (screen.Screen, tea.Cmd) {
	run, err := s.m.Retry(s.ctx, d)
	if err != nil {
		if errors.Is(err, session.ErrNoConfig) {
			return s, pop
		}
		s.errMsg = err.Error()
		return s, nil
	}
	s.run = run
	s.scroll = 0
	s.errMsg = ""
	return s, Open(run)
}

func filterFor(key string) ex.ReviewFilter {
	switch key {
	case "c":
		return ex.ReviewCorrect
	case "i":
		return ex.ReviewIncorrect
	}
	return ex.ReviewUnanswered
}

func pop() tea.Msg {
	return router.PopScreenMsg{}
}

func popToRoot() tea.Msg {
	return router.PopToRootMsg{}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}
