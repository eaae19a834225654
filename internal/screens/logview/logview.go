// Package logview shows the diagnostic log of the current session.
package logview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/simtai/simtai/internal/ingest"
	"github.com/simtai/simtai/internal/screen"
	"github.com/simtai/simtai/internal/ui/layout"
	"github.com/simtai/simtai/internal/ui/theme"
)

// LogScreen lists log entries, newest at the bottom.
type LogScreen struct {
	log *ingest.Log

	// offset is how many lines the view is scrolled up from the bottom.
	offset int
}

var _ screen.Screen = (*LogScreen)(nil)
var _ screen.KeyHintProvider = (*LogScreen)(nil)

// New creates a log screen over log.
func New(log *ingest.Log) *LogScreen {
	return &LogScreen{log: log}
}

func (s *LogScreen) Init() tea.Cmd {
	return nil
}

func (s *LogScreen) Title() string {
	return "Log"
}

func (s *LogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "X", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.offset < s.log.Len()-1 {
			s.offset++
		}
	case "down", "j":
		if s.offset > 0 {
			s.offset--
		}
	case "end", "G":
		s.offset = 0
	case "x", "X":
		s.log.Clear()
		s.offset = 0
	}
	return s, nil
}

func (s *LogScreen) View(width, height int) string {
	entries := s.log.Entries()
	var b strings.Builder

	head := fmt.Sprintf("%d entries", len(entries))
	if d := s.log.Dropped(); d > 0 {
		head += fmt.Sprintf(", %d older dropped", d)
	}
	b.WriteString(theme.Dim.Render(head))
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(theme.Hint.Render("The log is empty."))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	visible := max(1, height-6)
	s.offset = min(s.offset, max(0, len(entries)-visible))
	end := len(entries) - s.offset
	start := max(0, end-visible)
	for _, e := range entries[start:end] {
		b.WriteString(styleFor(e.Message).Render(e.String()))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Padding(1, 2).Width(width).Render(b.String())
}

func styleFor(msg string) lipgloss.Style {
	switch {
	case strings.Contains(msg, "[ERROR]"):
		return theme.Incorrect
	case strings.Contains(msg, "[DESCARTADA]"), strings.Contains(msg, "[WARN]"):
		return theme.Warning
	}
	return theme.Body
}
