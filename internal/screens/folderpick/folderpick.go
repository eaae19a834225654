// Package folderpick is a directory browser used to choose a study folder.
package folderpick

import (
	"charm.land/bubbles/v2/filepicker"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/simtai/simtai/internal/router"
	"github.com/simtai/simtai/internal/screen"
	"github.com/simtai/simtai/internal/ui/layout"
	"github.com/simtai/simtai/internal/ui/theme"
)

// Result is the outcome of one pick. OK is false when the user backed out.
type Result struct {
	Path string
	OK   bool
}

// RequestMsg asks the app to open the picker. Exactly one Result is sent
// on Reply.
type RequestMsg struct {
	Start string
	Reply chan<- Result
}

// FolderScreen wraps a directory-only filepicker.
type FolderScreen struct {
	fp     filepicker.Model
	reply  chan<- Result
	width  int
	height int
	done   bool
}

var _ screen.Screen = (*FolderScreen)(nil)
var _ screen.KeyHintProvider = (*FolderScreen)(nil)
var _ screen.EscapeHandler = (*FolderScreen)(nil)

// New opens the picker at start. reply must have room for one Result.
func New(start string, reply chan<- Result, width, height int) *FolderScreen {
	fp := filepicker.New()
	fp.CurrentDirectory = start
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.AutoHeight = true
	return &FolderScreen{fp: fp, reply: reply, width: width, height: height}
}

func (s *FolderScreen) Init() tea.Cmd {
	// The filepicker sizes itself from a window size message, which it
	// would otherwise only get on the next resize.
	w, h := s.width, s.height
	return tea.Batch(s.fp.Init(), func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	})
}

func (s *FolderScreen) Title() string {
	return "Choose a folder"
}

func (s *FolderScreen) HandlesEscape() bool {
	return true
}

func (s *FolderScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "→/Enter", Description: "Open"},
		{Key: "S", Description: "Use this folder"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *FolderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "esc":
			return s, s.finish(Result{})
		case "s", "S":
			return s, s.finish(Result{Path: s.fp.CurrentDirectory, OK: true})
		}
	}

	var cmd tea.Cmd
	s.fp, cmd = s.fp.Update(msg)
	if ok, path := s.fp.DidSelectFile(msg); ok {
		return s, s.finish(Result{Path: path, OK: true})
	}
	return s, cmd
}

func (s *FolderScreen) finish(r Result) tea.Cmd {
	if !s.done {
		s.done = true
		s.reply <- r
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *FolderScreen) View(width, height int) string {
	dir := theme.Dim.Render(s.fp.CurrentDirectory)
	return lipgloss.NewStyle().Padding(1, 2).Render(dir + "\n\n" + s.fp.View())
}
