package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/simtai/simtai/internal/router"
	"github.com/simtai/simtai/internal/screen"
	"github.com/simtai/simtai/internal/screens/exam"
	"github.com/simtai/simtai/internal/screens/folderpick"
	"github.com/simtai/simtai/internal/screens/start"
	"github.com/simtai/simtai/internal/session"
	"github.com/simtai/simtai/internal/ui/layout"
)

// tickMsg drives the exam countdown.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// AppModel is the root Bubble Tea model. It owns the session machine so
// that streams and the countdown keep running under any screen.
type AppModel struct {
	ctx     context.Context
	machine *session.Machine
	router  *router.Router
	width   int
	height  int
}

// newAppModel creates a new AppModel with the start screen.
func newAppModel(ctx context.Context, m *session.Machine) AppModel {
	return AppModel{
		ctx:     ctx,
		machine: m,
		router:  router.New(start.New(ctx, m)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), tickCmd())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, ok := exam.Pump(msg); ok {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.machine.Tick(time.Time(msg))
		return m, tickCmd()

	case folderpick.RequestMsg:
		dir := msg.Start
		if dir == "" {
			dir = "."
		}
		scr := folderpick.New(dir, msg.Reply, m.width, layout.ContentHeight(m.height))
		return m, m.router.Push(scr)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.machine.Restart()
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render lays out the frame around the active screen.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program. picker, if not nil, is attached to the
// program so the machine can open the folder screen.
func Run(ctx context.Context, m *session.Machine, picker *Picker) error {
	p := tea.NewProgram(newAppModel(ctx, m), tea.WithContext(ctx))
	if picker != nil {
		picker.attach(p.Send)
		defer picker.attach(nil)
	}
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
