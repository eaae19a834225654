package exam

import (
	tea "charm.land/bubbletea/v2"

	"github.com/simtai/simtai/internal/session"
	"github.com/simtai/simtai/internal/sse"
)

// streamOpenedMsg is sent once the service has accepted the request.
type streamOpenedMsg struct {
	run *session.Run
	ch  <-chan sse.Item
}

// streamItemMsg carries one event or read error from the stream.
type streamItemMsg struct {
	run  *session.Run
	ch   <-chan sse.Item
	item sse.Item
}

// streamClosedMsg is sent when the stream channel closes.
type streamClosedMsg struct {
	run *session.Run
}

// RunEndedMsg is sent when a generation run is over, whichever way it ended.
type RunEndedMsg struct {
	Run *session.Run
}

// Open returns the command that sends the run's request.
func Open(run *session.Run) tea.Cmd {
	return func() tea.Msg {
		ch, err := run.Open()
		if err != nil {
			return RunEndedMsg{Run: run}
		}
		return streamOpenedMsg{run: run, ch: ch}
	}
}

func read(run *session.Run, ch <-chan sse.Item) tea.Cmd {
	return func() tea.Msg {
		it, ok := <-ch
		if !ok {
			return streamClosedMsg{run: run}
		}
		return streamItemMsg{run: run, ch: ch, item: it}
	}
}

func ended(run *session.Run) tea.Cmd {
	return func() tea.Msg { return RunEndedMsg{Run: run} }
}

// Pump advances generation streams. The app calls it for every message so
// a stream keeps flowing whichever screen is on top. It reports whether msg
// belonged to a stream.
func Pump(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case streamOpenedMsg:
		return read(msg.run, msg.ch), true
	case streamItemMsg:
		if msg.run.Deliver(msg.item) {
			msg.run.End()
			return ended(msg.run), true
		}
		return read(msg.run, msg.ch), true
	case streamClosedMsg:
		msg.run.End()
		return ended(msg.run), true
	}
	return nil, false
}
