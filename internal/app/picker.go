package app

import (
	"context"
	"errors"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/simtai/simtai/internal/screens/folderpick"
)

// ErrNoTerminal is returned by Picker when no program is running.
var ErrNoTerminal = errors.New("folder picker needs the interactive terminal")

// Picker implements session.FolderPicker by opening the folder screen in
// the running program and waiting for the user's choice.
type Picker struct {
	mu    sync.Mutex
	send  func(tea.Msg)
	start string
}

// NewPicker returns a picker that opens at dir.
func NewPicker(dir string) *Picker {
	return &Picker{start: dir}
}

func (p *Picker) attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

// PickFolder blocks until the user picks a folder or backs out. The last
// picked folder is where the next pick opens.
func (p *Picker) PickFolder(ctx context.Context) (string, bool, error) {
	p.mu.Lock()
	send, dir := p.send, p.start
	p.mu.Unlock()
	if send == nil {
		return "", false, ErrNoTerminal
	}

	reply := make(chan folderpick.Result, 1)
	send(folderpick.RequestMsg{Start: dir, Reply: reply})

	select {
	case r := <-reply:
		if r.OK {
			p.mu.Lock()
			p.start = r.Path
			p.mu.Unlock()
		}
		return r.Path, r.OK, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}
