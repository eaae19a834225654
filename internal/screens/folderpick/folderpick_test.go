package folderpick

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simtai/simtai/internal/router"
)

func TestFolderScreen_SelectCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	reply := make(chan Result, 1)
	s := New(dir, reply, 80, 24)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
	assert.Equal(t, Result{Path: dir, OK: true}, <-reply)
}

func TestFolderScreen_EscapeCancels(t *testing.T) {
	reply := make(chan Result, 1)
	s := New(t.TempDir(), reply, 80, 24)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, Result{}, <-reply)
	assert.True(t, s.HandlesEscape())
}

func TestFolderScreen_RepliesOnce(t *testing.T) {
	reply := make(chan Result, 1)
	s := New(t.TempDir(), reply, 80, 24)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	// A second key must not block on the full channel.
	s.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	assert.Len(t, reply, 1)
}

func TestFolderScreen_InitSizesPicker(t *testing.T) {
	s := New(t.TempDir(), make(chan Result, 1), 100, 40)
	assert.NotNil(t, s.Init())
	assert.Equal(t, "Choose a folder", s.Title())
}
