package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ help.KeyMap = (*KeyMap)(nil)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Contains(t, km.Quit.Keys(), "q")
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.SyncNow.Keys(), "s")
	assert.Contains(t, km.Refresh.Keys(), "r")
	assert.Contains(t, km.Help.Keys(), "?")
}

func TestKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	sync := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}
	quit := tea.KeyMsg{Type: tea.KeyCtrlC}

	assert.True(t, key.Matches(sync, km.SyncNow))
	assert.False(t, key.Matches(sync, km.Quit))
	assert.True(t, key.Matches(quit, km.Quit))
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	require.Len(t, bindings, 3)
	assert.Equal(t, "sync now", bindings[0].Help().Desc)
	assert.Equal(t, "quit", bindings[2].Help().Desc)
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	require.Len(t, groups, 2)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	assert.Equal(t, 4, total)
}
