package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickerItems() []PickerItem {
	return []PickerItem{
		{Label: "alice", SubLabel: "0xaaaa", Value: "0xA"},
		{Label: "bob", SubLabel: "0xbbbb", Value: "0xB", Current: true},
		{Label: "carol", Value: "0xC"},
	}
}

func press(t *testing.T, m pickerModel, keys ...tea.KeyMsg) (pickerModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(pickerModel)
	}
	return m, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPickerStartsOnCurrent(t *testing.T) {
	m := newPickerModel("Select account", pickerItems())
	assert.Equal(t, 1, m.cursor)

	m = newPickerModel("Select account", []PickerItem{{Label: "x"}, {Label: "y"}})
	assert.Equal(t, 0, m.cursor)
}

func TestPickerNavigationClamps(t *testing.T) {
	m := newPickerModel("t", pickerItems())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	m, _ = press(t, m, runeKey('j'), runeKey('j'), runeKey('j'))
	assert.Equal(t, 2, m.cursor)

	m, _ = press(t, m, runeKey('k'))
	assert.Equal(t, 1, m.cursor)
}

func TestPickerEnterSelects(t *testing.T) {
	m := newPickerModel("t", pickerItems())
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.selected)
	assert.Equal(t, "0xC", m.selected.Value)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPickerCancel(t *testing.T) {
	m := newPickerModel("t", pickerItems())
	m, cmd := press(t, m, runeKey('q'))

	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestPickerViewMarksCurrent(t *testing.T) {
	view := newPickerModel("Select account", pickerItems()).View()
	assert.Contains(t, view, "Select account")
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "0xbbbb")
	assert.Contains(t, view, "●")
	assert.Contains(t, view, "▸")
}

func TestPickItemWithoutItems(t *testing.T) {
	_, ok, err := PickItem("empty", nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNothingToPick)
}
