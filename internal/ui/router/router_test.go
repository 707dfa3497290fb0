package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScreen struct {
	name      string
	inits     int
	keys      []string
	width     int
	capturing bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}

func (s *stubScreen) View() string         { return s.name }
func (s *stubScreen) SetSize(width, _ int) { s.width = width }
func (s *stubScreen) CapturesInput() bool  { return s.capturing }

func TestRouterStack(t *testing.T) {
	menu := &stubScreen{name: "menu"}
	r := New(menu)
	r.Init()
	assert.Equal(t, 1, menu.inits)

	r.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, menu.width)

	trade := &stubScreen{name: "trade"}
	r.Push(trade)
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, 120, trade.width, "pushed screens get the current size")
	assert.Equal(t, "trade", r.View())
	assert.True(t, r.CanGoBack())

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "menu", r.View())
	assert.Equal(t, 2, menu.inits, "uncovered screen is re-initialised")

	assert.Nil(t, r.Pop(), "root screen is never popped")
	assert.Equal(t, 1, r.Depth())
}

func TestRouterEscCapturedByInput(t *testing.T) {
	r := New(&stubScreen{name: "menu"})
	trade := &stubScreen{name: "trade", capturing: true}
	r.Push(trade)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 2, r.Depth())
	require.Len(t, trade.keys, 1)
	assert.Equal(t, "esc", trade.keys[0])

	trade.capturing = false
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
}

func TestRouterReplaceAndClear(t *testing.T) {
	r := New(&stubScreen{name: "menu"})
	r.Push(&stubScreen{name: "positions"})
	r.Push(&stubScreen{name: "logs"})
	r.Replace(&stubScreen{name: "trade"})
	assert.Equal(t, 3, r.Depth())
	assert.Equal(t, "trade", r.Current().View())

	r.Clear()
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "menu", r.View())
}
