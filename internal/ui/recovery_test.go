package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// mockModel is a test UI model
type mockModel struct {
	panicOnInit   bool
	panicOnUpdate bool
	panicOnView   bool
	updates       int
}

type bumpMsg struct{}

func (m mockModel) Init() tea.Cmd {
	if m.panicOnInit {
		panic("init panic test")
	}
	return nil
}

func (m mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.panicOnUpdate {
		panic("update panic test")
	}
	m.updates++
	return m, func() tea.Msg { return bumpMsg{} }
}

func (m mockModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func TestSafeUIWrapperKeepsUpdatedModel(t *testing.T) {
	wrapper := NewSafeUIWrapper(mockModel{}, zap.NewNop())

	if cmd := wrapper.Init(); cmd != nil {
		t.Error("Expected nil command from Init")
	}

	next, cmd := wrapper.Update(bumpMsg{})
	if next != wrapper {
		t.Error("Expected Update to return the wrapper")
	}
	if cmd == nil {
		t.Error("Expected non-nil command from Update")
	}
	wrapper.Update(bumpMsg{})

	if got := wrapper.Model().(mockModel).updates; got != 2 {
		t.Errorf("Expected 2 updates recorded, got %d", got)
	}
	if view := wrapper.View(); view != "Test UI" {
		t.Errorf("Unexpected view: %s", view)
	}
}

func TestSafeUIWrapperRecoversInit(t *testing.T) {
	wrapper := NewSafeUIWrapper(mockModel{panicOnInit: true}, zap.NewNop())
	if cmd := wrapper.Init(); cmd != nil {
		t.Error("Expected nil command after Init panic")
	}
}

func TestSafeUIWrapperRecoversUpdate(t *testing.T) {
	wrapper := NewSafeUIWrapper(mockModel{panicOnUpdate: true}, zap.NewNop())

	next, cmd := wrapper.Update(bumpMsg{})
	if next != wrapper {
		t.Error("Expected wrapper after Update panic")
	}
	if cmd != nil {
		t.Error("Expected nil command after Update panic")
	}
}

func TestSafeUIWrapperRecoversView(t *testing.T) {
	wrapper := NewSafeUIWrapper(mockModel{panicOnView: true}, zap.NewNop())

	if view := wrapper.View(); view != "UI Error: View crashed. Press Ctrl+C to exit." {
		t.Errorf("Expected error message, got: %s", view)
	}
}
