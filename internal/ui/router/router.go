package router

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// InputCapturer is implemented by screens that own a text input or a modal.
// While CapturesInput is true the router hands esc to the screen instead of
// popping it.
type InputCapturer interface {
	CapturesInput() bool
}

// Router manages navigation between screens using a stack-based approach
type Router struct {
	stack  []Screen
	width  int
	height int
}

// New creates a new router with the initial screen
func New(initialScreen Screen) *Router {
	return &Router{
		stack: []Screen{initialScreen},
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && len(r.stack) > 1 && !r.capturing() {
			return r, r.Back()
		}
	}

	if len(r.stack) == 0 {
		return r, nil
	}
	currentScreen := r.stack[len(r.stack)-1]
	updatedScreen, cmd := currentScreen.Update(msg)
	r.stack[len(r.stack)-1] = updatedScreen
	return r, cmd
}

func (r *Router) capturing() bool {
	c, ok := r.Current().(InputCapturer)
	return ok && c.CapturesInput()
}

// View renders the current screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height

	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:len(r.stack)-1]

	currentScreen := r.stack[len(r.stack)-1]
	currentScreen.SetSize(r.width, r.height)
	return currentScreen.Init()
}

// Replace replaces the current screen with a new one
func (r *Router) Replace(screen Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(screen)
	}

	screen.SetSize(r.width, r.height)
	r.stack[len(r.stack)-1] = screen
	return screen.Init()
}

// Back navigates back to the previous screen
func (r *Router) Back() tea.Cmd {
	return r.Pop()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}

// Clear removes all screens except the first one
func (r *Router) Clear() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:1]
	root := r.stack[0]
	root.SetSize(r.width, r.height)
	return root.Init()
}

// CanGoBack returns true if there are screens to go back to
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}
