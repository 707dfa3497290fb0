package screen

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/component"
	"github.com/rovshanmuradov/okx-trader/internal/ui/router"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// PositionsScreen lists open positions as reported by the poller and closes
// them on confirmation.
type PositionsScreen struct {
	chrome

	table     *component.Table
	focusPane *component.FocusPane
	positions []okx.Position

	onConfirm bot.TradingCommand
}

// NewPositionsScreen creates the positions screen.
func NewPositionsScreen(session *ui.Session) *PositionsScreen {
	return &PositionsScreen{
		chrome:    newChrome(session, ui.RoutePositions),
		table:     component.NewPositionsTable(),
		focusPane: component.NewFocusPane(),
	}
}

// Init asks the poller for fresh data when the screen opens.
func (s *PositionsScreen) Init() tea.Cmd {
	s.session.Refresh()
	s.reload()
	return nil
}

func (s *PositionsScreen) CapturesInput() bool {
	return s.dialog.IsOpen()
}

// Update handles screen updates
func (s *PositionsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SnapshotMsg:
		s.reload()

	case ui.OutcomeMsg:
		s.alertIfRejected(msg)
		if msg.Command == "close_position" || msg.Command == "close_all" {
			s.session.Refresh()
		}

	case tea.KeyMsg:
		if s.dialog.IsOpen() {
			return s, s.answer(msg.String())
		}
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, ui.Quit
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
			s.syncFocus()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
			s.syncFocus()
		case key.Matches(msg, s.keyMap.Refresh):
			s.session.Refresh()
		case key.Matches(msg, s.keyMap.Close):
			if pos, ok := s.Selected(); ok {
				s.onConfirm = bot.ClosePositionCommand{InstID: pos.InstID}
				s.dialog.Confirm("Close position",
					fmt.Sprintf("Close %s %s %s at market?", pos.InstID, trader.DirectionLabel(pos), pos.Pos.Abs().String()))
			}
		case key.Matches(msg, s.keyMap.CloseAll):
			if len(s.positions) > 0 {
				s.onConfirm = bot.CloseAllCommand{}
				s.dialog.Confirm(fmt.Sprintf("Close all %d positions", len(s.positions)), ui.CloseAllWarning)
			}
		}
	}
	return s, nil
}

func (s *PositionsScreen) answer(key string) tea.Cmd {
	switch s.dialog.HandleKey(key) {
	case component.DialogAccepted:
		cmd := s.onConfirm
		s.onConfirm = nil
		if cmd != nil {
			return s.session.Send(cmd)
		}
	case component.DialogDismissed:
		s.onConfirm = nil
	}
	return nil
}

func (s *PositionsScreen) reload() {
	s.positions = s.session.Store().Positions()
	component.ShowPositions(s.table, s.positions)
	s.syncFocus()
}

func (s *PositionsScreen) syncFocus() {
	if pos, ok := s.Selected(); ok {
		s.focusPane.SetPosition(&pos)
		return
	}
	s.focusPane.SetPosition(nil)
}

// Selected is the highlighted position.
func (s *PositionsScreen) Selected() (okx.Position, bool) {
	row := s.table.GetSelectedRow()
	if row < 0 || row >= len(s.positions) {
		return okx.Position{}, false
	}
	return s.positions[row], true
}

func (s *PositionsScreen) View() string {
	title := fmt.Sprintf("Positions (%d)", len(s.positions))
	body := lipgloss.JoinVertical(lipgloss.Left,
		style.PanelStyle.Render(s.table.View()),
		s.focusPane.View())
	return s.render(title, body)
}

// SetSize sets the screen dimensions
func (s *PositionsScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.table.SetSize(width-4, s.bodyHeight()-s.focusPane.GetHeight()-2)
	s.focusPane.SetWidth(width)
}
