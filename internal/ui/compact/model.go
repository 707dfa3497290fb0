// Package compact is the single-screen front-end: search, order controls,
// positions and logs all on one page, built on the stock bubbles widgets.
package compact

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/component"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

const logRefreshInterval = time.Second

type focus int

const (
	focusPositions focus = iota
	focusResults
	focusSearch
	focusAmount
)

func (f focus) String() string {
	switch f {
	case focusResults:
		return "results"
	case focusSearch:
		return "search"
	case focusAmount:
		return "amount"
	default:
		return "positions"
	}
}

type logTickMsg struct{}

// Model is the compact front-end's bubbletea model.
type Model struct {
	session *ui.Session
	keyMap  ui.KeyMap
	presets []ui.Preset

	focus     focus
	search    textinput.Model
	amount    textinput.Model
	leverage  int
	results   table.Model
	positions table.Model
	logs      *component.LogPanel
	header    *component.AccountHeader
	dialog    *component.Dialog
	helpBar   *component.HelpBar

	pending bot.TradingCommand
	rows    []okx.Position

	width  int
	height int
	now    func() time.Time
}

// New builds the compact model over session.
func New(session *ui.Session) *Model {
	search := textinput.New()
	search.Placeholder = "BTC, ETH, SOL..."
	search.Prompt = "Search: "
	search.CharLimit = 20
	search.Width = 20

	amount := textinput.New()
	amount.Prompt = "Margin $"
	amount.CharLimit = 12
	amount.Width = 10
	amount.SetValue(ui.DefaultManualMargin)

	results := table.New(
		table.WithColumns([]table.Column{
			{Title: "Instrument", Width: 18},
			{Title: "Lot", Width: 8},
			{Title: "Min", Width: 8},
		}),
		table.WithHeight(5),
	)

	positions := table.New(
		table.WithColumns(positionColumns()),
		table.WithHeight(8),
		table.WithFocused(true),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(style.Base03).
		Background(style.Cyan)
	results.SetStyles(styles)
	positions.SetStyles(styles)

	keyMap := session.Keys()
	return &Model{
		session:   session,
		keyMap:    keyMap,
		presets:   session.Presets(),
		search:    search,
		amount:    amount,
		leverage:  ui.LeverageIndex(session.DefaultLeverage()),
		results:   results,
		positions: positions,
		logs:      component.NewLogPanel(session.Logs(), "Log"),
		header:    component.NewAccountHeader(session.Mode()),
		dialog:    component.NewDialog(),
		helpBar:   component.NewHelpBar().SetCompact(true),
		now:       time.Now,
	}
}

func positionColumns() []table.Column {
	widths := []int{18, 6, 10, 12, 12, 14, 9}
	cols := make([]table.Column, len(component.PositionHeaders))
	for i, h := range component.PositionHeaders {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	return cols
}

// Init starts the poller and the log redraw ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.session.StartFeed(), m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(logRefreshInterval, func(time.Time) tea.Msg { return logTickMsg{} })
}

// Update handles messages for the whole screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case logTickMsg:
		m.logs.Refresh()
		return m, m.tick()

	case ui.SnapshotMsg:
		cmd := m.session.Apply(msg)
		m.reloadPositions()
		return m, cmd

	case ui.FeedClosedMsg:
		return m, nil

	case ui.OutcomeMsg:
		m.session.Report(msg)
		m.handleOutcome(msg)
		m.logs.Refresh()
		return m, nil

	case ui.QuitMsg:
		return m, m.quit()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.dialog.IsOpen() {
			return m, m.answer(msg.String())
		}
		switch m.focus {
		case focusSearch:
			return m, m.updateSearch(msg)
		case focusAmount:
			return m, m.updateAmount(msg)
		}
		return m, m.updateTables(msg)
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.session.StopFeed()
	return tea.Quit
}

func (m *Model) handleOutcome(msg ui.OutcomeMsg) {
	if msg.IsValidation() {
		m.dialog.Alert("Check your input", msg.Text())
		return
	}
	switch msg.Command {
	case "search":
		if msg.Succeeded() {
			m.reloadResults()
			m.setFocus(focusResults)
		}
	case "close_position", "close_all", "place_order":
		m.session.Refresh()
	}
}

func (m *Model) answer(k string) tea.Cmd {
	result := m.dialog.HandleKey(k)
	if m.dialog.IsOpen() {
		return nil
	}
	cmd := m.pending
	m.pending = nil
	if result != component.DialogAccepted || cmd == nil {
		return nil
	}
	return m.session.Send(cmd)
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.setFocus(focusPositions)
		return nil
	case "enter":
		query := m.search.Value()
		m.setFocus(focusPositions)
		return m.session.Send(bot.SearchCommand{Query: query})
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *Model) updateAmount(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		m.setFocus(focusPositions)
		return nil
	}
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	return cmd
}

func (m *Model) updateTables(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return ui.Quit
	case key.Matches(msg, m.keyMap.Search):
		m.search.SetValue("")
		return m.setFocus(focusSearch)
	case key.Matches(msg, m.keyMap.Manual):
		return m.setFocus(focusAmount)
	case key.Matches(msg, m.keyMap.Tab):
		if m.focus == focusResults {
			m.setFocus(focusPositions)
		} else {
			m.setFocus(focusResults)
		}
	case key.Matches(msg, m.keyMap.Left):
		m.cycleLeverage(-1)
	case key.Matches(msg, m.keyMap.Right):
		m.cycleLeverage(1)
	case key.Matches(msg, m.keyMap.Presets):
		if preset, ok := ui.PresetForKey(m.presets, msg.String()); ok {
			return m.session.Send(preset.Command(m.selectedID()))
		}
	case key.Matches(msg, m.keyMap.Buy):
		return m.session.Send(m.ManualOrder(okx.SideBuy))
	case key.Matches(msg, m.keyMap.Sell):
		return m.session.Send(m.ManualOrder(okx.SideSell))
	case key.Matches(msg, m.keyMap.Refresh):
		m.session.Refresh()
		if id := m.selectedID(); id != "" {
			return m.session.Send(bot.PriceCommand{InstID: id})
		}
	case m.focus == focusResults && key.Matches(msg, m.keyMap.Enter):
		return m.selectResult()
	case m.focus == focusPositions && key.Matches(msg, m.keyMap.Close):
		return m.confirmClose()
	case m.focus == focusPositions && key.Matches(msg, m.keyMap.CloseAll):
		m.confirmCloseAll()
	default:
		var cmd tea.Cmd
		if m.focus == focusResults {
			m.results, cmd = m.results.Update(msg)
		} else {
			m.positions, cmd = m.positions.Update(msg)
		}
		return cmd
	}
	return nil
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.search.Blur()
	m.amount.Blur()
	m.results.Blur()
	m.positions.Blur()

	switch f {
	case focusSearch:
		return m.search.Focus()
	case focusAmount:
		return m.amount.Focus()
	case focusResults:
		m.results.Focus()
	default:
		m.positions.Focus()
	}
	return nil
}

func (m *Model) cycleLeverage(delta int) {
	n := len(bot.LeverageChoices)
	m.leverage = ((m.leverage+delta)%n + n) % n
}

// Leverage is the currently chosen manual-order leverage.
func (m *Model) Leverage() int {
	return bot.LeverageChoices[m.leverage]
}

// Focus names the focused widget.
func (m *Model) Focus() string {
	return m.focus.String()
}

// CapturesInput reports whether keystrokes go to a text input or a dialog.
func (m *Model) CapturesInput() bool {
	return m.focus == focusSearch || m.focus == focusAmount || m.dialog.IsOpen()
}

// ManualOrder builds an order from the margin input and leverage choice.
func (m *Model) ManualOrder(side okx.Side) bot.PlaceOrderCommand {
	return bot.PlaceOrderCommand{
		InstID:    m.selectedID(),
		Side:      side,
		MarginUSD: strings.TrimSpace(m.amount.Value()),
		Leverage:  m.Leverage(),
	}
}

func (m *Model) selectResult() tea.Cmd {
	results := m.session.Store().SearchResults()
	row := m.results.Cursor()
	if row < 0 || row >= len(results) {
		return nil
	}
	m.session.Store().Select(results[row])
	return m.session.Send(bot.PriceCommand{InstID: results[row].InstID})
}

func (m *Model) selectedID() string {
	if inst, ok := m.session.Store().Selected(); ok {
		return inst.InstID
	}
	return ""
}

// SelectedPosition returns the position under the table cursor.
func (m *Model) SelectedPosition() (okx.Position, bool) {
	row := m.positions.Cursor()
	if row < 0 || row >= len(m.rows) {
		return okx.Position{}, false
	}
	return m.rows[row], true
}

// confirmClose asks before closing the highlighted position. Without one the
// command goes straight to validation, which rejects it.
func (m *Model) confirmClose() tea.Cmd {
	pos, ok := m.SelectedPosition()
	if !ok {
		return m.session.Send(bot.ClosePositionCommand{})
	}
	m.pending = bot.ClosePositionCommand{InstID: pos.InstID}
	m.dialog.Confirm("Close position",
		fmt.Sprintf("Close %s %s %s at market?", pos.InstID, trader.DirectionLabel(pos), pos.Pos.Abs().String()))
	return nil
}

func (m *Model) confirmCloseAll() {
	if len(m.rows) == 0 {
		m.dialog.Alert("Nothing to close", "There are no open positions.")
		return
	}
	m.pending = bot.CloseAllCommand{}
	m.dialog.Confirm("Close all positions",
		fmt.Sprintf("Close all %d positions?\n\n%s", len(m.rows), ui.CloseAllWarning))
}

func (m *Model) reloadPositions() {
	m.rows = m.session.Store().Positions()
	rows := make([]table.Row, len(m.rows))
	for i, p := range m.rows {
		rows[i] = component.PositionRow(p)
	}
	m.positions.SetRows(rows)
	if c := m.positions.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.positions.SetCursor(len(rows) - 1)
	}
}

func (m *Model) reloadResults() {
	results := m.session.Store().SearchResults()
	rows := make([]table.Row, len(results))
	for i, inst := range results {
		rows[i] = table.Row{inst.InstID, inst.LotSz.String(), inst.MinSz.String()}
	}
	m.results.SetRows(rows)
	m.results.SetCursor(0)
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width)
	m.helpBar.SetWidth(width)
	m.dialog.SetWidth(width - 10)

	logHeight := height / 4
	if logHeight < 5 {
		logHeight = 5
	}
	m.logs.SetSize(width, logHeight)
	m.positions.SetWidth(width - 2)
}

// View renders the screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	m.header.Update(m.session.Store())

	var body string
	if m.dialog.IsOpen() {
		body = m.dialog.Overlay(m.width, m.height/2)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderControls(),
			m.renderPositions(),
		)
	}

	m.helpBar.SetKeyBindings(m.bindings())
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.logs.View(),
		component.RenderNotice(m.session.Store().Notice(), m.session.Pending(), m.now()),
		m.helpBar.View(),
	)
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(m.height).Render(content)
}

func (m *Model) renderControls() string {
	selection := style.MutedStyle.Render("No pair selected")
	if inst, ok := m.session.Store().Selected(); ok {
		price, ok := m.session.Store().Price(inst.InstID)
		if !ok {
			price = "-"
		}
		selection = style.TitleStyle.Render(inst.InstID) + "  " + price
	}

	var buttons []string
	for _, p := range m.presets {
		label := fmt.Sprintf("[%s] %s", p.Key, p.Label())
		switch {
		case m.session.Busy():
			label = style.ButtonDisabledStyle.Render(label)
		case p.Side == okx.SideBuy:
			label = style.BuyButtonStyle.Render(label)
		default:
			label = style.SellButtonStyle.Render(label)
		}
		buttons = append(buttons, label)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.search.View(), m.results.View())
	right := lipgloss.JoinVertical(lipgloss.Left,
		selection,
		m.amount.View()+fmt.Sprintf("  Leverage ◀ %dx ▶", m.Leverage()),
		strings.Join(buttons[:len(buttons)/2], " "),
		strings.Join(buttons[len(buttons)/2:], " "),
	)
	return style.AdaptiveJoinHorizontal(m.width,
		m.panelStyle(focusResults, focusSearch).Render(left),
		m.panelStyle(focusAmount).Render(right))
}

func (m *Model) renderPositions() string {
	title := fmt.Sprintf("Positions (%d)", len(m.rows))
	body := m.positions.View()
	if len(m.rows) == 0 {
		body = style.MutedStyle.Render("No open positions")
	}
	return m.panelStyle(focusPositions).Render(style.SubHeaderStyle.Render(title) + "\n" + body)
}

func (m *Model) panelStyle(active ...focus) lipgloss.Style {
	for _, f := range active {
		if m.focus == f {
			return style.ActivePanelStyle
		}
	}
	return style.PanelStyle
}

func (m *Model) bindings() []key.Binding {
	k := m.keyMap
	switch {
	case m.dialog.IsOpen() && m.dialog.Kind() == component.DialogConfirm:
		return k.ConfirmHelp()
	case m.dialog.IsOpen():
		return []key.Binding{k.Enter, k.Back}
	case m.focus == focusSearch || m.focus == focusAmount:
		return []key.Binding{k.Enter, k.Back}
	case m.focus == focusResults:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Tab, k.Presets, k.Left, k.Right, k.Buy, k.Sell, k.Quit}
	default:
		return []key.Binding{k.Search, k.Tab, k.Presets, k.Manual, k.Buy, k.Sell, k.Close, k.CloseAll, k.Refresh, k.Quit}
	}
}
