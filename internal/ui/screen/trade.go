package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/component"
	"github.com/rovshanmuradov/okx-trader/internal/ui/router"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

type tradeFocus int

const (
	focusResults tradeFocus = iota
	focusSearch
	focusAmount
)

const (
	fieldMargin   = "margin"
	fieldLeverage = "leverage"
)

// TradeScreen searches instruments and places market orders on the selected
// one, either through the number-key presets or the manual amount form.
type TradeScreen struct {
	chrome

	focus   tradeFocus
	search  textinput.Model
	results *component.Table
	form    *component.Form
	presets []ui.Preset
}

// NewTradeScreen creates the trade screen.
func NewTradeScreen(session *ui.Session) *TradeScreen {
	search := textinput.New()
	search.Placeholder = "BTC, ETH, SOL..."
	search.Prompt = "/ "
	search.CharLimit = 20
	search.Width = 30

	leverage := make([]string, len(bot.LeverageChoices))
	for i, l := range bot.LeverageChoices {
		leverage[i] = fmt.Sprintf("%dx", l)
	}
	form := component.NewForm().
		AddField(fieldMargin, component.FieldTypeNumber, "Margin (USDT)", true, ui.DefaultManualMargin).
		AddField(fieldLeverage, component.FieldTypeSelect, "Leverage", true, "")
	form.SetFieldOptions(fieldLeverage, leverage)
	form.SetFieldValue(fieldLeverage, fmt.Sprintf("%dx", session.DefaultLeverage()))
	form.SetFieldValue(fieldMargin, ui.DefaultManualMargin)

	return &TradeScreen{
		chrome:  newChrome(session, ui.RouteTrade),
		search:  search,
		results: component.NewInstrumentsTable(),
		form:    form,
		presets: session.Presets(),
	}
}

func (s *TradeScreen) Init() tea.Cmd {
	component.ShowInstruments(s.results, s.session.Store().SearchResults())
	return nil
}

// CapturesInput keeps esc inside the screen while typing or a dialog is up.
func (s *TradeScreen) CapturesInput() bool {
	return s.focus != focusResults || s.dialog.IsOpen()
}

// Update handles screen updates
func (s *TradeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.OutcomeMsg:
		s.alertIfRejected(msg)
		if msg.Command == "search" && msg.Succeeded() {
			component.ShowInstruments(s.results, s.session.Store().SearchResults())
			s.results.SetSelectedRow(0)
		}
		return s, nil

	case tea.KeyMsg:
		if s.dialog.IsOpen() {
			s.dialog.HandleKey(msg.String())
			return s, nil
		}
		switch s.focus {
		case focusSearch:
			return s, s.updateSearch(msg)
		case focusAmount:
			return s, s.updateAmount(msg)
		}
		return s, s.updateResults(msg)
	}
	return s, nil
}

func (s *TradeScreen) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.blur()
		return nil
	case "enter":
		query := s.search.Value()
		s.blur()
		return s.session.Send(bot.SearchCommand{Query: query})
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return cmd
}

func (s *TradeScreen) updateAmount(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		s.form.Validate()
		s.blur()
		return nil
	}
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return cmd
}

func (s *TradeScreen) updateResults(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return ui.Quit
	case key.Matches(msg, s.keyMap.Search):
		s.focus = focusSearch
		s.search.SetValue("")
		return s.search.Focus()
	case key.Matches(msg, s.keyMap.Manual):
		s.focus = focusAmount
		return s.form.Focus()
	case key.Matches(msg, s.keyMap.Up):
		s.results.MoveUp()
	case key.Matches(msg, s.keyMap.Down):
		s.results.MoveDown()
	case key.Matches(msg, s.keyMap.Enter):
		return s.selectCurrent()
	case key.Matches(msg, s.keyMap.Left):
		s.form.Cycle(fieldLeverage, -1)
	case key.Matches(msg, s.keyMap.Right):
		s.form.Cycle(fieldLeverage, 1)
	case key.Matches(msg, s.keyMap.Presets):
		if preset, ok := ui.PresetForKey(s.presets, msg.String()); ok {
			return s.session.Send(preset.Command(s.selectedID()))
		}
	case key.Matches(msg, s.keyMap.Buy):
		return s.session.Send(s.ManualOrder(okx.SideBuy))
	case key.Matches(msg, s.keyMap.Sell):
		return s.session.Send(s.ManualOrder(okx.SideSell))
	case key.Matches(msg, s.keyMap.Refresh):
		if id := s.selectedID(); id != "" {
			return s.session.Send(bot.PriceCommand{InstID: id})
		}
	}
	return nil
}

func (s *TradeScreen) blur() {
	s.focus = focusResults
	s.search.Blur()
	s.form.Blur()
}

// selectCurrent makes the highlighted search result the trading pair and
// fetches its price.
func (s *TradeScreen) selectCurrent() tea.Cmd {
	results := s.session.Store().SearchResults()
	row := s.results.GetSelectedRow()
	if row < 0 || row >= len(results) {
		return nil
	}
	s.session.Store().Select(results[row])
	return s.session.Send(bot.PriceCommand{InstID: results[row].InstID})
}

func (s *TradeScreen) selectedID() string {
	if inst, ok := s.session.Store().Selected(); ok {
		return inst.InstID
	}
	return ""
}

// ManualOrder builds an order from the amount form.
func (s *TradeScreen) ManualOrder(side okx.Side) bot.PlaceOrderCommand {
	leverage := s.session.DefaultLeverage()
	if i := s.form.SelectedIndex(fieldLeverage); i >= 0 && i < len(bot.LeverageChoices) {
		leverage = bot.LeverageChoices[i]
	}
	return bot.PlaceOrderCommand{
		InstID:    s.selectedID(),
		Side:      side,
		MarginUSD: s.form.GetValue(fieldMargin),
		Leverage:  leverage,
	}
}

func (s *TradeScreen) View() string {
	left := lipgloss.JoinVertical(lipgloss.Left, s.search.View(), s.results.View())
	right := lipgloss.JoinVertical(lipgloss.Left, s.renderSelection(), "", s.form.View(), "", s.renderPresets())

	body := style.AdaptiveJoinHorizontal(s.width,
		style.PanelStyle.Render(left),
		style.PanelStyle.Render(right))
	return s.render("Trade", body)
}

func (s *TradeScreen) renderSelection() string {
	inst, ok := s.session.Store().Selected()
	if !ok {
		return style.MutedStyle.Render("No pair selected. Search with / and press enter")
	}
	price, ok := s.session.Store().Price(inst.InstID)
	if !ok {
		price = "-"
	}
	return fmt.Sprintf("%s  %s  (lot %s, min %s)",
		style.TitleStyle.Render(inst.InstID), price, inst.LotSz.String(), inst.MinSz.String())
}

func (s *TradeScreen) renderPresets() string {
	var buy, sell []string
	for _, p := range s.presets {
		label := fmt.Sprintf("[%s] %s", p.Key, p.Label())
		if s.session.Busy() {
			label = style.ButtonDisabledStyle.Render(label)
		} else if p.Side == okx.SideBuy {
			label = style.BuyButtonStyle.Render(label)
		} else {
			label = style.SellButtonStyle.Render(label)
		}
		if p.Side == okx.SideBuy {
			buy = append(buy, label)
		} else {
			sell = append(sell, label)
		}
	}
	manual := style.MutedStyle.Render("[b] buy / [s] sell with the amount above")
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(buy, " "),
		strings.Join(sell, " "),
		manual)
}

// SetSize sets the screen dimensions
func (s *TradeScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.results.SetSize(style.AdaptiveWidth(width, 45), s.bodyHeight()-4)
	s.form.SetWidth(24)
}
