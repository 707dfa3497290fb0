package screen

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/component"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// chrome is the frame shared by the dashboard screens: account header on
// top, notification line and help bar at the bottom, dialogs over the body.
type chrome struct {
	session *ui.Session
	keyMap  ui.KeyMap
	route   ui.Route

	header  *component.AccountHeader
	helpBar *component.HelpBar
	dialog  *component.Dialog

	width  int
	height int
	now    func() time.Time
}

func newChrome(session *ui.Session, route ui.Route) chrome {
	keyMap := session.Keys()
	return chrome{
		session: session,
		keyMap:  keyMap,
		route:   route,
		header:  component.NewAccountHeader(session.Mode()),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(route)),
		dialog:  component.NewDialog(),
		now:     time.Now,
	}
}

func (c *chrome) setSize(width, height int) {
	c.width = width
	c.height = height
	c.header.SetWidth(width)
	c.helpBar.SetWidth(width)
	c.dialog.SetWidth(width - 10)
}

// bodyHeight is what is left for the screen body.
func (c *chrome) bodyHeight() int {
	h := c.height - c.header.GetHeight() - 6
	if h < 5 {
		h = 5
	}
	return h
}

// alertIfRejected opens a blocking warning for input errors.
func (c *chrome) alertIfRejected(msg ui.OutcomeMsg) {
	if msg.IsValidation() {
		c.dialog.Alert("Check your input", msg.Text())
	}
}

func (c *chrome) render(title, body string) string {
	if c.width == 0 || c.height == 0 {
		return "Loading..."
	}

	c.header.Update(c.session.Store())

	bindings := c.keyMap.ContextualHelp(c.route)
	if c.dialog.IsOpen() {
		if c.dialog.Kind() == component.DialogConfirm {
			bindings = c.keyMap.ConfirmHelp()
		} else {
			bindings = []key.Binding{c.keyMap.Enter, c.keyMap.Back}
		}
		body = c.dialog.Overlay(c.width, c.bodyHeight())
	}
	c.helpBar.SetKeyBindings(bindings)

	var content strings.Builder
	content.WriteString(c.header.View())
	content.WriteString("\n")
	content.WriteString(style.SubHeaderStyle.Render(title))
	content.WriteString("\n")
	content.WriteString(body)
	content.WriteString("\n")
	content.WriteString(component.RenderNotice(c.session.Store().Notice(), c.session.Pending(), c.now()))
	content.WriteString(c.helpBar.View())

	return lipgloss.NewStyle().MaxWidth(c.width).MaxHeight(c.height).Render(content.String())
}
