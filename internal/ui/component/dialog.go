package component

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

type DialogKind int

const (
	// DialogConfirm asks a yes/no question.
	DialogConfirm DialogKind = iota
	// DialogAlert blocks until dismissed.
	DialogAlert
)

type DialogResult int

const (
	DialogPending DialogResult = iota
	DialogAccepted
	DialogDismissed
)

// Dialog is a modal box drawn over a screen. While open it takes every key.
type Dialog struct {
	kind  DialogKind
	title string
	body  string
	open  bool
	width int
	style style.DialogStyles
}

func NewDialog() *Dialog {
	return &Dialog{
		width: 60,
		style: style.NewDialogStyles(style.DefaultPalette()),
	}
}

// Confirm opens a yes/no dialog.
func (d *Dialog) Confirm(title, body string) {
	d.kind, d.title, d.body, d.open = DialogConfirm, title, body, true
}

// Alert opens a warning that must be dismissed.
func (d *Dialog) Alert(title, body string) {
	d.kind, d.title, d.body, d.open = DialogAlert, title, body, true
}

func (d *Dialog) IsOpen() bool {
	return d.open
}

func (d *Dialog) Kind() DialogKind {
	return d.kind
}

func (d *Dialog) SetWidth(width int) {
	if width > 70 {
		width = 70
	}
	if width < 30 {
		width = 30
	}
	d.width = width
}

// HandleKey feeds a key to the open dialog and closes it once answered.
// Confirm dialogs accept y and dismiss on n or esc. Alerts dismiss on
// enter or esc.
func (d *Dialog) HandleKey(key string) DialogResult {
	if !d.open {
		return DialogPending
	}

	result := DialogPending
	switch d.kind {
	case DialogConfirm:
		switch key {
		case "y", "Y":
			result = DialogAccepted
		case "n", "N", "esc":
			result = DialogDismissed
		}
	case DialogAlert:
		switch key {
		case "enter", "esc", " ":
			result = DialogDismissed
		}
	}

	if result != DialogPending {
		d.open = false
	}
	return result
}

// View renders the dialog, or nothing when closed.
func (d *Dialog) View() string {
	if !d.open {
		return ""
	}

	container := d.style.Container
	hint := "[y] confirm  [n/esc] cancel"
	if d.kind == DialogAlert {
		container = d.style.Warning
		hint = "[enter/esc] dismiss"
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		d.style.Title.Render(d.title),
		"",
		d.style.Body.Width(d.width-6).Render(d.body),
		"",
		d.style.Hint.Render(hint),
	)
	return container.Width(d.width).Render(content)
}

// Overlay centres the dialog inside a width x height area.
func (d *Dialog) Overlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, d.View())
}
