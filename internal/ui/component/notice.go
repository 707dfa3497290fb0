package component

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui/state"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// NoticeTTL is how long a notification stays on screen.
const NoticeTTL = 10 * time.Second

// RenderNotice renders the notification line. A pending command takes
// precedence; expired notices render empty.
func RenderNotice(n state.Notice, pending string, now time.Time) string {
	if pending != "" {
		return style.InfoStyle.Render("⏳ " + pending + "...")
	}
	if n.Text == "" || now.Sub(n.At) > NoticeTTL {
		return ""
	}

	var st lipgloss.Style
	prefix := ""
	switch n.Level {
	case state.NoticeSuccess:
		st, prefix = style.SuccessStyle, "✓ "
	case state.NoticeWarning:
		st, prefix = style.WarningStyle, "⚠ "
	case state.NoticeError:
		st, prefix = style.ErrorStyle, "✗ "
	default:
		st = style.InfoStyle
	}
	return st.Render(prefix + n.Text)
}
