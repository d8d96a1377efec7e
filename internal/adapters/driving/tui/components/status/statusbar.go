// Package status renders the monitor's bottom line: a connectivity badge,
// the outcome of the last action and the key hints.
package status

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// State selects how the message is rendered.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateError   State = "error"
)

const defaultWidth = 80

// Bar is a one-line status bar. The zero width falls back to 80 columns.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	state State
	msg   string
	link  domain.ConnectivityState
	width int
}

// NewBar creates an idle bar with unknown connectivity. Nil arguments use
// the default styles and key map.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keys:   km,
		state:  StateIdle,
		link:   domain.ConnectivityUnknown,
		width:  defaultWidth,
	}
}

// SetState replaces the state and its message.
func (b *Bar) SetState(state State, msg string) {
	b.state = state
	b.msg = msg
}

func (b *Bar) State() State { return b.state }
func (b *Bar) Message() string { return b.msg }
func (b *Bar) SetWidth(w int) { b.width = w }
func (b *Bar) SetConnectivity(s domain.ConnectivityState) { b.link = s }

// View lays out badge and message on the left and hints on the right.
// When the line is too narrow the message is shortened first; the badge
// and hints are never cut.
func (b *Bar) View() string {
	width := b.width
	if width <= 0 {
		width = defaultWidth
	}

	inner := width - b.styles.StatusBar.GetHorizontalFrameSize()

	badge := b.badge()
	hints := b.hints()
	room := inner - lipgloss.Width(badge) - lipgloss.Width(hints) - 2
	msg := b.message(room)

	left := badge + " " + msg
	gap := inner - lipgloss.Width(left) - lipgloss.Width(hints)
	if gap < 1 {
		gap = 1
	}
	return b.styles.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + hints)
}

func (b *Bar) badge() string {
	switch b.link {
	case domain.ConnectivityOnline:
		return b.styles.Online.Render("● online")
	case domain.ConnectivityOffline:
		return b.styles.Offline.Render("○ offline")
	default:
		return b.styles.Muted.Render("○ ...")
	}
}

func (b *Bar) message(room int) string {
	var text string
	style := b.styles.Value
	switch b.state {
	case StateSyncing:
		text, style = "Syncing...", b.styles.Pending
	case StateError:
		text, style = "Error", b.styles.Error
		if b.msg != "" {
			text = "Error: " + b.msg
		}
	default:
		text = b.msg
		if text == "" {
			text, style = "Ready", b.styles.Muted
		}
	}
	return style.Render(shorten(text, room))
}

func (b *Bar) hints() string {
	bindings := b.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

// shorten cuts s to n runes, ending in "…" when cut. n below 1 keeps one rune.
func shorten(s string, n int) string {
	r := []rune(s)
	if n < 1 {
		n = 1
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
