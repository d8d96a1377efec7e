// Package styles provides colours and lipgloss styles for the sync monitor.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// Theme defines the colour palette of the monitor.
type Theme struct {
	// Primary is the accent used for titles.
	Primary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for labels and hints.
	Muted lipgloss.Color

	// Online marks a reachable network and accepted invoices.
	Online lipgloss.Color

	// Offline marks an unreachable network and rejected invoices.
	Offline lipgloss.Color

	// Pending marks queued work.
	Pending lipgloss.Color

	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Online:     lipgloss.Color("#A6E3A1"),
		Offline:    lipgloss.Color("#F38BA8"),
		Pending:    lipgloss.Color("#F9E2AF"),
		Border:     lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Online    lipgloss.Style
	Offline   lipgloss.Style
	Pending   lipgloss.Style
	Error     lipgloss.Style
	Panel     lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses the default.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		Value: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Online: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Online),

		Offline: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Offline),

		Pending: lipgloss.NewStyle().
			Foreground(theme.Pending),

		Error: lipgloss.NewStyle().
			Foreground(theme.Offline),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Connectivity returns the style for a connectivity state.
func (s *Styles) Connectivity(state domain.ConnectivityState) lipgloss.Style {
	switch state {
	case domain.ConnectivityOnline:
		return s.Online
	case domain.ConnectivityOffline:
		return s.Offline
	default:
		return s.Muted
	}
}
