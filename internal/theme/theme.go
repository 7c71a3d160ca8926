package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/case-classifier/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps full-screen secondary views.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// LabelStyle renders form labels.
var LabelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ErrorBannerStyle is the single affordance for every error kind.
var ErrorBannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// ButtonStyle renders an enabled action.
var ButtonStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 2).
	MarginRight(1)

// DisabledButtonStyle renders an action that cannot be taken right now.
var DisabledButtonStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Background(ColorSubtle).
	Padding(0, 2).
	MarginRight(1)

// TableHeaderStyle renders column headers of the results table.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	Padding(0, 1)

// TableCellStyle renders results table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// PhaseStyle returns a color-coded style for a submission phase.
func PhaseStyle(phase model.Phase) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch phase {
	case model.PhasePending:
		return base.Foreground(ColorYellow)
	case model.PhaseSucceeded:
		return base.Foreground(ColorGreen)
	case model.PhaseFailed:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// OutcomeStyle returns a color-coded style for a history outcome.
func OutcomeStyle(outcome model.Outcome) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch outcome {
	case model.OutcomeSucceeded:
		return base.Foreground(ColorGreen)
	case model.OutcomeRemoteError:
		return base.Foreground(ColorOrange)
	case model.OutcomeTransportError:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorYellow)
	}
}
