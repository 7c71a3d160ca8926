package help

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	cfg    *model.AppConfig
	width  int
	height int
}

// New creates a new help view model. cfg may be nil.
func New(keys *keys.KeyMap, cfg *model.AppConfig, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		cfg:    cfg,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	sections := []string{
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
	}
	if m.cfg != nil {
		sections = append(sections,
			"",
			titleStyle.Render("Service"),
			m.serviceInfo(),
		)
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) serviceInfo() string {
	history := "off"
	if m.cfg.History.Enabled {
		history = m.cfg.History.DBPath
	}
	mailbox := "not configured"
	if m.cfg.Mailbox.Configured() {
		mailbox = m.cfg.Mailbox.Username + "@" + m.cfg.Mailbox.Host
	}

	return theme.HelpStyle.Render(fmt.Sprintf(
		"endpoint:        %s\ntimeout:         %ds\ndiscard stale:   %t\nstrict response: %t\nhistory:         %s\nmailbox:         %s",
		m.cfg.Service.Endpoint(),
		m.cfg.Service.TimeoutSec,
		m.cfg.Behavior.DiscardStaleResponses,
		m.cfg.Behavior.StrictResponse,
		history,
		mailbox,
	))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
