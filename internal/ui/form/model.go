// Package form is the email classification form: a text area, the
// classify and clear actions, the error banner and the results table.
package form

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/case-classifier/internal/controller"
	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/theme"
	"github.com/nhle/case-classifier/internal/ui/results"
)

// Copy shown on the form.
const (
	Subtitle      = "Process email content and get complete case classification with all fields"
	BodyLabel     = "Email Body"
	Placeholder   = "Enter the email content here..."
	SubmitLabel   = "Classify Email"
	PendingLabel  = "Processing..."
	ClearLabel    = "Clear"
	bodyRows      = 8
	minInputWidth = 20
)

// Model is the Bubble Tea model for the classification form. The
// controller is shared by pointer so copies of Model see one state.
type Model struct {
	ctrl    *controller.Controller
	keys    *keys.KeyMap
	input   textarea.Model
	spinner spinner.Model
	width   int
	height  int
}

// New creates the form around ctrl.
func New(ctrl *controller.Controller, km *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(bodyRows)
	ta.SetValue(ctrl.Body())
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorYellow)

	m := Model{
		ctrl:    ctrl,
		keys:    km,
		input:   ta,
		spinner: sp,
	}
	m.SetSize(width, height)
	m.syncKeys()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case controller.ClassifiedMsg:
		m.ctrl.Apply(msg)
		m.syncKeys()
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Status().IsPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m, m.Submit()
		case key.Matches(msg, m.keys.Clear):
			m.Clear()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.ctrl.Body() {
		m.ctrl.UpdateBody(v)
		m.syncKeys()
	}
	return m, cmd
}

// Submit asks the controller to classify the current body and starts the
// spinner when a request was issued.
func (m *Model) Submit() tea.Cmd {
	cmd := m.ctrl.Submit()
	m.syncKeys()
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

// Clear empties the form and any outcome.
func (m *Model) Clear() {
	m.ctrl.Clear()
	m.input.Reset()
	m.syncKeys()
}

// SetBody replaces the text area contents, e.g. from history or the
// mailbox. The status is left as it is.
func (m *Model) SetBody(body string) {
	m.ctrl.UpdateBody(body)
	m.input.SetValue(body)
	m.syncKeys()
}

// Focus gives keyboard focus back to the text area.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) syncKeys() {
	m.keys.SetFormState(m.ctrl.CanSubmit())
}

// View renders the form.
func (m Model) View() string {
	subtitle := theme.HelpStyle.Render(Subtitle)
	label := theme.LabelStyle.Render(BodyLabel)
	input := theme.BorderStyle.Render(m.input.View())

	sections := []string{subtitle, "", label, input, m.buttons()}

	if _, message, ok := m.ctrl.Status().Failure(); ok {
		sections = append(sections, "", theme.ErrorBannerStyle.Render("✖ "+message))
	}

	if table := results.View(m.ctrl.Status(), m.width-4); table != "" {
		sections = append(sections, "", table)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) buttons() string {
	submitStyle := theme.ButtonStyle
	if !m.ctrl.CanSubmit() {
		submitStyle = theme.DisabledButtonStyle
	}

	submit := submitStyle.Render("➤ " + SubmitLabel)
	if m.ctrl.Status().IsPending() {
		submit = submitStyle.Render(m.spinner.View() + PendingLabel)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		submit,
		theme.ButtonStyle.Background(theme.ColorSubtle).Render(ClearLabel),
	)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	w := width - 6
	if w < minInputWidth {
		w = minInputWidth
	}
	m.input.SetWidth(w)
}
