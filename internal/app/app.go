package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/case-classifier/internal/controller"
	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/store"
	"github.com/nhle/case-classifier/internal/ui"
	"github.com/nhle/case-classifier/internal/ui/form"
	helpview "github.com/nhle/case-classifier/internal/ui/help"
	"github.com/nhle/case-classifier/internal/ui/history"
	"github.com/nhle/case-classifier/internal/ui/importer"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewForm ViewState = iota
	ViewHistory
	ViewImport
	ViewHelp
)

// Options are the collaborators of the root model. Store and Mailbox may
// be nil.
type Options struct {
	Config     *model.AppConfig
	Controller *controller.Controller
	Store      store.Store
	Mailbox    importer.Opener
}

// Model is the root Bubble Tea model that routes between the form and
// its secondary views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ctrl         *controller.Controller
	keys         *keys.KeyMap
	formView     form.Model
	historyView  history.Model
	importView   importer.Model
	helpView     helpview.Model
	ready        bool
	notice       string
}

// New creates the root application model.
func New(opts Options) Model {
	km := keys.DefaultKeyMap()

	limit := 0
	if opts.Config != nil {
		limit = opts.Config.History.Limit
	}

	return Model{
		currentView: ViewForm,
		ctrl:        opts.Controller,
		keys:        km,
		formView:    form.New(opts.Controller, km, 80, 24),
		historyView: history.New(opts.Store, km, limit, 80, 24),
		importView:  importer.New(opts.Mailbox, km, 80, 24),
		helpView:    helpview.New(km, opts.Config, 80, 24),
	}
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.formView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.formView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		m.importView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	// The request outlives view switches, so its messages always reach
	// the form.
	case controller.ClassifiedMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.formView, cmd = m.formView.Update(msg)
		return m, cmd

	case history.SelectedMsg:
		m.formView.SetBody(msg.Entry.Body)
		m.notice = "Loaded email from history"
		m.currentView = ViewForm
		return m, m.formView.Focus()

	case history.CloseMsg:
		m.currentView = ViewForm
		return m, m.formView.Focus()

	case importer.ImportedMsg:
		m.formView.SetBody(msg.Body)
		m.notice = "Imported: " + msg.Subject
		m.currentView = ViewForm
		return m, m.formView.Focus()

	case importer.CloseMsg:
		m.currentView = ViewForm
		return m, m.formView.Focus()

	case tea.KeyMsg:
		m.notice = ""

		// Global keys that work regardless of current view
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
			m.currentView = m.previousView
			return m, nil

		case key.Matches(msg, m.keys.History) && m.currentView == ViewForm:
			m.previousView = m.currentView
			m.currentView = ViewHistory
			return m, m.historyView.Init()

		case key.Matches(msg, m.keys.Import) && m.currentView == ViewForm:
			m.previousView = m.currentView
			m.currentView = ViewImport
			return m, m.importView.Init()
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewImport:
		m.importView, cmd = m.importView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(ui.Title, m.statusText())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewForm:
		return m.formView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewImport:
		return m.importView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// statusText describes the submission phase for the header.
func (m Model) statusText() string {
	switch m.ctrl.Status().Phase() {
	case model.PhasePending:
		return "processing"
	case model.PhaseSucceeded:
		return "classified"
	case model.PhaseFailed:
		return "error"
	default:
		return "ready"
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" && m.currentView == ViewForm {
		return m.notice
	}

	switch m.currentView {
	case ViewHelp:
		return "f1 close help | esc back"
	case ViewHistory:
		return "enter load | d delete | f filter | esc back"
	case ViewImport:
		return "enter import | esc back"
	default:
		if m.ctrl.CanSubmit() {
			return "ctrl+s classify | ctrl+l clear | ctrl+p history | ctrl+o import | f1 help | ctrl+c quit"
		}
		return "ctrl+l clear | ctrl+p history | ctrl+o import | f1 help | ctrl+c quit"
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}
