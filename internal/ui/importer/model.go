// Package importer picks a recent inbox message and loads its text into
// the form.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/mailsource"
	"github.com/nhle/case-classifier/internal/theme"
)

// ErrNotConfigured is reported when no mailbox is set up.
var ErrNotConfigured = errors.New("no mailbox configured; set mailbox.host and mailbox.username in the config file")

// Source lists and fetches inbox messages.
type Source interface {
	Recent(ctx context.Context) ([]mailsource.Summary, error)
	Fetch(ctx context.Context, uid uint32) (*mailsource.Message, error)
}

// Opener connects a Source on demand, e.g. after reading the password
// from the keyring.
type Opener func() (Source, error)

// CloseMsg signals the parent to close the importer.
type CloseMsg struct{}

// ImportedMsg carries the text of the chosen message.
type ImportedMsg struct {
	Subject string
	Body    string
}

type listedMsg struct {
	source    Source
	summaries []mailsource.Summary
	err       error
}

type fetchFailedMsg struct{ err error }

type importMode int

const (
	modeLoading importMode = iota
	modeSelect
	modeFetching
	modeError
)

// selectBinding keeps the huh value pointer stable across model copies.
type selectBinding struct {
	uid uint32
}

// Model is the Bubble Tea model for the mailbox importer.
type Model struct {
	mode      importMode
	open      Opener
	source    Source
	keys      *keys.KeyMap
	summaries []mailsource.Summary
	form      *huh.Form
	sb        *selectBinding
	err       error
	width     int
	height    int
}

// New creates an importer. A nil opener means no mailbox is configured.
func New(open Opener, k *keys.KeyMap, width, height int) Model {
	return Model{
		open:   open,
		keys:   k,
		sb:     &selectBinding{},
		width:  width,
		height: height,
	}
}

// Init connects and lists recent messages.
func (m *Model) Init() tea.Cmd {
	m.mode = modeLoading
	m.err = nil
	m.form = nil
	m.summaries = nil

	open := m.open
	return func() tea.Msg {
		if open == nil {
			return listedMsg{err: ErrNotConfigured}
		}
		src, err := open()
		if err != nil {
			return listedMsg{err: err}
		}
		summaries, err := src.Recent(context.Background())
		return listedMsg{source: src, summaries: summaries, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listedMsg:
		if msg.err != nil {
			m.mode = modeError
			m.err = msg.err
			return m, nil
		}
		m.source = msg.source
		m.summaries = msg.summaries
		if len(m.summaries) == 0 {
			m.mode = modeError
			m.err = errors.New("no messages in the inbox from the last 7 days")
			return m, nil
		}
		m.mode = modeSelect
		m.form = m.buildForm()
		return m, m.form.Init()

	case fetchFailedMsg:
		m.mode = modeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		// huh does not abort on esc, so it is caught before the form sees it.
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	if m.mode != modeSelect || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.choose(m.sb.uid)
	case huh.StateAborted:
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, cmd
}

func (m Model) buildForm() *huh.Form {
	options := make([]huh.Option[uint32], 0, len(m.summaries))
	for _, s := range m.summaries {
		options = append(options, huh.NewOption(s.Label(), s.UID))
	}
	m.sb.uid = m.summaries[0].UID

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uint32]().
				Title("Import email from inbox").
				Options(options...).
				Value(&m.sb.uid),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// choose fetches uid and reports its text as an ImportedMsg.
func (m *Model) choose(uid uint32) tea.Cmd {
	m.mode = modeFetching
	src := m.source
	return func() tea.Msg {
		msg, err := src.Fetch(context.Background(), uid)
		if err != nil {
			return fetchFailedMsg{err: fmt.Errorf("fetching message %d: %w", uid, err)}
		}
		return ImportedMsg{Subject: msg.Subject, Body: msg.Body}
	}
}

// View renders the importer.
func (m Model) View() string {
	var content string
	switch m.mode {
	case modeLoading:
		content = theme.HelpStyle.Render("Connecting to mailbox...")
	case modeFetching:
		content = theme.HelpStyle.Render("Fetching message...")
	case modeError:
		content = lipgloss.JoinVertical(lipgloss.Left,
			theme.ErrorBannerStyle.Render(m.err.Error()),
			"",
			theme.HelpStyle.Render("esc back"),
		)
	case modeSelect:
		if m.form != nil {
			content = m.form.View()
		}
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 120 {
		w = 120
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
