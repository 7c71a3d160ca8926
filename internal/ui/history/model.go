// Package history lists past classification attempts and lets the user
// load a previous email body back into the form.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/store"
	"github.com/nhle/case-classifier/internal/theme"
)

// CloseMsg signals the parent to close the history view.
type CloseMsg struct{}

// SelectedMsg carries the entry whose body should be loaded into the form.
type SelectedMsg struct {
	Entry model.HistoryEntry
}

// LoadedMsg delivers a page of history entries.
type LoadedMsg struct {
	Entries []model.HistoryEntry
	Total   int
	Err     error
}

type deletedMsg struct{ err error }

type fetchFailedMsg struct{ err error }

type historyMode int

const (
	modeList historyMode = iota
	modeConfirmDelete
)

// outcomeFilters is the cycle order of the outcome filter; nil is "all".
var outcomeFilters = []*model.Outcome{
	nil,
	outcomePtr(model.OutcomeSucceeded),
	outcomePtr(model.OutcomeRemoteError),
	outcomePtr(model.OutcomeTransportError),
	outcomePtr(model.OutcomeUnexpected),
}

func outcomePtr(o model.Outcome) *model.Outcome { return &o }

// confirmBinding keeps the huh value pointer stable across model copies.
type confirmBinding struct {
	confirm bool
}

// Model is the Bubble Tea model for the history list.
type Model struct {
	mode        historyMode
	store       store.Store
	keys        *keys.KeyMap
	limit       int
	table       table.Model
	entries     []model.HistoryEntry
	total       int
	filterIdx   int
	confirmForm *huh.Form
	cb          *confirmBinding
	statusMsg   string
	width       int
	height      int
}

// New creates a history view over s. A nil store renders a notice.
func New(s store.Store, k *keys.KeyMap, limit, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
	)

	m := Model{
		mode:  modeList,
		store: s,
		keys:  k,
		limit: limit,
		table: t,
		cb:    &confirmBinding{},
	}
	m.SetSize(width, height)
	return m
}

// Init loads the first page of history.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
			return m, nil
		}
		m.entries = msg.Entries
		m.total = msg.Total
		m.table.SetRows(rows(m.entries))
		if c := m.table.Cursor(); c >= len(m.entries) && len(m.entries) > 0 {
			m.table.SetCursor(len(m.entries) - 1)
		}
		return m, nil

	case fetchFailedMsg:
		if errors.Is(msg.err, store.ErrNotFound) {
			m.statusMsg = "Entry no longer exists"
			return m, m.load()
		}
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Entry deleted"
		}
		m.mode = modeList
		return m, m.load()

	case tea.KeyMsg:
		if m.mode == modeConfirmDelete {
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeConfirmDelete {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Select):
		entry, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.fetch(entry.ID)

	case key.Matches(msg, m.keys.Filter):
		m.filterIdx = (m.filterIdx + 1) % len(outcomeFilters)
		m.table.SetCursor(0)
		return m, m.load()

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.Selected(); !ok {
			return m, nil
		}
		m.cb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) buildConfirmForm() *huh.Form {
	entry, _ := m.Selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this history entry?").
				Description(entry.Summary(60)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.cb.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if entry, ok := m.Selected(); ok && m.cb.confirm {
			return m, m.delete(entry.ID)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (model.HistoryEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return model.HistoryEntry{}, false
	}
	return m.entries[i], true
}

// Filter returns the active outcome filter, or "" for all outcomes.
func (m Model) Filter() model.Outcome {
	if f := outcomeFilters[m.filterIdx]; f != nil {
		return *f
	}
	return ""
}

// View renders the history list.
func (m Model) View() string {
	if m.mode == modeConfirmDelete && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	title := "History"
	if f := m.Filter(); f != "" {
		title = fmt.Sprintf("History (%s)", f)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.store == nil:
		b.WriteString(theme.HelpStyle.Render("History is disabled. Set history.enabled in the config file."))
	case len(m.entries) == 0:
		b.WriteString(theme.HelpStyle.Render("No classification attempts recorded yet."))
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		b.WriteString(m.detail())
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// detail summarizes the entry under the cursor.
func (m Model) detail() string {
	entry, ok := m.Selected()
	if !ok {
		return ""
	}

	lines := []string{
		theme.OutcomeStyle(entry.Outcome).Render(string(entry.Outcome)) +
			theme.HelpStyle.Render(fmt.Sprintf("  %dms  %s", entry.DurationMS, entry.Endpoint)),
	}
	if entry.Message != "" {
		lines = append(lines, entry.Message)
	}
	for _, f := range entry.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Name, f.Display()))
	}
	if m.Filter() == "" && m.total > len(m.entries) {
		lines = append(lines, theme.HelpStyle.Render(
			fmt.Sprintf("showing %d of %d", len(m.entries), m.total)))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))

	h := height/2 - 2
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func columns(width int) []table.Column {
	summary := width - 4 - 16 - 16 - 8
	if summary < 20 {
		summary = 20
	}
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Outcome", Width: 16},
		{Title: "Email", Width: summary},
	}
}

func rows(entries []model.HistoryEntry) []table.Row {
	out := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		out = append(out, table.Row{
			e.CreatedAt.Local().Format("Jan 02 15:04:05"),
			string(e.Outcome),
			e.Summary(60),
		})
	}
	return out
}

func (m Model) load() tea.Cmd {
	s := m.store
	if s == nil {
		return nil
	}
	filter := store.HistoryFilter{
		Outcome: outcomeFilters[m.filterIdx],
		Limit:   m.limit,
	}
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := s.ListHistory(ctx, filter)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		total, err := s.CountHistory(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Entries: entries, Total: total}
	}
}

// fetch reloads the entry so the form gets the stored copy, not the
// possibly stale row held by the list.
func (m Model) fetch(id string) tea.Cmd {
	s := m.store
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		entry, err := s.GetHistoryEntry(context.Background(), id)
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		return SelectedMsg{Entry: *entry}
	}
}

func (m Model) delete(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return deletedMsg{err: s.DeleteHistoryEntry(context.Background(), id)}
	}
}
