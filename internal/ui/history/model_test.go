package history

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/tests/testutil"
)

func seeded(t *testing.T) Model {
	t.Helper()
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, s.RecordAttempt(ctx, model.HistoryEntry{
		Body: "older email", Outcome: model.OutcomeTransportError, CreatedAt: base,
	}))
	require.NoError(t, s.RecordAttempt(ctx, model.HistoryEntry{
		Body:      "newer email\nsecond line",
		Outcome:   model.OutcomeSucceeded,
		Fields:    []model.Field{{Name: "category", Value: "Billing", Present: true}},
		CreatedAt: base.Add(time.Minute),
	}))

	m := New(s, keys.DefaultKeyMap(), 50, 100, 30)
	return load(t, m)
}

// load runs the model's load command and feeds the result back.
func load(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.Init()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestLoadListsNewestFirst(t *testing.T) {
	m := seeded(t)

	entry, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "newer email\nsecond line", entry.Body)

	view := m.View()
	assert.Contains(t, view, "newer email")
	assert.NotContains(t, view, "second line")
	assert.Contains(t, view, "category: Billing")
}

func TestEnterSelectsEntry(t *testing.T) {
	m := seeded(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(SelectedMsg)
	require.True(t, ok)
	assert.Equal(t, model.OutcomeSucceeded, msg.Entry.Outcome)
	assert.Equal(t, "newer email\nsecond line", msg.Entry.Body)
	require.Len(t, msg.Entry.Fields, 1)
	assert.Equal(t, "Billing", msg.Entry.Fields[0].Value)
}

func TestEnterOnRemovedEntryReloads(t *testing.T) {
	m := seeded(t)
	entry, ok := m.Selected()
	require.True(t, ok)
	require.NoError(t, m.store.DeleteHistoryEntry(context.Background(), entry.ID))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, fetchFailedMsg{}, msg)

	m, cmd = m.Update(msg)
	assert.Contains(t, m.View(), "Entry no longer exists")
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())
	assert.Len(t, m.entries, 1)
}

func TestEscCloses(t *testing.T) {
	m := seeded(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, CloseMsg{}, cmd())
}

func TestFilterCyclesOutcomes(t *testing.T) {
	m := seeded(t)
	assert.Equal(t, model.Outcome(""), m.Filter())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, model.OutcomeSucceeded, m.Filter())
	require.Len(t, m.entries, 1)
	assert.Equal(t, "newer email\nsecond line", m.entries[0].Body)
}

func TestNilStoreShowsNotice(t *testing.T) {
	m := New(nil, keys.DefaultKeyMap(), 50, 100, 30)

	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "History is disabled")
}
