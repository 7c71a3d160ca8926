package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/case-classifier/internal/controller"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/ui"
	"github.com/nhle/case-classifier/internal/ui/history"
	"github.com/nhle/case-classifier/internal/ui/importer"
)

type okClassifier struct{}

func (okClassifier) Classify(context.Context, string) (*model.ClassificationResult, error) {
	res := &model.ClassificationResult{Status: model.StatusSuccess}
	res.Set(model.Field{Name: "category", Value: "Billing", Present: true})
	return res, nil
}

func newApp(t *testing.T) (Model, *controller.Controller) {
	t.Helper()
	ctrl := controller.New(okClassifier{}, nil, controller.Options{DiscardStale: true})
	m := New(Options{Config: &model.AppConfig{}, Controller: ctrl})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestViewShowsTitleAndForm(t *testing.T) {
	m, _ := newApp(t)

	view := m.View()
	assert.Contains(t, view, ui.Title)
	assert.Contains(t, view, "Email Body")
	assert.Contains(t, view, "ready")
}

func TestHelpToggle(t *testing.T) {
	m, _ := newApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, ViewHelp, m.CurrentView())
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewForm, m.CurrentView())
}

func TestHistorySelectionLoadsBody(t *testing.T) {
	m, ctrl := newApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, ViewHistory, m.CurrentView())

	m, _ = update(t, m, history.SelectedMsg{Entry: model.HistoryEntry{Body: "old email"}})

	assert.Equal(t, ViewForm, m.CurrentView())
	assert.Equal(t, "old email", ctrl.Body())
	assert.Equal(t, model.PhaseIdle, ctrl.Status().Phase())
	assert.Contains(t, m.View(), "Loaded email from history")
}

func TestImportedBodyLoadsIntoForm(t *testing.T) {
	m, ctrl := newApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, ViewImport, m.CurrentView())

	m, _ = update(t, m, importer.ImportedMsg{Subject: "Refund", Body: "please refund"})

	assert.Equal(t, ViewForm, m.CurrentView())
	assert.Equal(t, "please refund", ctrl.Body())
}

func TestResponseReachesFormFromOtherViews(t *testing.T) {
	m, ctrl := newApp(t)
	ctrl.UpdateBody("hello")
	cmd := ctrl.Submit()
	require.NotNil(t, cmd)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m, _ = update(t, m, cmd())

	assert.Equal(t, model.PhaseSucceeded, ctrl.Status().Phase())

	m, _ = update(t, m, history.CloseMsg{})
	assert.Contains(t, m.View(), "Billing")
}
