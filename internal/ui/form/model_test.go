package form

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/case-classifier/internal/classifier"
	"github.com/nhle/case-classifier/internal/controller"
	"github.com/nhle/case-classifier/internal/keys"
	"github.com/nhle/case-classifier/internal/model"
)

type stubClassifier struct {
	result *model.ClassificationResult
	err    error
}

func (s stubClassifier) Classify(context.Context, string) (*model.ClassificationResult, error) {
	return s.result, s.err
}

func newForm(c controller.Classifier) (Model, *controller.Controller) {
	ctrl := controller.New(c, nil, controller.Options{DiscardStale: true})
	return New(ctrl, keys.DefaultKeyMap(), 100, 40), ctrl
}

// classified runs the batch returned by Submit and picks out the
// classification result.
func classified(t *testing.T, cmd tea.Cmd) controller.ClassifiedMsg {
	t.Helper()
	require.NotNil(t, cmd)

	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	for _, msg := range msgs {
		if cm, ok := msg.(controller.ClassifiedMsg); ok {
			return cm
		}
	}
	t.Fatal("no ClassifiedMsg in batch")
	return controller.ClassifiedMsg{}
}

func TestTypingUpdatesBody(t *testing.T) {
	m, ctrl := newForm(stubClassifier{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("refund")})

	assert.Equal(t, "refund", ctrl.Body())
	assert.True(t, ctrl.CanSubmit())
}

func TestSubmitKeyIgnoredWhileBodyBlank(t *testing.T) {
	m, ctrl := newForm(stubClassifier{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, model.PhaseIdle, ctrl.Status().Phase())
	assert.Contains(t, m.View(), SubmitLabel)
}

func TestSubmitRendersResults(t *testing.T) {
	result := &model.ClassificationResult{Status: model.StatusSuccess}
	result.Set(model.Field{Name: "category", Value: "Billing", Present: true})
	result.Set(model.Field{Name: "urgency", Present: false})

	m, ctrl := newForm(stubClassifier{result: result})
	m.SetBody("Please refund my order")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, ctrl.Status().IsPending())
	assert.Contains(t, m.View(), PendingLabel)

	m, _ = m.Update(classified(t, cmd))

	view := m.View()
	assert.Equal(t, model.PhaseSucceeded, ctrl.Status().Phase())
	assert.Contains(t, view, "Classification Results")
	assert.Contains(t, view, "Billing")
	assert.Contains(t, view, SubmitLabel)
}

func TestTransportFailureShowsBanner(t *testing.T) {
	m, _ := newForm(stubClassifier{err: &classifier.TransportError{Err: errors.New("dial tcp: refused")}})
	m.SetBody("hello")

	cmd := m.Submit()
	m, _ = m.Update(classified(t, cmd))

	view := m.View()
	assert.Contains(t, view, classifier.MessageNetwork)
	assert.NotContains(t, view, "refused")
	assert.NotContains(t, view, "Classification Results")
}

func TestClearKeyResetsForm(t *testing.T) {
	m, ctrl := newForm(stubClassifier{err: &classifier.RemoteError{StatusCode: 400, Message: "bad input"}})
	m.SetBody("hello")
	m, _ = m.Update(classified(t, m.Submit()))
	require.Contains(t, m.View(), "bad input")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, "", ctrl.Body())
	assert.Equal(t, model.PhaseIdle, ctrl.Status().Phase())
	assert.NotContains(t, m.View(), "bad input")
}

func TestSetBodyKeepsStatus(t *testing.T) {
	m, ctrl := newForm(stubClassifier{err: &classifier.RemoteError{StatusCode: 500, Message: classifier.MessageRemoteFallback}})
	m.SetBody("first")
	m, _ = m.Update(classified(t, m.Submit()))

	m.SetBody("second")

	assert.Equal(t, "second", ctrl.Body())
	assert.Equal(t, model.PhaseFailed, ctrl.Status().Phase())
}
