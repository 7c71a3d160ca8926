package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionStatusIsExclusive(t *testing.T) {
	res := &ClassificationResult{Status: StatusSuccess}

	ok := Succeeded(res)
	got, isResult := ok.Result()
	assert.True(t, isResult)
	assert.Same(t, res, got)
	_, _, isFailure := ok.Failure()
	assert.False(t, isFailure)

	failed := Failed(ErrorRemoteService, "invalid payload")
	_, isResult = failed.Result()
	assert.False(t, isResult)
	kind, msg, isFailure := failed.Failure()
	assert.True(t, isFailure)
	assert.Equal(t, ErrorRemoteService, kind)
	assert.Equal(t, "invalid payload", msg)

	assert.Equal(t, PhaseIdle, Idle().Phase())
	assert.True(t, Pending().IsPending())
	assert.Equal(t, "pending", Pending().Phase().String())
}

func TestFieldDisplay(t *testing.T) {
	assert.Equal(t, "-", Field{Name: "notes"}.Display())
	assert.Equal(t, "-", Field{Name: "notes", Present: true}.Display())
	assert.Equal(t, "high", Field{Name: "priority", Value: "high", Present: true}.Display())
}

func TestClassificationResultSetKeepsFirstPosition(t *testing.T) {
	r := &ClassificationResult{}
	r.Set(Field{Name: "category", Value: "billing", Present: true})
	r.Set(Field{Name: "priority", Value: "low", Present: true})
	r.Set(Field{Name: "category", Value: "cancellation", Present: true})

	assert.Equal(t, [][]string{
		{"category", "cancellation"},
		{"priority", "low"},
	}, r.Rows())

	f, ok := r.Value("priority")
	assert.True(t, ok)
	assert.Equal(t, "low", f.Value)
}

func TestHistoryEntrySummary(t *testing.T) {
	e := HistoryEntry{Body: "Hello, please cancel my order.\nThanks"}
	assert.Equal(t, "Hello, please cancel my order.", e.Summary(80))
	assert.Equal(t, "Hello…", e.Summary(6))
}
