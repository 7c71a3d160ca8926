package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/store"
	"github.com/nhle/case-classifier/tests/testutil"
)

func entryAt(body string, outcome model.Outcome, at time.Time) model.HistoryEntry {
	return model.HistoryEntry{
		Body:      body,
		Outcome:   outcome,
		Endpoint:  "http://localhost:5000/classify",
		CreatedAt: at,
	}
}

func TestRecordAndListNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := entryAt("first", model.OutcomeSucceeded, base)
	first.Fields = []model.Field{
		{Name: "category", Value: "cancellation", Present: true},
		{Name: "notes"},
	}
	require.NoError(t, s.RecordAttempt(ctx, first))

	second := entryAt("second", model.OutcomeRemoteError, base.Add(time.Minute))
	second.Message = "invalid payload"
	require.NoError(t, s.RecordAttempt(ctx, second))

	entries, err := s.ListHistory(ctx, store.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "second", entries[0].Body)
	assert.Equal(t, "invalid payload", entries[0].Message)
	assert.Equal(t, "first", entries[1].Body)
	assert.NotEmpty(t, entries[1].ID)
	assert.Equal(t, first.Fields, entries[1].Fields)
	assert.True(t, entries[1].CreatedAt.Equal(base))
}

func TestListHistoryFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordAttempt(ctx, entryAt("refund for order 12", model.OutcomeSucceeded, base)))
	require.NoError(t, s.RecordAttempt(ctx, entryAt("shipping delay", model.OutcomeTransportError, base.Add(time.Second))))
	require.NoError(t, s.RecordAttempt(ctx, entryAt("refund again", model.OutcomeRemoteError, base.Add(2*time.Second))))

	q := "refund"
	entries, err := s.ListHistory(ctx, store.HistoryFilter{Query: &q})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	outcome := model.OutcomeTransportError
	entries, err = s.ListHistory(ctx, store.HistoryFilter{Outcome: &outcome})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shipping delay", entries[0].Body)

	entries, err = s.ListHistory(ctx, store.HistoryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shipping delay", entries[0].Body)
}

func TestGetAndDeleteHistoryEntry(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := entryAt("hello", model.OutcomeSucceeded, time.Now())
	e.ID = "fixed-id"
	require.NoError(t, s.RecordAttempt(ctx, e))

	got, err := s.GetHistoryEntry(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	assert.Empty(t, got.Fields)

	require.NoError(t, s.DeleteHistoryEntry(ctx, "fixed-id"))
	_, err = s.GetHistoryEntry(ctx, "fixed-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteHistoryEntry(ctx, "fixed-id"), store.ErrNotFound)
}

func TestRetentionPrunesOldest(t *testing.T) {
	s := testutil.NewTestStore(t)
	s.SetRetention(2)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, body := range []string{"a", "b", "c"} {
		require.NoError(t, s.RecordAttempt(ctx, entryAt(body, model.OutcomeSucceeded, base.Add(time.Duration(i)*time.Second))))
	}

	n, err := s.CountHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.ListHistory(ctx, store.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, "c", entries[0].Body)
	assert.Equal(t, "b", entries[1].Body)
}

func TestRecordAttemptRequiresOutcome(t *testing.T) {
	s := testutil.NewTestStore(t)
	err := s.RecordAttempt(context.Background(), model.HistoryEntry{Body: "x"})
	assert.Error(t, err)
}
