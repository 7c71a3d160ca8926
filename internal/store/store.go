package store

import (
	"context"

	"github.com/nhle/case-classifier/internal/model"
)

// HistoryFilter controls filtering and pagination for history queries.
type HistoryFilter struct {
	Outcome *model.Outcome // nil for all outcomes
	Query   *string        // substring match on body and message
	Limit   int
	Offset  int
}

// Store defines the persistence interface for classification history.
// Entries are only ever listed for display; nothing reads them back to
// answer a submit.
type Store interface {
	RecordAttempt(ctx context.Context, entry model.HistoryEntry) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]model.HistoryEntry, error)
	GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error)
	DeleteHistoryEntry(ctx context.Context, id string) error
	PruneHistory(ctx context.Context, keep int) (int64, error)
	CountHistory(ctx context.Context) (int, error)
}
