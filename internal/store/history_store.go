package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/case-classifier/internal/model"
)

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// historyRow mirrors the history table.
type historyRow struct {
	ID         string    `db:"id"`
	Body       string    `db:"body"`
	Outcome    string    `db:"outcome"`
	Message    string    `db:"message"`
	Fields     string    `db:"fields"`
	Endpoint   string    `db:"endpoint"`
	DurationMS int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r historyRow) toEntry() (model.HistoryEntry, error) {
	entry := model.HistoryEntry{
		ID:         r.ID,
		Body:       r.Body,
		Outcome:    model.Outcome(r.Outcome),
		Message:    r.Message,
		Endpoint:   r.Endpoint,
		DurationMS: r.DurationMS,
		CreatedAt:  r.CreatedAt,
	}
	if r.Fields != "" {
		if err := json.Unmarshal([]byte(r.Fields), &entry.Fields); err != nil {
			return model.HistoryEntry{}, fmt.Errorf("unmarshaling fields for %s: %w", r.ID, err)
		}
	}
	return entry, nil
}

// RecordAttempt inserts a completed attempt, assigning an ID and timestamp
// when they are unset.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, entry model.HistoryEntry) error {
	if entry.Outcome == "" {
		return fmt.Errorf("history entry outcome must not be empty")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	fields := entry.Fields
	if fields == nil {
		fields = []model.Field{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling fields for %s: %w", entry.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (
			id, body, outcome, message, fields,
			endpoint, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Body, string(entry.Outcome), entry.Message, string(fieldsJSON),
		entry.Endpoint, entry.DurationMS, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry %s: %w", entry.ID, err)
	}

	if s.retention > 0 {
		if _, err := s.PruneHistory(ctx, s.retention); err != nil {
			return err
		}
	}

	return nil
}

// ListHistory returns entries newest first.
func (s *SQLiteStore) ListHistory(
	ctx context.Context,
	filter HistoryFilter,
) ([]model.HistoryEntry, error) {
	var conditions []string
	var args []interface{}

	if filter.Outcome != nil {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(*filter.Outcome))
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(body LIKE ? OR message LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM history"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// GetHistoryEntry retrieves a single entry by ID.
func (s *SQLiteStore) GetHistoryEntry(
	ctx context.Context,
	id string,
) (*model.HistoryEntry, error) {
	var row historyRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM history WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting history entry %s: %w", id, err)
	}

	entry, err := row.toEntry()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteHistoryEntry removes an entry by ID.
func (s *SQLiteStore) DeleteHistoryEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting history entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete of %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneHistory deletes all but the newest keep entries and returns the
// number removed.
func (s *SQLiteStore) PruneHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}

// CountHistory returns the number of stored entries.
func (s *SQLiteStore) CountHistory(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM history"); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}
