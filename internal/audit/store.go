package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/riskpanes/internal/db"
	"github.com/ziadkadry99/riskpanes/internal/risk"
)

// Store reads and writes audit entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO toggle_audit (id, timestamp, page_id, category, control_id, value)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.DateTime),
		entry.PageID,
		entry.Category,
		entry.ControlID,
		string(entry.Value),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// RecordChange logs a risk:changed event raised on page pageID. Failures
// are logged and otherwise ignored so a broken trail never blocks a toggle.
func (s *Store) RecordChange(ctx context.Context, pageID string, ev risk.ChangeEvent) {
	err := s.Log(context.WithoutCancel(ctx), Entry{
		PageID:    pageID,
		Category:  ev.Category,
		ControlID: ev.ID,
		Value:     ev.Value,
	})
	if err != nil {
		slog.Warn("recording toggle", "page", pageID, "category", ev.Category, "id", ev.ID, "error", err)
	}
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, page_id, category, control_id, value
		FROM toggle_audit WHERE id = ?`, id)
	return scanInto(row)
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ControlID != "" {
		clauses = append(clauses, "control_id = ?")
		args = append(args, filter.ControlID)
	}
	if filter.PageID != "" {
		clauses = append(clauses, "page_id = ?")
		args = append(args, filter.PageID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, page_id, category, control_id, value FROM toggle_audit"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	// seq breaks ties between entries logged within the same second.
	query += " ORDER BY timestamp DESC, seq DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all entries older than the given time and returns
// the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM toggle_audit WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e     Entry
		ts    string
		value string
	)
	if err := sc.Scan(&e.ID, &ts, &e.PageID, &e.Category, &e.ControlID, &value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit entry not found: %w", err)
		}
		return nil, err
	}
	e.Value = risk.Status(value)

	if t, err := time.Parse(time.DateTime, ts); err == nil {
		e.Timestamp = t
	} else if t, err := time.Parse(time.RFC3339, ts); err == nil {
		e.Timestamp = t
	}
	return &e, nil
}
