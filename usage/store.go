package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Store persists usage records in SQLite. The schema is owned by the
// migrations package.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record implements Recorder.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := sq.Insert("usage_records").
		Columns("provider", "model", "operation", "total_tokens", "prompt_tokens", "completion_tokens", "cost", "created_at").
		Values(rec.Provider, rec.Model, rec.Operation, rec.TotalTokens, rec.PromptTokens, rec.CompletionTokens, rec.Cost, createdAt.Unix())

	queryStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryStr, args...)
	return err
}

// Totals holds aggregated usage for one provider.
type Totals struct {
	Provider    string
	Calls       int64
	TotalTokens int64
	Cost        float64
}

// TotalsByProvider aggregates all recorded usage grouped by provider.
func (s *Store) TotalsByProvider(ctx context.Context) ([]Totals, error) {
	query := sq.Select("provider", "COUNT(*)", "COALESCE(SUM(total_tokens), 0)", "COALESCE(SUM(cost), 0)").
		From("usage_records").
		GroupBy("provider").
		OrderBy("provider")

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []Totals
	for rows.Next() {
		var t Totals
		if err := rows.Scan(&t.Provider, &t.Calls, &t.TotalTokens, &t.Cost); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// RecentRecords returns the most recent records, newest first.
func (s *Store) RecentRecords(ctx context.Context, limit int) ([]Record, error) {
	query := sq.Select("provider", "model", "operation", "total_tokens", "prompt_tokens", "completion_tokens", "cost", "created_at").
		From("usage_records").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	queryStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		if err := rows.Scan(&rec.Provider, &rec.Model, &rec.Operation, &rec.TotalTokens, &rec.PromptTokens, &rec.CompletionTokens, &rec.Cost, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ Recorder = (*Store)(nil)
