package repository

import (
	"context"
	"fmt"
	"time"
)

type OutboxEvent struct {
	ID          int64
	AggregateId string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Timestamps are stored as unix milliseconds so both drivers scan them the
// same way.

func (r *SQLRepository) InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	query := `INSERT INTO outbox (aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, aggregateID, eventType, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox
	          WHERE processed_at IS NULL
	          ORDER BY id
	          LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var (
			e         OutboxEvent
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.AggregateId, &e.EventType, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		e.Payload = []byte(payload)
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *SQLRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	query := `UPDATE outbox SET processed_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UnixMilli(), id); err != nil {
		return fmt.Errorf("mark outbox event %d processed: %w", id, err)
	}
	return nil
}

// DeleteProcessedBefore prunes published events older than cutoff.
func (r *SQLRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune outbox: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune outbox: %w", err)
	}
	return n, nil
}
