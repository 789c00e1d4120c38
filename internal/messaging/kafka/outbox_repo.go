package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

const (
	// MaxOutboxRetries is the number of failed publishes after which a row is
	// left in failed for manual inspection.
	MaxOutboxRetries = 10

	// outboxRetryBaseSeconds doubles per attempt, capped at 2^6 multiples.
	outboxRetryBaseSeconds = 5

	maxErrorMessageLen = 500
)

type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

const insertOutboxSQL = `
INSERT INTO outbox_events (
	id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status,
	retry_count, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, NOW(), NOW())`

const listPendingOutboxSQL = `
SELECT
	id::text,
	COALESCE(request_id, ''),
	aggregate_type,
	aggregate_id::text,
	event_type,
	topic,
	payload,
	status,
	retry_count,
	COALESCE(next_retry_at, created_at)
FROM outbox_events
WHERE status IN ($1, $2)
	AND retry_count < $3
	AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY created_at ASC
LIMIT $4`

const markSentOutboxSQL = `
UPDATE outbox_events
SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW()
WHERE id = $1`

const markFailedOutboxSQL = `
UPDATE outbox_events
SET
	status = $2,
	retry_count = retry_count + 1,
	error_message = $3,
	next_retry_at = NOW() + make_interval(secs => $4 * POWER(2, LEAST(retry_count, 6))),
	updated_at = NOW()
WHERE id = $1`

type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// outboxRepository speaks plain database/sql so Create can join the
// caller's *sql.Tx and the row commits atomically with the domain change.
type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) conn() sqlExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	_, err := r.conn().ExecContext(ctx, insertOutboxSQL,
		event.ID, event.RequestID, event.AggregateType, event.AggregateID,
		event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.conn().QueryContext(ctx, listPendingOutboxSQL,
		OutboxStatusPending, OutboxStatusFailed, MaxOutboxRetries, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OutboxEvent, 0, limit)
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID, &e.EventType,
			&e.Topic, &e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.conn().ExecContext(ctx, markSentOutboxSQL, id, OutboxStatusSent)
	return err
}

// MarkFailed bumps retry_count and schedules the next attempt with
// exponential backoff.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.conn().ExecContext(ctx, markFailedOutboxSQL,
		id, OutboxStatusFailed, truncateReason(reason), outboxRetryBaseSeconds,
	)
	return err
}

func truncateReason(reason string) string {
	if len(reason) <= maxErrorMessageLen {
		return reason
	}
	cut := reason[:maxErrorMessageLen]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func ValidateOutboxEvent(event OutboxEvent) error {
	switch {
	case event.ID == "":
		return errors.New("outbox id is required")
	case event.AggregateType == "" || event.AggregateID == "":
		return errors.New("outbox aggregate is required")
	case event.EventType == "":
		return errors.New("outbox event type is required")
	case event.Topic == "":
		return errors.New("outbox topic is required")
	case len(event.Payload) == 0:
		return errors.New("outbox payload is required")
	}

	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
