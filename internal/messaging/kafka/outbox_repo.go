package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	// OutboxStatusDead rows exhausted their attempts and are never claimed again.
	OutboxStatusDead = "dead"
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
	CreatedAt     time.Time
}

// NewOutboxEvent encodes payload into a pending outbox row.
func NewOutboxEvent(requestID, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       data,
		Status:        OutboxStatusPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	// ClaimPending leases up to limit due rows. A claimed row stays invisible to
	// other relays for lease unless it is marked first.
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	// MarkFailed schedules a retry, or buries the row once maxAttempts is reached.
	MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error
}

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

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	query := `
INSERT INTO outbox_events (
	id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		event.ID, event.RequestID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

const claimPendingQuery = `
WITH due AS (
	SELECT id FROM outbox_events
	WHERE status IN ($1, $2)
		AND (next_retry_at IS NULL OR next_retry_at <= NOW())
	ORDER BY created_at ASC
	LIMIT $3
	FOR UPDATE SKIP LOCKED
)
UPDATE outbox_events o
SET next_retry_at = NOW() + make_interval(secs => $4), updated_at = NOW()
FROM due
WHERE o.id = due.id
RETURNING
	o.id::text, o.request_id, o.aggregate_type, o.aggregate_id::text,
	o.event_type, o.topic, o.payload, o.status, o.retry_count, o.created_at
`

func (r *outboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, claimPendingQuery,
		OutboxStatusPending, OutboxStatusFailed, limit, lease.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OutboxEvent, 0, limit)
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID,
			&e.EventType, &e.Topic, &e.Payload, &e.Status, &e.RetryCount, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// RETURNING has no order; keep per-aggregate publish order.
	slices.SortStableFunc(events, func(a, b OutboxEvent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	query := `
UPDATE outbox_events
SET
	status = $2,
	processed_at = NOW(),
	error_message = NULL,
	updated_at = NOW()
WHERE id = $1
`
	return r.expectOne(r.db.ExecContext(ctx, query, id, OutboxStatusSent))
}

// MarkFailed backs off linearly, capped at 150 seconds.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	query := `
UPDATE outbox_events
SET
	retry_count = retry_count + 1,
	status = CASE WHEN retry_count + 1 >= $4 THEN $5 ELSE $2 END,
	error_message = LEFT($3, 500),
	next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
	updated_at = NOW()
WHERE id = $1
`
	return r.expectOne(r.db.ExecContext(ctx, query,
		id, OutboxStatusFailed, reason, maxAttempts, OutboxStatusDead))
}

var ErrOutboxEventNotFound = errors.New("outbox event not found")

func (r *outboxRepository) expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOutboxEventNotFound
	}
	return nil
}

func (r *outboxRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if event.EventType == "" {
		return errors.New("outbox event type is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	if event.Status != OutboxStatusPending {
		return fmt.Errorf("new outbox rows must be %s, got %q", OutboxStatusPending, event.Status)
	}
	return nil
}
