// Package webhooks verifies, deduplicates, and dispatches Stripe webhook
// deliveries. Every delivery is recorded in an append-only ledger keyed
// on the Stripe event ID, so redeliveries become no-ops.
package webhooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vintagevault/pricing-service/internal/database"
)

// Ledger records which Stripe events have been handled. Rows are never
// deleted; a failed handler leaves processed=false so Stripe's retry can
// run the handler again.
type Ledger struct {
	db database.Executor
}

// NewLedger creates a ledger backed by db.
func NewLedger(db database.Executor) *Ledger {
	return &Ledger{db: db}
}

// Event returns the ledger row for a Stripe event ID, or nil when the
// event has never been delivered.
func (l *Ledger) Event(ctx context.Context, stripeEventID string) (*database.StripeWebhookEvent, error) {
	var e database.StripeWebhookEvent
	err := l.db.QueryRow(ctx, `
		SELECT id, stripe_event_id, event_type, processed, error, created_at, processed_at
		FROM stripe_webhook_events
		WHERE stripe_event_id = $1
	`, stripeEventID).Scan(
		&e.ID, &e.StripeEventID, &e.EventType, &e.Processed, &e.Error,
		&e.CreatedAt, &e.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying webhook ledger: %w", err)
	}
	return &e, nil
}

// IsEventProcessed reports whether the event was already handled
// successfully. Unknown events and previously failed events return false.
func (l *Ledger) IsEventProcessed(ctx context.Context, stripeEventID string) (bool, error) {
	e, err := l.Event(ctx, stripeEventID)
	if err != nil {
		return false, err
	}
	return e != nil && e.Processed, nil
}

// MarkEventProcessed upserts the ledger row for an event. A nil
// handlerErr records success; otherwise the error text is kept and the
// row stays retryable.
func (l *Ledger) MarkEventProcessed(ctx context.Context, stripeEventID, eventType string, handlerErr error) error {
	var errText *string
	if handlerErr != nil {
		s := handlerErr.Error()
		errText = &s
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO stripe_webhook_events (
			id, stripe_event_id, event_type, processed, error, created_at, processed_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (stripe_event_id) DO UPDATE SET
			processed = EXCLUDED.processed,
			error = EXCLUDED.error,
			processed_at = NOW()
	`, uuid.New().String(), stripeEventID, eventType, handlerErr == nil, errText)
	if err != nil {
		return fmt.Errorf("error recording webhook event: %w", err)
	}
	return nil
}
