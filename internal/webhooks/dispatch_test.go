package webhooks

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func checkoutCompletedPayload(eventID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_123",
				"amount_total": 129900,
				"currency": "usd",
				"payment_intent": "pi_test_456",
				"customer_details": {"email": "buyer@example.com"}
			}
		}
	}`, eventID))
}

var ledgerColumns = []string{"id", "stripe_event_id", "event_type", "processed", "error", "created_at", "processed_at"}

func ledgerRow(eventID, eventType string, processed bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(ledgerColumns).
		AddRow("row-1", eventID, eventType, processed, (*string)(nil), now, now)
}

func newTestProcessor(t *testing.T, secret string) (*Processor, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewProcessor(mock, secret, zerolog.Nop()), mock
}

func TestProcess_MissingSecret(t *testing.T) {
	p, _ := newTestProcessor(t, "")

	_, err := p.Process(context.Background(), []byte("{}"), "t=1,v1=abc")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProcess_BadSignature(t *testing.T) {
	p, _ := newTestProcessor(t, testSecret)

	_, err := p.Process(context.Background(), checkoutCompletedPayload("evt_1"), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrSignature)
}

func TestProcess_CheckoutCompleted(t *testing.T) {
	p, mock := newTestProcessor(t, testSecret)

	mock.ExpectQuery(`FROM stripe_webhook_events`).
		WithArgs("evt_1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`UPDATE orders`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO stripe_webhook_events`).
		WithArgs(pgxmock.AnyArg(), "evt_1", "checkout.session.completed", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	payload := checkoutCompletedPayload("evt_1")
	outcome, err := p.Process(context.Background(), payload, signPayload(t, payload))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", outcome.EventID)
	assert.False(t, outcome.Duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_DuplicateDelivery(t *testing.T) {
	p, mock := newTestProcessor(t, testSecret)

	mock.ExpectQuery(`FROM stripe_webhook_events`).
		WithArgs("evt_2").
		WillReturnRows(ledgerRow("evt_2", "checkout.session.completed", true))

	payload := checkoutCompletedPayload("evt_2")
	outcome, err := p.Process(context.Background(), payload, signPayload(t, payload))
	require.NoError(t, err)

	// No order mutation and no ledger write expected on a duplicate.
	assert.True(t, outcome.Duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_FailedEventIsRetryable(t *testing.T) {
	p, mock := newTestProcessor(t, testSecret)

	// First delivery: no matching order, handler fails, failure recorded.
	mock.ExpectQuery(`FROM stripe_webhook_events`).
		WithArgs("evt_3").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`UPDATE orders`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`INSERT INTO stripe_webhook_events`).
		WithArgs(pgxmock.AnyArg(), "evt_3", "checkout.session.completed", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	payload := checkoutCompletedPayload("evt_3")
	_, err := p.Process(context.Background(), payload, signPayload(t, payload))
	require.Error(t, err)

	// Retry: ledger has processed=false, so the handler runs again.
	mock.ExpectQuery(`FROM stripe_webhook_events`).
		WithArgs("evt_3").
		WillReturnRows(ledgerRow("evt_3", "checkout.session.completed", false))
	mock.ExpectExec(`UPDATE orders`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO stripe_webhook_events`).
		WithArgs(pgxmock.AnyArg(), "evt_3", "checkout.session.completed", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	outcome, err := p.Process(context.Background(), payload, signPayload(t, payload))
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_UnknownEventTypeAcked(t *testing.T) {
	p, mock := newTestProcessor(t, testSecret)

	mock.ExpectQuery(`FROM stripe_webhook_events`).
		WithArgs("evt_4").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO stripe_webhook_events`).
		WithArgs(pgxmock.AnyArg(), "evt_4", "customer.created", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	payload := []byte(`{"id": "evt_4", "type": "customer.created", "data": {"object": {}}}`)
	outcome, err := p.Process(context.Background(), payload, signPayload(t, payload))
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcess_RefundWithoutIntentFails(t *testing.T) {
	p, mock := newTestProcessor(t, testSecret)

	mock.ExpectQuery(`FROM stripe_webhook_events`).
		WithArgs("evt_5").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO stripe_webhook_events`).
		WithArgs(pgxmock.AnyArg(), "evt_5", "charge.refunded", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	payload := []byte(`{"id": "evt_5", "type": "charge.refunded", "data": {"object": {"id": "ch_1"}}}`)
	_, err := p.Process(context.Background(), payload, signPayload(t, payload))
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
