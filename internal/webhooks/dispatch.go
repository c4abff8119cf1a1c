package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/vintagevault/pricing-service/internal/database"
)

var (
	// ErrNotConfigured is returned when no webhook signing secret is set.
	ErrNotConfigured = errors.New("stripe webhook secret not configured")

	// ErrSignature is returned when signature verification fails.
	ErrSignature = errors.New("webhook signature verification failed")
)

// Outcome summarizes one processed delivery.
type Outcome struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Duplicate bool   `json:"duplicate"`
}

// Processor verifies and dispatches Stripe webhook deliveries.
type Processor struct {
	db     database.Executor
	ledger *Ledger
	secret string
	logger zerolog.Logger
}

// NewProcessor creates a webhook processor. secret is the Stripe signing
// secret; an empty secret makes Process fail with ErrNotConfigured.
func NewProcessor(db database.Executor, secret string, logger zerolog.Logger) *Processor {
	return &Processor{
		db:     db,
		ledger: NewLedger(db),
		secret: secret,
		logger: logger.With().Str("component", "webhooks").Logger(),
	}
}

// Process verifies the payload signature, skips already-handled events,
// dispatches to the per-type handler, and records the outcome in the
// ledger. A handler failure is recorded and returned so the caller can
// answer 500 and let Stripe retry.
func (p *Processor) Process(ctx context.Context, payload []byte, signature string) (*Outcome, error) {
	if p.secret == "" {
		return nil, ErrNotConfigured
	}

	// Dashboard-pinned API versions rarely match the SDK's exactly; only
	// the signature matters here.
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		recordEvent("invalid", "signature_failed")
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	eventType := string(event.Type)
	logger := p.logger.With().Str("event_id", event.ID).Str("event_type", eventType).Logger()

	processed, err := p.ledger.IsEventProcessed(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if processed {
		logger.Info().Msg("Skipping already processed event")
		recordEvent(eventType, "duplicate")
		return &Outcome{EventID: event.ID, EventType: eventType, Duplicate: true}, nil
	}

	handlerErr := p.dispatch(ctx, event)
	if markErr := p.ledger.MarkEventProcessed(ctx, event.ID, eventType, handlerErr); markErr != nil {
		logger.Error().Err(markErr).Msg("Failed to record webhook event")
		if handlerErr == nil {
			handlerErr = markErr
		}
	}

	if handlerErr != nil {
		logger.Error().Err(handlerErr).Msg("Webhook handler failed")
		recordEvent(eventType, "failed")
		return nil, handlerErr
	}

	recordEvent(eventType, "processed")
	return &Outcome{EventID: event.ID, EventType: eventType}, nil
}

func (p *Processor) dispatch(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return p.handleCheckoutCompleted(ctx, event)
	case "payment_intent.succeeded":
		return p.handlePaymentSucceeded(ctx, event)
	case "payment_intent.payment_failed":
		return p.handlePaymentFailed(ctx, event)
	case "charge.refunded":
		return p.handleChargeRefunded(ctx, event)
	case "charge.dispute.created":
		return p.handleDisputeCreated(ctx, event)
	default:
		// Acknowledge unknown types so Stripe stops retrying them.
		p.logger.Info().Str("event_type", string(event.Type)).Msg("Ignoring unhandled event type")
		return nil
	}
}

func (p *Processor) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("error parsing checkout session: %w", err)
	}

	var paymentIntentID *string
	if session.PaymentIntent != nil {
		paymentIntentID = &session.PaymentIntent.ID
	}
	var email *string
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email = &session.CustomerDetails.Email
	}

	tag, err := p.db.Exec(ctx, `
		UPDATE orders
		SET status = $2,
		    payment_intent_id = COALESCE($3, payment_intent_id),
		    customer_email = COALESCE($4, customer_email),
		    amount_total = $5,
		    currency = $6,
		    paid_at = NOW(),
		    updated_at = NOW()
		WHERE stripe_session_id = $1
	`, session.ID, database.OrderStatusPaid, paymentIntentID, email,
		session.AmountTotal, string(session.Currency))
	if err != nil {
		return fmt.Errorf("error marking order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no order for checkout session %s", session.ID)
	}
	return nil
}

func (p *Processor) handlePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("error parsing payment intent: %w", err)
	}

	// Checkout completion usually arrives first; this keeps the order
	// consistent when intents are confirmed outside a checkout session.
	_, err := p.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, paid_at = COALESCE(paid_at, NOW()), updated_at = NOW()
		WHERE payment_intent_id = $1 AND status != $2
	`, intent.ID, database.OrderStatusPaid)
	if err != nil {
		return fmt.Errorf("error marking payment succeeded: %w", err)
	}
	return nil
}

func (p *Processor) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("error parsing payment intent: %w", err)
	}

	_, err := p.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE payment_intent_id = $1 AND status = $3
	`, intent.ID, database.OrderStatusFailed, database.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("error marking payment failed: %w", err)
	}
	return nil
}

func (p *Processor) handleChargeRefunded(ctx context.Context, event stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return fmt.Errorf("error parsing charge: %w", err)
	}
	if charge.PaymentIntent == nil {
		return fmt.Errorf("charge %s has no payment intent", charge.ID)
	}

	tag, err := p.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE payment_intent_id = $1
	`, charge.PaymentIntent.ID, database.OrderStatusRefunded)
	if err != nil {
		return fmt.Errorf("error marking order refunded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no order for payment intent %s", charge.PaymentIntent.ID)
	}
	return nil
}

func (p *Processor) handleDisputeCreated(ctx context.Context, event stripe.Event) error {
	var dispute stripe.Dispute
	if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
		return fmt.Errorf("error parsing dispute: %w", err)
	}
	if dispute.PaymentIntent == nil {
		return fmt.Errorf("dispute %s has no payment intent", dispute.ID)
	}

	_, err := p.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE payment_intent_id = $1
	`, dispute.PaymentIntent.ID, database.OrderStatusDisputed)
	if err != nil {
		return fmt.Errorf("error marking order disputed: %w", err)
	}
	return nil
}
