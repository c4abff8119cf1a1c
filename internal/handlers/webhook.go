package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vintagevault/pricing-service/internal/webhooks"
)

// maxWebhookBody caps webhook payload size. Stripe events are small;
// anything larger is not from Stripe.
const maxWebhookBody = 1 << 20

// WebhookHandler receives Stripe webhook deliveries.
type WebhookHandler struct {
	processor *webhooks.Processor
	logger    zerolog.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(processor *webhooks.Processor, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger.With().Str("component", "webhook-handler").Logger(),
	}
}

// HandleStripe verifies and processes one Stripe delivery
// POST /webhooks/stripe
//
// Responses drive Stripe's retry behavior: 2xx acknowledges, 4xx drops,
// 5xx retries.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing Stripe-Signature header"})
		return
	}

	outcome, err := h.processor.Process(c.Request.Context(), payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, webhooks.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook processing not configured"})
		case errors.Is(err, webhooks.ErrSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		default:
			h.logger.Error().Err(err).Msg("Webhook processing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		}
		return
	}

	if outcome.Duplicate {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
