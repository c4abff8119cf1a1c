package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintagevault/pricing-service/internal/webhooks"
)

func newWebhookRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewWebhookHandler(webhooks.NewProcessor(mock, secret, zerolog.Nop()), zerolog.Nop())
	router.POST("/webhooks/stripe", h.HandleStripe)
	return router
}

func postStripe(t *testing.T, router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", "/webhooks/stripe", bytes.NewBuffer(payload))
	require.NoError(t, err)
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleStripe_MissingSignatureHeader(t *testing.T) {
	router := newWebhookRouter(t, "whsec_test")

	w := postStripe(t, router, []byte(`{}`), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Stripe-Signature")
}

func TestHandleStripe_NotConfigured(t *testing.T) {
	router := newWebhookRouter(t, "")

	w := postStripe(t, router, []byte(`{}`), "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleStripe_BadSignature(t *testing.T) {
	router := newWebhookRouter(t, "whsec_test")

	w := postStripe(t, router, []byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
}
