package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vintagevault/pricing-service/internal/comps"
	"github.com/vintagevault/pricing-service/internal/pricing"
)

// PricingHandler serves price calculation endpoints.
type PricingHandler struct {
	comps  *comps.Store
	logger zerolog.Logger
}

// NewPricingHandler creates a pricing handler. compStore may be nil when
// historical comp lookup is unavailable.
func NewPricingHandler(compStore *comps.Store, logger zerolog.Logger) *PricingHandler {
	return &PricingHandler{
		comps:  compStore,
		logger: logger.With().Str("component", "pricing-handler").Logger(),
	}
}

// CalculateRequest is the full calculation request. When UseStoredComps
// is set and no explicit comps are given, imported comparable sales for
// the category are used as historical evidence.
type CalculateRequest struct {
	ProductTitle    string                   `json:"productTitle" binding:"required"`
	Category        string                   `json:"category" binding:"required"`
	Condition       pricing.Condition        `json:"condition" binding:"required"`
	Rarity          pricing.Rarity           `json:"rarity" binding:"required"`
	EstimatedAge    string                   `json:"estimatedAge"`
	AIPrice         float64                  `json:"aiPrice" binding:"required"`
	AIConfidence    float64                  `json:"aiConfidence"`
	HistoricalComps []float64                `json:"historicalComps"`
	MarketTrendData *pricing.MarketTrendData `json:"marketTrendData"`
	UseStoredComps  bool                     `json:"useStoredComps"`
}

// Calculate runs the full multi-source price calculation
// POST /internal/pricing/calculate
func (h *PricingHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	historicalComps := req.HistoricalComps
	if len(historicalComps) == 0 && req.UseStoredComps && h.comps != nil {
		stored, err := h.comps.PricesForCategory(c.Request.Context(), req.Category, 25)
		if err != nil {
			h.logger.Error().Err(err).Str("category", req.Category).Msg("Failed to load stored comps")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comparable sales"})
			return
		}
		historicalComps = stored
	}

	result, err := pricing.CalculatePriceWithConfidence(&pricing.Input{
		ProductTitle:    req.ProductTitle,
		Category:        req.Category,
		Condition:       req.Condition,
		Rarity:          req.Rarity,
		EstimatedAge:    req.EstimatedAge,
		AIPrice:         req.AIPrice,
		AIConfidence:    req.AIConfidence,
		HistoricalComps: historicalComps,
		MarketTrendData: req.MarketTrendData,
	})
	if err != nil {
		var invalid pricing.ErrInvalidInput
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SimpleRequest is the multipliers-only calculation request.
type SimpleRequest struct {
	BasePrice    float64           `json:"basePrice" binding:"required"`
	Category     string            `json:"category" binding:"required"`
	Condition    pricing.Condition `json:"condition" binding:"required"`
	Rarity       pricing.Rarity    `json:"rarity" binding:"required"`
	EstimatedAge string            `json:"estimatedAge"`
}

// SimpleResponse carries the multipliers-only result.
type SimpleResponse struct {
	Price float64 `json:"price"`
}

// Simple applies category, condition, rarity, and age multipliers only
// POST /internal/pricing/simple
func (h *PricingHandler) Simple(c *gin.Context) {
	var req SimpleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price := pricing.CalculateSimplePrice(req.BasePrice, req.Category, req.Condition, req.Rarity, req.EstimatedAge)
	c.JSON(http.StatusOK, SimpleResponse{Price: price})
}
