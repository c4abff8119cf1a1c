package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vintagevault/pricing-service/internal/ai"
	"github.com/vintagevault/pricing-service/internal/approval"
	"github.com/vintagevault/pricing-service/internal/comps"
	"github.com/vintagevault/pricing-service/internal/database"
	"github.com/vintagevault/pricing-service/internal/pricing"
)

// DraftHandler turns seller submissions into priced, reviewable drafts.
type DraftHandler struct {
	analyzer *ai.Analyzer
	approval *approval.Store
	comps    *comps.Store
	logger   zerolog.Logger
}

// NewDraftHandler creates a draft handler. compStore may be nil.
func NewDraftHandler(analyzer *ai.Analyzer, approvalStore *approval.Store, compStore *comps.Store, logger zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		analyzer: analyzer,
		approval: approvalStore,
		comps:    compStore,
		logger:   logger.With().Str("component", "draft-handler").Logger(),
	}
}

// AnalyzeResponse returns the created draft and the full pricing result
// behind its suggested price.
type AnalyzeResponse struct {
	Draft   *database.AIGeneratedProduct `json:"draft"`
	Pricing *pricing.Result              `json:"pricing"`
}

// Analyze drafts a listing from a seller submission and queues it for review
// POST /internal/drafts/analyze
func (h *DraftHandler) Analyze(c *gin.Context) {
	var req ai.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Str("title", req.Title).Msg("Analysis failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
		return
	}

	var historicalComps []float64
	if h.comps != nil {
		historicalComps, err = h.comps.PricesForCategory(c.Request.Context(), analysis.Category, 25)
		if err != nil {
			// Comps are supplementary evidence; price without them.
			h.logger.Warn().Err(err).Str("category", analysis.Category).Msg("Failed to load comps for draft")
			historicalComps = nil
		}
	}

	result, err := pricing.CalculatePriceWithConfidence(&pricing.Input{
		ProductTitle:    analysis.Title,
		Category:        analysis.Category,
		Condition:       pricing.Condition(analysis.Condition),
		Rarity:          pricing.Rarity(analysis.Rarity),
		EstimatedAge:    analysis.EstimatedAge,
		AIPrice:         analysis.SuggestedPrice,
		AIConfidence:    analysis.Confidence,
		HistoricalComps: historicalComps,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("title", analysis.Title).Msg("Pricing of validated analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing failed"})
		return
	}

	draft := &database.AIGeneratedProduct{
		Title:          analysis.Title,
		Description:    analysis.Description,
		Category:       analysis.Category,
		Condition:      analysis.Condition,
		Rarity:         analysis.Rarity,
		SuggestedPrice: result.SuggestedPrice,
		PriceRangeLow:  result.LowRange,
		PriceRangeHigh: result.HighRange,
		Confidence:     result.Confidence,
		Keywords:       analysis.Keywords,
	}
	if analysis.EstimatedAge != "" {
		draft.EstimatedAge = &analysis.EstimatedAge
	}
	if len(analysis.Materials) > 0 {
		materials := strings.Join(analysis.Materials, ", ")
		draft.Materials = &materials
	}
	if analysis.SEOTitle != "" {
		draft.SEOTitle = &analysis.SEOTitle
	}
	if analysis.SEODescription != "" {
		draft.SEODescription = &analysis.SEODescription
	}
	if req.ImageURL != "" {
		draft.ImageURL = &req.ImageURL
	}

	if err := h.approval.Create(c.Request.Context(), draft); err != nil {
		h.logger.Error().Err(err).Str("title", draft.Title).Msg("Failed to queue draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue draft"})
		return
	}

	h.logger.Info().
		Str("draft_id", draft.ID).
		Str("category", draft.Category).
		Float64("suggested_price", draft.SuggestedPrice).
		Int("confidence", draft.Confidence).
		Msg("Draft queued for review")

	c.JSON(http.StatusCreated, AnalyzeResponse{Draft: draft, Pricing: result})
}
