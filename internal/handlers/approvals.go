package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vintagevault/pricing-service/internal/approval"
	"github.com/vintagevault/pricing-service/internal/database"
)

// ApprovalHandler serves the admin review queue endpoints.
type ApprovalHandler struct {
	store  *approval.Store
	logger zerolog.Logger
}

// NewApprovalHandler creates an approval handler.
func NewApprovalHandler(store *approval.Store, logger zerolog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		store:  store,
		logger: logger.With().Str("component", "approval-handler").Logger(),
	}
}

// ListResponse is a paginated draft listing.
type ListResponse struct {
	Drafts []database.AIGeneratedProduct `json:"drafts"`
	Total  int                           `json:"total"`
	Page   int                           `json:"page"`
	Limit  int                           `json:"limit"`
}

func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// List returns drafts, optionally filtered by status
// GET /internal/approvals?status=PENDING&page=1&limit=20
func (h *ApprovalHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", database.DraftStatusPending)
	switch status {
	case database.DraftStatusPending, database.DraftStatusApproved, database.DraftStatusRejected, "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	page, limit := paginationParams(c)
	drafts, total, err := h.store.List(c.Request.Context(), status, page, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list drafts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list drafts"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Drafts: drafts, Total: total, Page: page, Limit: limit})
}

// History returns decided drafts, most recent decision first
// GET /internal/approvals/history?page=1&limit=20
func (h *ApprovalHandler) History(c *gin.Context) {
	page, limit := paginationParams(c)
	drafts, total, err := h.store.History(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list approval history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Drafts: drafts, Total: total, Page: page, Limit: limit})
}

// ApproveRequest carries the approval decision.
type ApproveRequest struct {
	FinalPrice *float64 `json:"finalPrice"` // nil keeps the suggested price
	Reviewer   string   `json:"reviewer" binding:"required"`
}

// Approve approves a pending draft and promotes it to the catalog
// POST /internal/approvals/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FinalPrice != nil && *req.FinalPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "finalPrice must be positive"})
		return
	}

	id := c.Param("id")
	product, err := h.store.Approve(c.Request.Context(), id, req.FinalPrice, req.Reviewer)
	if err != nil {
		h.respondDecisionError(c, id, err)
		return
	}

	h.logger.Info().
		Str("draft_id", id).
		Str("sku", product.SKU).
		Float64("price", product.Price).
		Str("reviewer", req.Reviewer).
		Msg("Draft approved and promoted")

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// RejectRequest carries the rejection decision.
type RejectRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Reviewer string `json:"reviewer" binding:"required"`
}

// Reject rejects a pending draft
// POST /internal/approvals/:id/reject
func (h *ApprovalHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.store.Reject(c.Request.Context(), id, req.Reason, req.Reviewer); err != nil {
		h.respondDecisionError(c, id, err)
		return
	}

	h.logger.Info().
		Str("draft_id", id).
		Str("reviewer", req.Reviewer).
		Msg("Draft rejected")

	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

// BulkApproveRequest lists drafts to approve at their suggested prices.
type BulkApproveRequest struct {
	IDs      []string `json:"ids" binding:"required,min=1,max=50"`
	Reviewer string   `json:"reviewer" binding:"required"`
}

// BulkApprove approves multiple drafts at their suggested prices
// POST /internal/approvals/bulk-approve
func (h *ApprovalHandler) BulkApprove(c *gin.Context) {
	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.BulkApprove(c.Request.Context(), req.IDs, req.Reviewer)
	if err != nil {
		h.logger.Error().Err(err).Msg("Bulk approve failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk approve failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ApprovalHandler) respondDecisionError(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, approval.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
	case errors.Is(err, approval.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("draft_id", id).Msg("Decision failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "decision failed"})
	}
}
