package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vintagevault/pricing-service/internal/comps"
)

// maxCompSheetSize caps uploaded workbook size at 20 MB.
const maxCompSheetSize = 20 << 20

// CompsHandler serves comparable-sales import and lookup.
type CompsHandler struct {
	store  *comps.Store
	logger zerolog.Logger
}

// NewCompsHandler creates a comps handler.
func NewCompsHandler(store *comps.Store, logger zerolog.Logger) *CompsHandler {
	return &CompsHandler{
		store:  store,
		logger: logger.With().Str("component", "comps-handler").Logger(),
	}
}

// ImportResponse reports an import outcome, including rows that failed
// to parse.
type ImportResponse struct {
	Imported  int              `json:"imported"`
	TotalRows int              `json:"total_rows"`
	Errors    []comps.RowError `json:"errors,omitempty"`
}

// Import parses an uploaded XLSX comp sheet and stores its rows
// POST /internal/comps/import?source=christies&sheet=Results
// The workbook is the multipart "file" field.
func (h *CompsHandler) Import(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source query parameter is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	if fileHeader.Size > maxCompSheetSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "workbook exceeds size limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxCompSheetSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	parser := comps.NewParser(comps.ParserOptions{SheetName: c.Query("sheet")})
	result, err := parser.Parse(content)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.store.Import(c.Request.Context(), result.Comps, source)
	if err != nil {
		h.logger.Error().Err(err).Str("source", source).Msg("Comp import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	h.logger.Info().
		Str("source", source).
		Int("imported", imported).
		Int("failed_rows", len(result.Errors)).
		Msg("Comp sheet imported")

	c.JSON(http.StatusOK, ImportResponse{
		Imported:  imported,
		TotalRows: result.TotalRows,
		Errors:    result.Errors,
	})
}

// CategoryPricesResponse lists recent sale prices for a category.
type CategoryPricesResponse struct {
	Category string    `json:"category"`
	Prices   []float64 `json:"prices"`
}

// CategoryPrices returns recent comp prices for a category
// GET /internal/comps/:category?limit=25
func (h *CompsHandler) CategoryPrices(c *gin.Context) {
	category := c.Param("category")

	limit := 25
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	prices, err := h.store.PricesForCategory(c.Request.Context(), category, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("category", category).Msg("Comp lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, CategoryPricesResponse{Category: category, Prices: prices})
}
