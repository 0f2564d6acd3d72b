package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// relayErrorMessage is the body the summary relay returns on any completion failure
const relayErrorMessage = "AI-fel"

// ProductLookup fetches catalog products by barcode
type ProductLookup interface {
	GetProduct(ctx context.Context, code string) (*domain.Product, error)
}

// Summarizer produces sustainability summaries
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products  ProductLookup
	summaries Summarizer
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil dependency makes its
// endpoints answer 501.
func NewHandler(products ProductLookup, summaries Summarizer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		products:  products,
		summaries: summaries,
		logger:    logger.Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ekoscanner-relay",
		"version": "1.0.0",
	})
}

// EcoSummary handles POST /api/eco-summary.
// The body is {productName, brand, categories}; the reply is {summary} or {error}.
func (h *Handler) EcoSummary(c *gin.Context) {
	if h.summaries == nil {
		c.JSON(http.StatusNotImplemented, domain.ErrorResponse{Error: "summary service not configured"})
		return
	}

	var req domain.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid request body"})
		return
	}

	summary, err := h.summaries.Summarize(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("summary failed",
			zap.String("request_id", RequestID(c)),
			zap.String("product", req.ProductName),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: relayErrorMessage})
		return
	}

	c.JSON(http.StatusOK, domain.SummaryResponse{Summary: summary})
}

// GetProduct handles GET /api/v1/products/:barcode
func (h *Handler) GetProduct(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusNotImplemented, domain.ErrorResponse{Error: "product service not configured"})
		return
	}

	code := strings.TrimSpace(c.Param("barcode"))

	product, err := h.products.GetProduct(c.Request.Context(), code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, domain.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Warn("product lookup failed",
			zap.String("request_id", RequestID(c)),
			zap.String("code", code),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, domain.ErrorResponse{Error: domain.ErrProductFetchFailed.Error()})
	}
}
